package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dshills/encstatus/internal/charset"
	"github.com/dshills/encstatus/internal/document"
	"github.com/dshills/encstatus/internal/lineending"
	"github.com/dshills/encstatus/internal/watcher"
	"github.com/dshills/encstatus/internal/workspace"
)

func (a *app) dispatch(cmd string, args []string) error {
	switch cmd {
	case "status":
		return a.status(args)
	case "set":
		return a.set(args)
	case "convert":
		return a.convert(args)
	case "eol":
		return a.eol(args)
	case "bom":
		return a.bom(args)
	case "watch":
		return a.watch(args)
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
}

func (a *app) printStatus(d *document.Document) {
	writeStatus(a.out, d, a.cfg.Detection)
}

// status prints each file's state from the agent's notifications.
func (a *app) status(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: status FILE...", errUsage)
	}
	a.onStatus = a.printStatus
	defer func() { a.onStatus = nil }()

	for _, p := range args {
		if _, err := a.open(p); err != nil {
			return err
		}
	}
	return nil
}

// mutable opens path and rejects documents that do not allow the mutation.
func (a *app) mutable(path string, allowed func(document.Capabilities) bool, what string) (*document.Document, error) {
	d, err := a.open(path)
	if err != nil {
		return nil, err
	}
	if !allowed(d.Capabilities()) {
		return nil, fmt.Errorf("%s: %s documents cannot %s", d.FileName(), d.Kind(), what)
	}
	return d, nil
}

func (a *app) set(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: set FILE ENCODING", errUsage)
	}
	enc, err := charset.Canonicalize(args[1])
	if err != nil {
		return err
	}
	d, err := a.mutable(args[0], func(c document.Capabilities) bool { return c.CanChangeEncoding }, "change encoding")
	if err != nil {
		return err
	}
	a.agent.SetEncoding(enc)
	a.settle()
	a.printStatus(d)
	return nil
}

// subFlags parses the -n (dry run) flag of a subcommand. The flag may
// appear before, between or after the positional arguments.
func subFlags(name string, args []string, stderr io.Writer) (bool, []string, error) {
	var dryRun bool
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&dryRun, "n", false, "Show the change without writing it")
	fs.BoolVar(&dryRun, "dry-run", false, "Show the change without writing it")

	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return false, nil, fmt.Errorf("%w: %v", errUsage, err)
		}
		args = fs.Args()
		if len(args) == 0 {
			return dryRun, positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

func (a *app) convert(args []string) error {
	dryRun, args, err := subFlags("convert", args, a.stderr)
	if err != nil {
		return err
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: convert [-n] FILE ENCODING", errUsage)
	}
	d, err := a.mutable(args[0], func(c document.Capabilities) bool { return c.CanConvertContent }, "convert content")
	if err != nil {
		return err
	}
	if d.ConvertDiscouraged(a.cfg.Detection) {
		a.logger.Warn("%s: detected charset %q disagrees with %s", d.FileName(), d.State().Detected, d.State().Current)
	}

	if dryRun {
		after, err := d.ConvertedContent(args[1])
		if err != nil {
			return err
		}
		return a.showPreview(args[0], after)
	}
	if err := a.agent.ConvertCharset(args[1]); err != nil {
		return err
	}
	a.settle()
	a.printStatus(d)
	return nil
}

func (a *app) eol(args []string) error {
	dryRun, args, err := subFlags("eol", args, a.stderr)
	if err != nil {
		return err
	}
	if len(args) != 2 {
		return fmt.Errorf("%w: eol [-n] FILE CRLF|CR|LF", errUsage)
	}
	k, err := lineending.Parse(args[1])
	if err != nil || !k.IsConcrete() {
		return fmt.Errorf("%w: line ending must be CRLF, CR or LF, got %q", errUsage, args[1])
	}
	d, err := a.mutable(args[0], func(c document.Capabilities) bool { return c.CanConvertContent }, "change line endings")
	if err != nil {
		return err
	}

	if dryRun {
		after, err := d.SeparatedContent(k)
		if err != nil {
			return err
		}
		return a.showPreview(args[0], after)
	}
	if err := a.agent.SetLineSeparator(k); err != nil {
		return err
	}
	a.settle()
	a.printStatus(d)
	return nil
}

func (a *app) showPreview(path string, after []byte) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	before, err := a.fs.ReadFile(abs)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s: %d bytes -> %d bytes\n", abs, len(before), len(after))
	fmt.Fprint(a.out, preview(before, after))
	return nil
}

func (a *app) bom(args []string) error {
	if len(args) != 2 || (args[0] != "add" && args[0] != "remove") {
		return fmt.Errorf("%w: bom add|remove FILE", errUsage)
	}
	d, err := a.mutable(args[1], func(c document.Capabilities) bool { return c.CanOperateBOM }, "carry a byte-order mark")
	if err != nil {
		return err
	}

	if args[0] == "add" {
		if !d.CanAddBOM() {
			return fmt.Errorf("%s: %s cannot take a byte-order mark here", d.FileName(), display(d.State().Current, a.cfg.Detection))
		}
		if d.AddBOMDiscouraged(a.cfg.Detection) {
			a.logger.Warn("%s: adding a byte-order mark to %s content is discouraged", d.FileName(), d.State().Current)
		}
		err = a.agent.AddBOM()
	} else {
		err = a.agent.RemoveBOM()
	}
	if err != nil {
		return err
	}
	a.settle()
	a.printStatus(d)
	return nil
}

// watch prints the state of the focused file whenever it changes on disk or
// the workspace settings change, until interrupted.
func (a *app) watch(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: watch FILE...", errUsage)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.watchContext(ctx, args)
}

func (a *app) watchContext(ctx context.Context, files []string) error {
	w, err := watcher.New(watcher.WithLogger(a.logger))
	if err != nil {
		return err
	}
	defer w.Close()

	a.onStatus = a.printStatus
	defer func() { a.onStatus = nil }()

	for _, p := range files {
		if _, err := a.open(p); err != nil {
			return err
		}
		if err := w.Watch(p); err != nil {
			return err
		}
	}
	for _, f := range a.ws.Folders() {
		if err := w.Watch(workspace.SettingsPath(f.Path)); err != nil && !errors.Is(err, watcher.ErrPathNotExist) {
			return err
		}
	}
	go watcher.Forward(ctx, w, a.queue, func(ev watcher.Event) {
		if a.ws.IsSettingsFile(ev.Path) {
			if err := a.ws.Reload(); err != nil {
				a.logger.Warn("reload settings: %v", err)
			}
			return
		}
		a.window.ContentChanged(ev.Path)
	})

	err = a.queue.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
