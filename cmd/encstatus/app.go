package main

import (
	"fmt"
	"io"

	"github.com/dshills/encstatus/internal/agent"
	"github.com/dshills/encstatus/internal/config"
	"github.com/dshills/encstatus/internal/document"
	"github.com/dshills/encstatus/internal/editor"
	"github.com/dshills/encstatus/internal/logging"
	"github.com/dshills/encstatus/internal/vfs"
	"github.com/dshills/encstatus/internal/workspace"
)

// app is the command's host: one window over the OS file system, tracked by
// an agent whose notifications run on a queue drained by the command.
type app struct {
	cfg    *config.Config
	logger *logging.Logger
	fs     vfs.FS
	ws     *workspace.Workspace
	window *editor.Window
	queue  *agent.Queue
	agent  *agent.Agent
	out    io.Writer
	stderr io.Writer

	// onStatus, when set, receives the active document on every
	// notification.
	onStatus func(*document.Document)
}

func newApp(opts options, stdout, stderr io.Writer) (*app, error) {
	loadOpts := []config.Option{}
	if opts.ConfigPath != "" {
		loadOpts = append(loadOpts, config.WithFile(opts.ConfigPath))
	}
	if opts.WorkspacePath != "" {
		loadOpts = append(loadOpts, config.WithProjectConfigDir(opts.WorkspacePath))
	}
	cfg, err := config.Load(loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}
	logger := cfg.NewLogger(stderr)
	logging.SetDefault(logger)

	a := &app{
		cfg:    cfg,
		logger: logger.WithComponent("cli"),
		fs:     vfs.NewOSFS(),
		out:    stdout,
		stderr: stderr,
	}
	a.ws = workspace.New(a.fs, cfg.Workspace, workspace.WithLogger(logger))
	if opts.WorkspacePath != "" {
		if _, err := a.ws.AddFolder(opts.WorkspacePath); err != nil {
			return nil, fmt.Errorf("open workspace: %w", err)
		}
	}

	a.window = editor.NewWindow(a.fs, a.ws, editor.WithLogger(logger))
	a.queue = agent.NewQueue(logger)
	a.window.FollowWorkspace(a.queue)

	resolver := document.NewResolver(a.ws,
		document.WithPolicy(cfg.Detection),
		document.WithRegistry(cfg.Registry()),
		document.WithLogger(logger),
	)
	a.agent = agent.New(a.window, resolver, a.queue, a.statusChanged, agent.WithLogger(logger))
	a.agent.Start()
	return a, nil
}

func (a *app) statusChanged() {
	if a.onStatus != nil {
		a.onStatus(a.agent.Document())
	}
}

// open focuses the file at path and returns its document once every
// pending notification has run.
func (a *app) open(path string) (*document.Document, error) {
	if _, err := a.window.OpenFile(path); err != nil {
		return nil, err
	}
	a.settle()
	return a.agent.Document(), nil
}

// settle drains the queue until no work is left.
func (a *app) settle() {
	for a.queue.Drain() > 0 {
	}
}

func (a *app) close() {
	a.agent.Stop()
	a.settle()
}
