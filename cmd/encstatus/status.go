package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dshills/encstatus/internal/charset"
	"github.com/dshills/encstatus/internal/config"
	"github.com/dshills/encstatus/internal/document"
)

// display returns the name shown for enc under p.
func display(enc string, p config.DetectionPolicy) string {
	if enc == "" {
		return "-"
	}
	if p.PreferPlatformAlias {
		return charset.PlatformAlias(enc)
	}
	return enc
}

// origin names where the current encoding comes from.
func origin(s document.State) string {
	switch {
	case s.Current == "":
		return ""
	case s.Explicit != "" && charset.Equal(s.Current, s.Explicit):
		return "explicit"
	case s.ContentDeclared != "" && charset.Equal(s.Current, s.ContentDeclared):
		return "declared"
	case s.Inherited != "" && charset.Equal(s.Current, s.Inherited):
		return "inherited"
	}
	return ""
}

func writeStatus(w io.Writer, d *document.Document, p config.DetectionPolicy) {
	s := d.State()
	name := d.FileName()
	if name == "" {
		name = "(no document)"
	}
	fmt.Fprintf(w, "%s [%s]\n", name, d.Kind())

	tw := tabwriter.NewWriter(w, 0, 4, 1, ' ', 0)
	current := display(s.Current, p)
	if o := origin(s); o != "" {
		current += " (" + o + ")"
	}
	if fam := charset.Family(s.Current); fam != "" && s.Current != "" {
		current += ", " + fam
	}
	fmt.Fprintf(tw, "  encoding:\t%s\n", current)

	eol := s.LineSeparator.String()
	if eol == "" {
		eol = "-"
	}
	fmt.Fprintf(tw, "  line endings:\t%s\n", eol)

	fmt.Fprintf(tw, "  bom:\t%s\n", s.BOM)

	detected := display(s.Detected, p)
	if d.WarnMismatch(p) {
		detected += " (mismatch)"
	} else if s.DetectionUncertain() {
		detected += " (uncertain)"
	}
	fmt.Fprintf(tw, "  detected:\t%s\n", detected)
	fmt.Fprintf(tw, "  declared:\t%s\n", display(s.ContentDeclared, p))
	if s.ContentTypeDefault != "" {
		fmt.Fprintf(tw, "  content type default:\t%s\n", display(s.ContentTypeDefault, p))
	}
	if root, ok := d.ArchiveRoot(); ok {
		fmt.Fprintf(tw, "  archive:\t%s\n", root.Path)
	}
	if c := d.EncodingCandidates(); len(c) > 0 {
		fmt.Fprintf(tw, "  candidates:\t%s\n", strings.Join(c, ", "))
	}
	fmt.Fprintf(tw, "  operations:\t%s\n", operations(d, p))
	tw.Flush()
}

// operations lists the mutations the document allows, marking discouraged
// ones.
func operations(d *document.Document, p config.DetectionPolicy) string {
	caps := d.Capabilities()
	var ops []string
	if caps.CanChangeEncoding {
		ops = append(ops, "set")
	}
	if caps.CanConvertContent {
		convert := "convert"
		if d.ConvertDiscouraged(p) {
			convert += "(discouraged)"
		}
		ops = append(ops, convert, "eol")
	}
	if d.CanAddBOM() {
		add := "bom add"
		if d.AddBOMDiscouraged(p) {
			add += "(discouraged)"
		}
		ops = append(ops, add)
	}
	if d.CanRemoveBOM() {
		ops = append(ops, "bom remove")
	}
	if len(ops) == 0 {
		return "none"
	}
	return strings.Join(ops, ", ")
}
