package editor

import (
	"errors"
	"io"
	"testing"

	"github.com/dshills/encstatus/internal/document"
)

func TestMemoryStorage(t *testing.T) {
	data := []byte("abc")
	st := NewMemoryStorage("buf", data, false)
	data[0] = 'x'

	rc, err := st.Contents()
	if err != nil {
		t.Fatal(err)
	}
	got, _ := io.ReadAll(rc)
	if string(got) != "abc" {
		t.Errorf("Contents() = %q, want abc", got)
	}
	if err := st.SetContents([]byte("def")); err != nil {
		t.Fatalf("SetContents() error = %v", err)
	}
	if string(st.Bytes()) != "def" {
		t.Errorf("Bytes() = %q, want def", st.Bytes())
	}

	ro := NewMemoryStorage("ro", data, true)
	if err := ro.SetContents(nil); !errors.Is(err, ErrReadOnly) {
		t.Errorf("SetContents() on read-only error = %v, want ErrReadOnly", err)
	}
}

func TestStorageKinds(t *testing.T) {
	var _ document.WritableStorage = (*MemoryStorage)(nil)
	var _ document.PlaceholderStorage = (*PendingStorage)(nil)
	var _ document.ArchiveRootAccessor = (*ArchiveStorage)(nil)

	root := document.ArchiveRoot{Path: "/lib/a.jar", SourceEncoding: "UTF-8"}
	a := NewArchiveStorage("a.xml", []byte("<a/>"), root)
	if got, err := a.ArchiveRoot(); err != nil || got != root {
		t.Errorf("ArchiveRoot() = %v, %v; want %v", got, err, root)
	}
	if !a.ReadOnly() {
		t.Error("archive entry is writable")
	}

	p := NewPendingStorage("effective-pom.xml")
	if _, err := p.Contents(); err == nil {
		t.Error("Contents() of a pending storage succeeded")
	}

	in := NewFailedStorageInput("broken", errors.New("gone"))
	if _, err := in.Storage(); err == nil {
		t.Error("Storage() of a failed input succeeded")
	}
}

func TestEditor_NilSupport(t *testing.T) {
	e := New("overview", nil, nil)
	if e.EncodingSupport() != nil {
		t.Error("EncodingSupport() != nil for an editor without support")
	}
	if e.Path() != "" {
		t.Errorf("Path() = %q, want empty", e.Path())
	}
}
