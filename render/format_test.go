// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/gogpu/gauge"
)

// stubBackend writes "<name>:<scene id>@<scale>".
type stubBackend struct {
	name  string
	opts  Options
	scene *gauge.Scene
	fail  error
}

func (b *stubBackend) Render(s *gauge.Scene) error {
	if b.fail != nil {
		return b.fail
	}
	b.scene = s
	return nil
}

func (b *stubBackend) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, b.name+":"+b.scene.ID+"@"+gauge.FormatNumber(b.opts.Scale))
	return int64(n), err
}

func stubFormat(name, ext string) Format {
	return Format{
		Name:      name,
		Ext:       ext,
		MediaType: "text/x-" + name,
		New:       func(o Options) Backend { return &stubBackend{name: name, opts: o} },
	}
}

// isolate swaps in empty format tables for the duration of the test.
func isolate(t *testing.T) {
	t.Helper()
	formatsMu.Lock()
	savedName, savedExt := byName, byExt
	byName, byExt = make(map[string]Format), make(map[string]Format)
	formatsMu.Unlock()

	t.Cleanup(func() {
		formatsMu.Lock()
		byName, byExt = savedName, savedExt
		formatsMu.Unlock()
	})
}

func TestRegisterAndLookup(t *testing.T) {
	isolate(t)
	Register(stubFormat("stub", ".stb"))
	Register(stubFormat("alt", ".ALT"))

	f, err := Lookup("stub")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if f.Ext != ".stb" || f.MediaType != "text/x-stub" {
		t.Errorf("Lookup() = %+v", f)
	}

	if got, want := Names(), []string{"alt", "stub"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}

	_, err = Lookup("pdf")
	if err == nil || !strings.Contains(err.Error(), "forgotten import?") {
		t.Errorf("Lookup(pdf) error = %v, want import hint", err)
	}
}

func TestForPath(t *testing.T) {
	isolate(t)
	Register(stubFormat("stub", ".stb"))
	Register(stubFormat("alt", ".ALT"))

	tests := []struct {
		path string
		want string
	}{
		{"gauge.stb", "stub"},
		{"out/Gauge.STB", "stub"},
		{"frames/g-%02d.alt", "alt"},
	}
	for _, tt := range tests {
		f, err := ForPath(tt.path)
		if err != nil {
			t.Errorf("ForPath(%q) error = %v", tt.path, err)
			continue
		}
		if f.Name != tt.want {
			t.Errorf("ForPath(%q) = %q, want %q", tt.path, f.Name, tt.want)
		}
	}

	for _, p := range []string{"gauge", "gauge.pdf"} {
		if _, err := ForPath(p); err == nil {
			t.Errorf("ForPath(%q) should fail", p)
		}
	}
}

func TestRegisterPanics(t *testing.T) {
	tests := []struct {
		name string
		run  func()
	}{
		{"no factory", func() { Register(Format{Name: "x", Ext: ".x"}) }},
		{"no name", func() { Register(stubFormat("", ".x")) }},
		{"no ext", func() { Register(stubFormat("x", "")) }},
		{"duplicate name", func() {
			Register(stubFormat("dup", ".a"))
			Register(stubFormat("dup", ".b"))
		}},
		{"duplicate ext", func() {
			Register(stubFormat("a", ".dup"))
			Register(stubFormat("b", ".DUP"))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			defer func() {
				if r := recover(); r == nil {
					t.Error("expected panic")
				}
			}()
			tt.run()
		})
	}
}

func TestFormatNewPassesOptions(t *testing.T) {
	isolate(t)
	Register(stubFormat("stub", ".stb"))

	f, err := Lookup("stub")
	if err != nil {
		t.Fatal(err)
	}
	b := f.New(Options{Scale: 2, Background: "white"})
	stub := b.(*stubBackend)
	if stub.opts.Scale != 2 || stub.opts.Background != "white" {
		t.Errorf("options = %+v", stub.opts)
	}
	if other := f.New(Options{}); other == b {
		t.Error("New returned a shared instance")
	}
}

func TestWriteAndSaveToFile(t *testing.T) {
	isolate(t)
	f := stubFormat("stub", ".stb")
	Register(f)

	scene, err := gauge.Layout(gauge.DefaultConfig())
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}

	var buf bytes.Buffer
	if err := Write(&buf, f, Options{Scale: 3}, scene); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if buf.String() != "stub:vizBox@3" {
		t.Errorf("Write() = %q", buf.String())
	}

	b := f.New(Options{Scale: 1})
	if err := b.Render(scene); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "out.stb")
	if err := SaveToFile(b, path); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "stub:vizBox@1" {
		t.Errorf("file content = %q", data)
	}
}

func TestWriteRenderError(t *testing.T) {
	boom := errors.New("boom")
	f := Format{
		Name: "broken",
		Ext:  ".brk",
		New:  func(Options) Backend { return &stubBackend{name: "broken", fail: boom} },
	}

	scene, _ := gauge.Layout(gauge.DefaultConfig())
	if err := Write(io.Discard, f, Options{}, scene); !errors.Is(err, boom) {
		t.Errorf("Write() error = %v, want wrapped boom", err)
	}
}
