// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Options tune a backend at creation. Vector formats ignore them.
type Options struct {
	// Scale is device pixels per scene unit. Zero means 1.
	Scale float64

	// Background is a CSS color painted under the dial. Empty is
	// transparent.
	Background string
}

// Format describes an output format provided by a backend package.
type Format struct {
	Name      string // flag value, e.g. "svg"
	Ext       string // file extension with the dot, e.g. ".svg"
	MediaType string // HTTP Content-Type
	New       func(Options) Backend
}

var (
	formatsMu sync.RWMutex
	byName    = make(map[string]Format)
	byExt     = make(map[string]Format)
)

// Register makes a format available by name and by file extension.
// Backend packages call it from init():
//
//	func init() {
//	    render.Register(render.Format{
//	        Name:      "svg",
//	        Ext:       ".svg",
//	        MediaType: MediaType,
//	        New:       func(render.Options) render.Backend { return New() },
//	    })
//	}
//
// Register panics on an incomplete Format or when the name or extension is
// already taken.
func Register(f Format) {
	formatsMu.Lock()
	defer formatsMu.Unlock()

	if f.Name == "" || f.Ext == "" || f.New == nil {
		panic(fmt.Sprintf("render: incomplete format %+v", f))
	}
	ext := strings.ToLower(f.Ext)
	if _, dup := byName[f.Name]; dup {
		panic("render: Register called twice for " + f.Name)
	}
	if other, dup := byExt[ext]; dup {
		panic("render: extension " + ext + " already used by " + other.Name)
	}
	byName[f.Name] = f
	byExt[ext] = f
}

// Lookup returns the format registered under name.
func Lookup(name string) (Format, error) {
	formatsMu.RLock()
	f, ok := byName[name]
	formatsMu.RUnlock()
	if !ok {
		return Format{}, fmt.Errorf("render: unknown format %q (forgotten import?)", name)
	}
	return f, nil
}

// ForPath returns the format whose extension matches path, ignoring case.
func ForPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	formatsMu.RLock()
	f, ok := byExt[ext]
	formatsMu.RUnlock()
	if !ok {
		return Format{}, fmt.Errorf("render: no format for %q", path)
	}
	return f, nil
}

// Names returns the registered format names, sorted.
func Names() []string {
	formatsMu.RLock()
	defer formatsMu.RUnlock()

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
