// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"io"
	"os"

	"github.com/gogpu/gauge"
)

// Backend turns a laid-out scene into one output format.
//
// Backends paint Scene.Groups in order, rotate the needle about its pivot
// and treat an empty color as "none".
type Backend interface {
	// Render draws the scene, replacing any previous output.
	Render(scene *gauge.Scene) error

	// WriteTo writes the output of the last successful Render.
	WriteTo(w io.Writer) (int64, error)
}

// FileBackend is a Backend that writes its own files.
type FileBackend interface {
	Backend
	SaveToFile(path string) error
}

// SaveToFile writes b's output to path, using b's own SaveToFile when it
// has one.
func SaveToFile(b Backend, path string) error {
	if fb, ok := b.(FileBackend); ok {
		return fb.SaveToFile(path)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("render: create %s: %w", path, err)
	}
	if _, err := b.WriteTo(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("render: write %s: %w", path, err)
	}
	return f.Close()
}

// Write renders scene in format f and streams it to w.
func Write(w io.Writer, f Format, opts Options, scene *gauge.Scene) error {
	b := f.New(opts)
	if err := b.Render(scene); err != nil {
		return fmt.Errorf("render: %s: %w", f.Name, err)
	}
	if _, err := b.WriteTo(w); err != nil {
		return fmt.Errorf("render: %s: %w", f.Name, err)
	}
	return nil
}
