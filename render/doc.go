// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render turns gauge scenes into output files.
//
// Output formats register themselves in init() with a name, a file
// extension and a media type, so a program only links the formats it
// imports and can pick one from a flag or an output path:
//
//	import (
//	    "github.com/gogpu/gauge/render"
//	    _ "github.com/gogpu/gauge/raster" // "png"
//	    _ "github.com/gogpu/gauge/svg"    // "svg"
//	)
//
//	f, err := render.ForPath("gauge.png")
//	if err != nil {
//	    return err
//	}
//	b := f.New(render.Options{Scale: 2})
//	if err := b.Render(scene); err != nil {
//	    return err
//	}
//	return render.SaveToFile(b, "gauge.png")
package render
