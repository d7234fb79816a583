// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/gogpu/gg/cache"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Gauge scenes name CSS font stacks; the raster backend always draws with
// the embedded Go fonts.
var (
	fontsOnce sync.Once
	regular   *text.FontSource
	bold      *text.FontSource
	fontsErr  error

	faces = cache.NewSharded[faceKey, text.Face](32, hashFaceKey)
)

type faceKey struct {
	bold bool
	size float64
}

func hashFaceKey(k faceKey) uint64 {
	s := strconv.FormatFloat(k.size, 'g', -1, 64)
	if k.bold {
		s += "b"
	}
	return cache.StringHasher(s)
}

func loadFonts() error {
	fontsOnce.Do(func() {
		regular, fontsErr = text.NewFontSource(goregular.TTF)
		if fontsErr != nil {
			fontsErr = fmt.Errorf("raster: load Go Regular: %w", fontsErr)
			return
		}
		bold, fontsErr = text.NewFontSource(gobold.TTF)
		if fontsErr != nil {
			fontsErr = fmt.Errorf("raster: load Go Bold: %w", fontsErr)
		}
	})
	return fontsErr
}

// face returns a cached face of the given weight and pixel size.
func face(isBold bool, size float64) (text.Face, error) {
	if err := loadFonts(); err != nil {
		return nil, err
	}

	return faces.GetOrCreate(faceKey{bold: isBold, size: size}, func() text.Face {
		if isBold {
			return bold.Face(size)
		}
		return regular.Face(size)
	}), nil
}
