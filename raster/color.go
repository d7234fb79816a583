// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

import (
	"strings"

	"github.com/gogpu/gg"
	"golang.org/x/image/colornames"

	"github.com/gogpu/gauge"
)

// parseColor resolves a CSS color: "#rgb", "#rgba", "#rrggbb", "#rrggbbaa"
// or a named color. ok is false for "", "none" and "transparent", which
// paint nothing. Unknown names log a warning and paint black, like an
// invalid SVG fill.
func parseColor(s string) (c gg.RGBA, ok bool) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "none", "transparent":
		return gg.RGBA{}, false
	}
	if strings.HasPrefix(s, "#") {
		if !isHex(s[1:]) {
			gauge.Logger().Warn("raster: malformed hex color", "color", s)
			return gg.Black, true
		}
		return gg.Hex(s), true
	}
	if named, found := colornames.Map[strings.ToLower(s)]; found {
		return gg.FromColor(named), true
	}
	gauge.Logger().Warn("raster: unknown color", "color", s)
	return gg.Black, true
}

func isHex(s string) bool {
	switch len(s) {
	case 3, 4, 6, 8:
	default:
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F') {
			return false
		}
	}
	return true
}
