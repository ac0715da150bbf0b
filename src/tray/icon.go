package tray

import (
	_ "embed"
)

// Embedded SVG icon data
//
//go:embed icon.svg
var IconSVG string

// Icon returns the raster icon bytes for the platform tray, or nil when none
// is bundled. TODO: rasterize icon.svg into an .ico at build time; systray
// wants ICO bytes on Windows and PNG elsewhere.
func Icon() []byte {
	return nil
}
