package render

import (
	"strings"

	"syndicpulse/internal/core"
)

// Filename builds the export name <App>_<Building>_<YYYY-MM-DD>.<ext>.
// Runs of whitespace in the building name collapse to one underscore.
func Filename(app, building string, on core.Date, ext string) string {
	name := strings.Join(strings.Fields(building), "_")
	base := app + "_" + name + "_" + on.String()
	if ext == "" {
		return base
	}
	return base + "." + strings.TrimPrefix(ext, ".")
}
