package web

import "embed"

// TemplatesFS embeds the HTML templates rendered by internal/render.
//
//go:embed templates/*.html
var TemplatesFS embed.FS
