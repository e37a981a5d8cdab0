// Package web bundles the portal's templates and static assets into the binary.
package web

import "embed"

// Templates embeds HTML layouts, partials and pages.
//
//go:embed templates/layouts/*.html templates/partials/*.html templates/pages/*.html
var Templates embed.FS

// Static embeds stylesheets and other assets served under /static/.
//
//go:embed static/css/*
var Static embed.FS
