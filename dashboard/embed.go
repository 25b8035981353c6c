// Package dashboard provides the embedded web UI assets.
//
// Templates are rendered by the server package; the static directory is
// served as-is under /static/. style.css also declares the CSS custom
// properties the chart builder reads when no other stylesheet is configured.
package dashboard

import "embed"

// Stylesheet is the path of the default theme stylesheet inside [Assets].
const Stylesheet = "assets/static/style.css"

// Assets is an embedded filesystem containing the dashboard web UI.
//
//	assets/
//	  templates/   - html/template pages (landing, 404, not_found, layout)
//	  static/      - style.css and graphs.js
//
//go:embed assets
var Assets embed.FS
