// Package assets embeds the fallback UI served when no dist directory is
// present on disk.
package assets

import _ "embed"

//go:embed index.html
var IndexHTML []byte
