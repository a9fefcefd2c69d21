// Package document defines the Renderer interface and a registry for
// pluggable allowance document renderers. To add a new output format,
// create a file that implements Renderer and calls Register from its
// init function. The registry selects renderers by output file
// extension.
package document

import (
	"strings"

	"github.com/reecedigiacomo/allowance/allowance"
)

// DefaultTitle is the static title shown at the top of every generated
// document.
const DefaultTitle = "ICHRA Monthly Employer Contributions"

// Spec carries everything a renderer needs to produce one document.
type Spec struct {
	Title   string
	Classes []string
	Table   allowance.Table

	// Banner is an optional PNG/JPEG image drawn across the top of
	// every page. Nil means no banner region is rendered.
	Banner []byte
}

// Renderer produces a complete document in one output format.
type Renderer interface {
	// Name returns a human-readable format name.
	Name() string

	// Ext returns the output file extension including the leading
	// dot (e.g. ".pdf").
	Ext() string

	// MimeType returns the Content-Type for HTTP downloads.
	MimeType() string

	// Render serialises the document described by spec.
	Render(spec Spec) ([]byte, error)
}

var registry []Renderer

// Register adds a renderer to the global registry. Call this from an
// init function in your renderer file.
func Register(r Renderer) {
	registry = append(registry, r)
}

// ForExt returns the renderer for an output extension ("pdf" and
// ".pdf" are both accepted), or nil if the format is unsupported.
func ForExt(ext string) Renderer {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	for _, r := range registry {
		if r.Ext() == ext {
			return r
		}
	}
	return nil
}

// All returns every registered renderer.
func All() []Renderer {
	return registry
}

// SanitizeFilename replaces characters that are unsafe in file paths
// and strips control characters to prevent header injection.
func SanitizeFilename(name string) string {
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1 // drop control characters
		}
		return r
	}, name)
	for _, c := range []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|"} {
		name = strings.ReplaceAll(name, c, "_")
	}
	if name == "" {
		name = "unnamed"
	}
	return name
}
