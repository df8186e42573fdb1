package generate

import (
	"bytes"
	"fmt"
	"image"
	"strings"

	"github.com/jmylchreest/assetgen/internal/asset"
)

// DefaultHeader is written at the top of every generated listing.
const DefaultHeader = `from module.base.button import Button
from module.base.template import Template

# This file was automatically generated by assetgen.
# Don't modify it manually.
`

// Renderer turns descriptors into listing lines.
type Renderer struct {
	// Header precedes the expressions, followed by one blank line.
	Header string

	// Servers fixes the key order of every per-server mapping.
	Servers []string
}

// Render returns the full listing text.
func (r Renderer) Render(l *Listing) []byte {
	var buf bytes.Buffer
	if r.Header != "" {
		buf.WriteString(strings.TrimRight(r.Header, "\n"))
		buf.WriteString("\n\n")
	}
	for _, d := range l.Descriptors {
		buf.WriteString(r.Expression(d))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// Expression renders one descriptor as a declarative line.
func (r Renderer) Expression(d *asset.Descriptor) string {
	switch d.Kind {
	case asset.KindTemplate:
		return fmt.Sprintf("%s = Template(file=%s)", d.Name,
			r.mapping(func(server string) string { return quote(d.Template.Files[server]) }))
	case asset.KindButton:
		entries := d.Button.Entries
		return fmt.Sprintf("%s = Button(area=%s, color=%s, button=%s, file=%s)", d.Name,
			r.mapping(func(server string) string { return rect(entries[server].Area) }),
			r.mapping(func(server string) string { return entries[server].Colour.Tuple() }),
			r.mapping(func(server string) string { return rect(entries[server].Button) }),
			r.mapping(func(server string) string { return quote(entries[server].File) }),
		)
	default:
		panic(fmt.Sprintf("generate: unknown descriptor kind %d", d.Kind))
	}
}

// mapping renders {'server': value, ...} in server order.
func (r Renderer) mapping(value func(server string) string) string {
	parts := make([]string, len(r.Servers))
	for i, server := range r.Servers {
		parts[i] = quote(server) + ": " + value(server)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// rect renders a half-open rectangle as (left, top, right, bottom).
func rect(r image.Rectangle) string {
	return fmt.Sprintf("(%d, %d, %d, %d)", r.Min.X, r.Min.Y, r.Max.X, r.Max.Y)
}

var quoteReplacer = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func quote(s string) string {
	return "'" + quoteReplacer.Replace(s) + "'"
}
