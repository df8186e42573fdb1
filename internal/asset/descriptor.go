package asset

import (
	"image"

	"github.com/jmylchreest/assetgen/internal/colour"
)

// Kind selects which payload a Descriptor carries.
type Kind int

const (
	KindButton Kind = iota
	KindTemplate
)

// String returns the constructor name used in generated listings.
func (k Kind) String() string {
	if k == KindTemplate {
		return "Template"
	}
	return "Button"
}

// Entry is the per-server geometry and fingerprint of a button.
type Entry struct {
	// Area is the searchable region.
	Area image.Rectangle
	// Colour is the mean colour of Area in the base image.
	Colour colour.RGB
	// Button is the clickable rectangle.
	Button image.Rectangle
	// File is the base image the entry was measured from.
	File string
}

// ButtonPayload holds one entry per server.
type ButtonPayload struct {
	Entries map[string]Entry
}

// TemplatePayload holds the template image per server.
type TemplatePayload struct {
	Files map[string]string
}

// Descriptor is the generated entity for one asset. Exactly one of Button and
// Template is set, matching Kind.
type Descriptor struct {
	Name     string
	Kind     Kind
	Button   *ButtonPayload
	Template *TemplatePayload
}

// NewButton returns an empty button descriptor.
func NewButton(name string) *Descriptor {
	return &Descriptor{
		Name:   name,
		Kind:   KindButton,
		Button: &ButtonPayload{Entries: make(map[string]Entry)},
	}
}

// NewTemplate returns an empty template descriptor.
func NewTemplate(name string) *Descriptor {
	return &Descriptor{
		Name:     name,
		Kind:     KindTemplate,
		Template: &TemplatePayload{Files: make(map[string]string)},
	}
}
