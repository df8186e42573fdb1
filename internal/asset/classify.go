// Package asset defines the asset naming convention and the descriptors the
// pipeline generates.
//
// Asset files follow "<NAME>[.<SUBKIND>].<ext>":
//
//	GET_MISSION.png            base asset, becomes a Button
//	GET_MISSION.BUTTON.png     override of the button rectangle of GET_MISSION
//	TEMPLATE_AMBUSH.png        template asset, rendered with its file only
//	20200521_capture.png       ignored, names starting with a digit are scratch captures
package asset

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/agnivade/levenshtein"
)

// FileKind classifies a single file in a module directory.
type FileKind int

const (
	// FileIgnored files take no part in generation.
	FileIgnored FileKind = iota
	// FileBase files define a button asset.
	FileBase
	// FileTemplate files define a template asset.
	FileTemplate
	// FileOverride files replace one attribute of a base asset.
	FileOverride
)

// String returns the kind name.
func (k FileKind) String() string {
	switch k {
	case FileBase:
		return "base"
	case FileTemplate:
		return "template"
	case FileOverride:
		return "override"
	default:
		return "ignored"
	}
}

// Override names the attribute an override file replaces. Its value is the
// subkind suffix used in filenames.
type Override string

const (
	OverrideArea   Override = "AREA"
	OverrideColour Override = "COLOR"
	OverrideButton Override = "BUTTON"
)

// Overrides returns the override subkinds in the order they are applied.
func Overrides() []Override {
	return []Override{OverrideArea, OverrideColour, OverrideButton}
}

// Classification is the result of classifying one filename.
type Classification struct {
	File     string
	Name     string
	Subkind  string
	Ext      string
	Kind     FileKind
	Override Override // set when Kind is FileOverride

	// Reason explains why a file was ignored.
	Reason string
}

// Rules is the naming convention. It is plain data so callers can build a
// classifier for a different convention without touching package state.
type Rules struct {
	TemplatePrefix string
	Extensions     []string
	Overrides      []Override

	// SuggestDistance is the maximum edit distance at which an unknown
	// subkind is reported as a likely typo of a known one. 0 disables it.
	SuggestDistance int
}

// DefaultRules returns the standard naming convention.
func DefaultRules() Rules {
	return Rules{
		TemplatePrefix:  "TEMPLATE_",
		Extensions:      []string{".png", ".gif"},
		Overrides:       Overrides(),
		SuggestDistance: 2,
	}
}

// Classifier classifies asset filenames.
type Classifier struct {
	rules Rules
}

// NewClassifier creates a classifier for the given rules.
func NewClassifier(rules Rules) *Classifier {
	return &Classifier{rules: rules}
}

// Split separates a filename into base name, subkind and extension. The
// subkind is the second dot-delimited suffix, without its dot.
func Split(file string) (name, subkind, ext string) {
	ext = filepath.Ext(file)
	name = strings.TrimSuffix(file, ext)
	if sub := filepath.Ext(name); sub != "" {
		subkind = sub[1:]
		name = strings.TrimSuffix(name, sub)
	}
	return name, subkind, ext
}

// Classify applies the naming rules to a filename.
func (c *Classifier) Classify(file string) Classification {
	name, subkind, ext := Split(file)
	cl := Classification{File: file, Name: name, Subkind: subkind, Ext: ext}

	if !slices.Contains(c.rules.Extensions, ext) {
		return cl.ignore(fmt.Sprintf("unsupported extension %q", ext))
	}
	if name == "" {
		return cl.ignore("empty asset name")
	}
	if name[0] >= '0' && name[0] <= '9' {
		return cl.ignore("name starts with a digit")
	}
	if c.rules.TemplatePrefix != "" && strings.HasPrefix(name, c.rules.TemplatePrefix) {
		if subkind != "" {
			return cl.ignore("templates do not support overrides")
		}
		cl.Kind = FileTemplate
		return cl
	}
	if subkind == "" {
		cl.Kind = FileBase
		return cl
	}
	if o := Override(subkind); slices.Contains(c.rules.Overrides, o) {
		cl.Kind = FileOverride
		cl.Override = o
		return cl
	}

	reason := fmt.Sprintf("unknown subkind %q", subkind)
	if s := c.suggest(subkind); s != "" {
		reason += fmt.Sprintf(", did you mean %q?", s)
	}
	return cl.ignore(reason)
}

// suggest returns the closest known subkind within the suggestion distance.
func (c *Classifier) suggest(subkind string) string {
	if c.rules.SuggestDistance <= 0 {
		return ""
	}
	best, bestDist := "", c.rules.SuggestDistance+1
	for _, o := range c.rules.Overrides {
		d := levenshtein.ComputeDistance(strings.ToUpper(subkind), string(o))
		if d < bestDist {
			best, bestDist = string(o), d
		}
	}
	return best
}

func (cl Classification) ignore(reason string) Classification {
	cl.Kind = FileIgnored
	cl.Reason = reason
	return cl
}
