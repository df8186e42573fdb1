package extract

import "fmt"

// ConfigurationError reports an asset that cannot be extracted because the
// reference server has no base image for it. There is nothing to fall back to.
type ConfigurationError struct {
	Asset     string
	Module    string
	Reference string
	Path      string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("asset %s in module %s has no base image on reference server %s (looked for %s)",
		e.Asset, e.Module, e.Reference, e.Path)
}

// DiagnosticKind classifies a non-fatal finding made during extraction.
type DiagnosticKind int

const (
	// DiagnosticFallback notes a server that reused the reference entry.
	DiagnosticFallback DiagnosticKind = iota
	// DiagnosticConsistency notes an animated asset whose frames disagree on
	// their bounding box.
	DiagnosticConsistency
	// DiagnosticResolution notes an image that is not at the reference
	// resolution.
	DiagnosticResolution
)

// String returns the diagnostic kind name.
func (k DiagnosticKind) String() string {
	switch k {
	case DiagnosticFallback:
		return "fallback"
	case DiagnosticConsistency:
		return "consistency"
	case DiagnosticResolution:
		return "resolution"
	default:
		return "unknown"
	}
}

// Diagnostic is a non-fatal finding about one file or server.
type Diagnostic struct {
	Kind    DiagnosticKind
	Asset   string
	Server  string
	Path    string
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Kind, d.Message)
}
