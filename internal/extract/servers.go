package extract

import (
	"errors"
	"fmt"
	"slices"
)

// Servers is the fixed set of servers assets are extracted for. Reference is
// the authoritative server the others fall back to.
type Servers struct {
	Names     []string
	Reference string
}

// DefaultServers returns the supported servers with cn as the reference.
func DefaultServers() Servers {
	return Servers{
		Names:     []string{"cn", "en", "jp", "tw"},
		Reference: "cn",
	}
}

// Validate checks that the server list is usable.
func (s Servers) Validate() error {
	var errs []error
	if len(s.Names) == 0 {
		errs = append(errs, errors.New("no servers configured"))
	}
	seen := make(map[string]bool, len(s.Names))
	for _, name := range s.Names {
		if name == "" {
			errs = append(errs, errors.New("empty server name"))
			continue
		}
		if seen[name] {
			errs = append(errs, fmt.Errorf("duplicate server %q", name))
		}
		seen[name] = true
	}
	if !slices.Contains(s.Names, s.Reference) {
		errs = append(errs, fmt.Errorf("reference server %q is not in the server list %v", s.Reference, s.Names))
	}
	return errors.Join(errs...)
}

// ProcessingOrder returns the reference server first, followed by the others
// in their configured order. Fallback entries copy the reference, so it must
// be resolved before anything else.
func (s Servers) ProcessingOrder() []string {
	order := make([]string, 0, len(s.Names))
	order = append(order, s.Reference)
	for _, name := range s.Names {
		if name != s.Reference {
			order = append(order, name)
		}
	}
	return order
}
