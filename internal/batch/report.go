package batch

import (
	"errors"
	"fmt"
	"time"

	"github.com/jmylchreest/assetgen/internal/generate"
)

// ModuleError reports a module that could not be generated or written.
type ModuleError struct {
	Module string
	Err    error
}

func (e *ModuleError) Error() string {
	return fmt.Sprintf("module %s: %v", e.Module, e.Err)
}

func (e *ModuleError) Unwrap() error {
	return e.Err
}

// ModuleReport is the outcome of one module.
type ModuleReport struct {
	Module string
	Path   string

	// Listing is nil when the module failed before generation finished.
	Listing *generate.Listing

	// Written is true once the listing is on disk.
	Written bool

	Err error
}

// Report is the outcome of a batch run, in module order.
type Report struct {
	Modules []ModuleReport
	Elapsed time.Duration
}

// Failed returns the modules that failed.
func (r *Report) Failed() []ModuleReport {
	var out []ModuleReport
	for _, m := range r.Modules {
		if m.Err != nil {
			out = append(out, m)
		}
	}
	return out
}

// Assets returns the number of generated expressions across all modules.
func (r *Report) Assets() int {
	n := 0
	for _, m := range r.Modules {
		if m.Listing != nil {
			n += m.Listing.Count()
		}
	}
	return n
}

// AssetFailures returns the number of assets that failed extraction.
func (r *Report) AssetFailures() int {
	n := 0
	for _, m := range r.Modules {
		if m.Listing != nil {
			n += len(m.Listing.Failures)
		}
	}
	return n
}

// Err joins every module and asset failure, or returns nil when the run was
// clean.
func (r *Report) Err() error {
	var errs []error
	for _, m := range r.Modules {
		if m.Err != nil {
			errs = append(errs, m.Err)
		}
		if m.Listing != nil {
			for _, f := range m.Listing.Failures {
				errs = append(errs, f)
			}
		}
	}
	return errors.Join(errs...)
}
