// Package params builds the query parameters of a player URL from tag
// attribute overrides and stored preferences.
package params

import (
	"errors"
	"fmt"
	"strings"

	"embedder/internal/media"
	"embedder/internal/provider"
)

// Lookup returns a stored preference value for a parameter name.
// ok is false when nothing is stored.
type Lookup func(name string) (value string, ok bool)

// Resolve returns "name=value" pairs in schema order.
//
// Without an override, a parameter is emitted when its stored value differs
// from the declared default or when the schema forces it. An override is
// emitted when it is one of the parameter's valid values; otherwise the
// parameter is dropped and the problem is reported in the returned error.
// '#' is stripped from every value since colors are kept with a leading hash.
func Resolve(specs []provider.ParamSpec, overrides map[string]string, stored Lookup) ([]string, error) {
	var (
		out  []string
		errs []error
	)

	for _, spec := range specs {
		value := overrides[spec.Attribute()]

		if value == "" {
			pref := spec.Default
			if stored != nil {
				if v, ok := stored(spec.Name); ok {
					pref = v
				}
			}
			if pref != spec.Default || spec.Force {
				out = append(out, spec.Name+"="+stripHash(pref))
			}
			continue
		}

		if !spec.Accepts(value) {
			errs = append(errs, fmt.Errorf("%w for %q: %q (valid: %s)",
				media.ErrInvalidParamValue, spec.Attribute(), value, strings.Join(spec.Valid, ", ")))
			continue
		}
		out = append(out, spec.Name+"="+stripHash(value))
	}

	return out, errors.Join(errs...)
}

func stripHash(v string) string {
	return strings.ReplaceAll(v, "#", "")
}
