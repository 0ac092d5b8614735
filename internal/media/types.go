// Package media defines shared types for the embedder application.
package media

import (
	"errors"
	"fmt"
)

// Mode selects how a provider turns descriptors into a player.
type Mode int

const (
	// Direct providers embed the resolved id straight into their player URL.
	Direct Mode = iota
	// OEmbed providers additionally look up remote metadata for the media.
	OEmbed
)

func (m Mode) String() string {
	switch m {
	case Direct:
		return "direct"
	case OEmbed:
		return "oembed"
	default:
		return "unknown"
	}
}

// ParseMode converts a profile mode name into a Mode. Empty means Direct.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "direct":
		return Direct, nil
	case "oembed":
		return OEmbed, nil
	default:
		return Direct, fmt.Errorf("unknown mode %q", s)
	}
}

// TypeID is the descriptor type given to bare ids resolved by fallback.
const TypeID = "id"

// Descriptor is the normalized result of resolving one reference string.
type Descriptor struct {
	ID   string `json:"id"`   // Provider playable id, e.g. "dQw4w9WgXcQ?list=PL123"
	Type string `json:"type"` // Category of the last rule applied, or "id"
}

// Layout is the resolved player size.
type Layout struct {
	Width     string `json:"width"`
	Height    string `json:"height,omitempty"`
	HasHeight bool   `json:"has_height"`        // False for players without a height dimension (audio bars)
	Padding   string `json:"padding,omitempty"` // Responsive intrinsic-ratio padding, e.g. "56.25%"
}

// Resolution problems. All but ErrNothingToPlay and ErrUnknownProvider are
// reported and degrade gracefully.
var (
	ErrNoMatch           = errors.New("no pattern matched reference")
	ErrInvalidRatio      = errors.New("invalid player ratio")
	ErrUndefinedSize     = errors.New("undefined player size")
	ErrUnitMismatch      = errors.New("width and height units differ")
	ErrInvalidParamValue = errors.New("invalid parameter value")
	ErrMissingField      = errors.New("missing remote field")
	ErrNothingToPlay     = errors.New("nothing to play")
	ErrUnknownProvider   = errors.New("unknown provider")
)

// WarningKind returns a short label for a reported resolution problem,
// used for log attributes and metric labels.
func WarningKind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRatio):
		return "invalid_ratio"
	case errors.Is(err, ErrUndefinedSize):
		return "undefined_size"
	case errors.Is(err, ErrUnitMismatch):
		return "unit_mismatch"
	case errors.Is(err, ErrInvalidParamValue):
		return "invalid_param_value"
	case errors.Is(err, ErrMissingField):
		return "missing_field"
	case errors.Is(err, ErrNoMatch):
		return "no_match"
	default:
		return "other"
	}
}

// Unwrap flattens an error produced by errors.Join into its parts.
// A nil error yields nil; a plain error yields itself.
func Unwrap(err error) []error {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []error
		for _, e := range joined.Unwrap() {
			out = append(out, Unwrap(e)...)
		}
		return out
	}
	return []error{err}
}
