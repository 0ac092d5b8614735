// Package layout works out a player's width and height from tag attribute
// overrides, stored preferences and the provider's default dimensions.
package layout

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"

	"embedder/internal/media"
	"embedder/internal/provider"
)

// Lookup returns a stored preference value for a dimension name
// ("width", "height" or "ratio"). ok is false when nothing is stored.
type Lookup func(field string) (value string, ok bool)

var (
	whitespace   = regexp.MustCompile(`\s+`)
	sizePattern  = regexp.MustCompile(`^(\d+(?:\.\d+)?)(\D*)$`)
	ratioPattern = regexp.MustCompile(`^(\d+):(\d+)$`)
)

// size is a dimension split into its magnitude and unit suffix.
// An empty unit means pixels.
type size struct {
	n    float64
	unit string
}

// parseSize reads "640", "33.3%" or "1.5em". Anything else has no usable
// magnitude and counts as unset.
func parseSize(raw string) size {
	m := sizePattern.FindStringSubmatch(raw)
	if m == nil {
		return size{}
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return size{}
	}
	return size{n: n, unit: m[2]}
}

// String prints the size, dropping the redundant px unit.
func (s size) String() string {
	if s.unit == "" || s.unit == "px" {
		return formatNumber(s.n)
	}
	return formatNumber(s.n) + s.unit
}

// ratio is a validated "W:H" aspect ratio.
type ratio struct {
	w, h int
}

func parseRatio(raw string) (ratio, bool) {
	m := ratioPattern.FindStringSubmatch(raw)
	if m == nil {
		return ratio{}, false
	}
	w, errW := strconv.Atoi(m[1])
	h, errH := strconv.Atoi(m[2])
	if errW != nil || errH != nil || w == 0 || h == 0 {
		return ratio{}, false
	}
	return ratio{w: w, h: h}, true
}

// percent returns the height-to-width ratio as a padding percentage.
func (r ratio) percent() string {
	return formatNumber(float64(r.h)*100/float64(r.w)) + "%"
}

// value picks the effective raw value of a dimension: an explicit override
// ("false" forces zero), else the stored preference, else the default.
func value(field, def string, overrides map[string]string, stored Lookup) string {
	switch att := overrides[field]; att {
	case "false":
		return "0"
	case "":
	default:
		return whitespace.ReplaceAllString(att, "")
	}

	pref := def
	if stored != nil {
		if v, ok := stored(field); ok {
			pref = v
		}
	}
	return whitespace.ReplaceAllString(pref, "")
}

// Resolve computes the player size. The returned layout is always a best
// effort; the error reports every problem met on the way (ErrInvalidRatio,
// ErrUndefinedSize, ErrUnitMismatch) and never means the layout is unusable
// by itself.
func Resolve(dims provider.Dims, overrides map[string]string, stored Lookup, responsive bool) (media.Layout, error) {
	var errs []error

	w := parseSize(value("width", dims.Width, overrides, stored))

	hasHeight := dims.Height != nil
	var h size
	if hasHeight {
		h = parseSize(value("height", *dims.Height, overrides, stored))
	}

	var (
		r        ratio
		hasRatio bool
	)
	if raw := value("ratio", dims.Ratio, overrides, stored); raw != "" && raw != "0" {
		if r, hasRatio = parseRatio(raw); !hasRatio {
			errs = append(errs, fmt.Errorf("%w: %q", media.ErrInvalidRatio, raw))
		}
	}

	out := media.Layout{HasHeight: hasHeight}

	// Dimensions left unset here keep their parsed magnitude and get their
	// unit re-appended below.
	var width, height string
	widthSet, heightSet := false, false

	if responsive {
		switch {
		case hasRatio:
			out.Padding = r.percent()
			width, widthSet = "100%", true
			height, heightSet = out.Padding, true
		case hasHeight && w.n != 0 && h.n != 0:
			switch {
			case w.unit == h.unit:
				out.Padding = formatNumber(h.n*100/w.n) + "%"
				width, widthSet = "100%", true
				height, heightSet = out.Padding, true
			case w.n == 100 && w.unit == "%" && h.unit == "":
				// Full width with a fixed pixel height.
				out.Padding = formatNumber(h.n) + "px"
			default:
				errs = append(errs, fmt.Errorf("%w: %q and %q", media.ErrUnitMismatch, w.unit, h.unit))
			}
		case w.n != 0:
			width, widthSet = "100%", true
		default:
			errs = append(errs, media.ErrUndefinedSize)
		}
	} else {
		switch {
		case w.n == 0 && (!hasHeight || h.n == 0):
			errs = append(errs, media.ErrUndefinedSize)
		case hasHeight && (w.n == 0 || h.n == 0):
			switch {
			case !hasRatio:
				errs = append(errs, media.ErrUndefinedSize)
			case w.n != 0:
				height, heightSet = size{n: w.n * float64(r.h) / float64(r.w), unit: w.unit}.String(), true
			default:
				width, widthSet = size{n: h.n * float64(r.w) / float64(r.h), unit: h.unit}.String(), true
			}
		}
	}

	if !widthSet {
		width = w.String()
	}
	if hasHeight && !heightSet {
		switch {
		case !responsive:
			height = h.String()
		case h.n == 0:
			// A zero height would hide the player; leave it to the page.
		case h.unit == "":
			height = formatNumber(h.n) + "px"
		default:
			height = formatNumber(h.n) + h.unit
		}
	}

	out.Width = width
	out.Height = height
	return out, errors.Join(errs...)
}

// formatNumber prints v with at most four decimals and no trailing zeros.
func formatNumber(v float64) string {
	return strconv.FormatFloat(math.Round(v*1e4)/1e4, 'f', -1, 64)
}
