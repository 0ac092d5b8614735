// Package embed turns a resolved descriptor, parameters and layout into
// player markup, and collects the provider scripts a page still needs.
package embed

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"embedder/internal/httputil"
	"embedder/internal/media"
	"embedder/internal/provider"
)

// numeric matches sizes written as attributes rather than inline style.
var numeric = regexp.MustCompile(`^\d+(\.\d+)?$`)

// zeroSize matches "0", "0px", "0.0%" and the like, which would hide the player.
var zeroSize = regexp.MustCompile(`^0+(\.0+)?\D*$`)

// Options control the markup around the iframe.
type Options struct {
	WrapTag string // Wrapper element; "div" is used for responsive players when empty
	Class   string // Wrapper class list, ignored without a wrapper
	Title   string // iframe title
}

// SourceURL builds the player URL: src, join[0], id, then the parameters
// joined by join[2] after join[1] (or join[2] when src and id already
// carry join[1]).
func SourceURL(src string, join provider.JoinTokens, id string, params []string) string {
	u := src + join[0] + id
	if len(params) == 0 {
		return u
	}

	joint := join[1]
	if strings.Contains(u, join[1]) {
		joint = join[2]
	}
	return u + joint + strings.Join(params, join[2])
}

// Markup renders the iframe for src sized by l. Responsive layouts with a
// padding get an absolutely positioned iframe inside a relatively
// positioned wrapper. Otherwise plain numbers become width and height
// attributes and sizes with a unit become inline style.
func Markup(src string, l media.Layout, responsive bool, opts Options) (string, error) {
	if src == "" {
		return "", media.ErrNothingToPlay
	}
	if err := httputil.ValidateClass(opts.Class); err != nil {
		return "", fmt.Errorf("wrapper class: %w", err)
	}

	style := []string{"border: none"}
	var attrs, wrapStyle string
	wrapTag := opts.WrapTag

	if responsive && l.Padding != "" {
		style = append(style, "position: absolute", "top: 0", "left: 0", "width: 100%", "height: 100%")
		wrapStyle = "position: relative; padding-bottom: " + l.Padding + "; height: 0; overflow: hidden"
		if wrapTag == "" {
			wrapTag = "div"
		}
	} else {
		for _, dim := range []struct{ name, value string }{{"width", l.Width}, {"height", l.Height}} {
			switch {
			case dim.value == "" || zeroSize.MatchString(dim.value):
			case numeric.MatchString(dim.value):
				attrs += fmt.Sprintf(` %s="%s"`, dim.name, dim.value)
			default:
				style = append(style, dim.name+": "+dim.value)
			}
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<iframe src="%s"`, html.EscapeString(src))
	b.WriteString(attrs)
	if opts.Title != "" {
		fmt.Fprintf(&b, ` title="%s"`, html.EscapeString(opts.Title))
	}
	fmt.Fprintf(&b, ` style="%s" allowfullscreen></iframe>`, html.EscapeString(strings.Join(style, "; ")))
	player := b.String()

	if wrapTag == "" {
		return player, nil
	}
	if err := httputil.ValidateTagName(wrapTag); err != nil {
		return "", fmt.Errorf("wrapper tag: %w", err)
	}

	var open strings.Builder
	open.WriteString("<" + wrapTag)
	if class := strings.Join(strings.Fields(opts.Class), " "); class != "" {
		fmt.Fprintf(&open, ` class="%s"`, class)
	}
	if wrapStyle != "" {
		fmt.Fprintf(&open, ` style="%s"`, html.EscapeString(wrapStyle))
	}
	open.WriteString(">")

	return open.String() + player + "</" + wrapTag + ">", nil
}
