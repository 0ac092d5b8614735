// Package provider holds media provider profiles, the registry they live in,
// and the reference resolver that turns URLs, filenames or raw ids into
// provider playable ids.
package provider

import (
	"fmt"
	"regexp"
	"strings"

	"embedder/internal/media"
)

// JoinTokens stitch a player URL together: index 0 separates the base URL
// from the id, index 1 precedes the first parameter, index 2 joins the rest.
type JoinTokens [3]string

// DefaultJoin is used by profiles that do not declare their own tokens.
var DefaultJoin = JoinTokens{"/", "?", "&"}

// Rule is one entry of a provider's pattern table.
type Rule struct {
	Type   string         // Category given to matches, e.g. "video" or "list"
	Scheme *regexp.Regexp // Pattern checked against the reference string
	ID     int            // Index of the capture group holding the id
	Prefix string         // Prepended to the captured id

	// Accumulate is set when the rule declares a join token: later rules
	// keep being checked and their ids are appended with Join.
	Accumulate bool
	Join       string
}

// ParamSpec describes one player query parameter.
type ParamSpec struct {
	Name    string
	Default string
	Force   bool     // Emit even when the stored value equals Default
	Valid   []string // Accepted override values; empty accepts anything
	Type    string   // Input type hint for preference editors (color, number...)
}

// Attribute returns the tag attribute name used to override the parameter.
func (p ParamSpec) Attribute() string {
	return strings.ReplaceAll(p.Name, "-", "_")
}

// Accepts reports whether v is an allowed override value.
func (p ParamSpec) Accepts(v string) bool {
	if len(p.Valid) == 0 {
		return true
	}
	for _, ok := range p.Valid {
		if v == ok {
			return true
		}
	}
	return false
}

// Dims holds a provider's default player size. A nil Height means the
// player has no height dimension at all.
type Dims struct {
	Width  string
	Height *string
	Ratio  string
}

// DefaultDims matches the usual 640 wide 16:9 video player.
func DefaultDims() Dims {
	h := ""
	return Dims{Width: "640", Height: &h, Ratio: "16:9"}
}

// Profile is the static configuration bundle of one media source.
type Profile struct {
	Name   string
	Mode   media.Mode
	Src    string // Player base URL
	Join   JoinTokens
	Rules  []Rule
	Params []ParamSpec
	Dims   Dims
	Script string // External script required once per page

	// JoinByType replaces Join[0] for references resolved to the given type.
	JoinByType map[string]string
	// JoinHook runs after each reference is resolved and may rewrite the
	// join tokens used for that reference.
	JoinHook func(d media.Descriptor, join JoinTokens) JoinTokens

	// OEmbed mode only.
	Endpoint string
	URLBase  string
}

// Provider is a validated, immutable profile registered in a Registry.
type Provider struct {
	profile Profile
}

// New validates a profile and returns the provider built from it.
func New(p Profile) (*Provider, error) {
	p.Name = strings.ToLower(strings.TrimSpace(p.Name))
	if p.Name == "" {
		return nil, fmt.Errorf("provider name cannot be empty")
	}
	if len(p.Rules) == 0 {
		return nil, fmt.Errorf("provider %s: no patterns defined", p.Name)
	}
	for i, r := range p.Rules {
		if r.Scheme == nil {
			return nil, fmt.Errorf("provider %s: pattern %d has no scheme", p.Name, i)
		}
		if r.ID < 0 || r.ID > r.Scheme.NumSubexp() {
			return nil, fmt.Errorf("provider %s: pattern %q id %d out of range (%d groups)",
				p.Name, r.Type, r.ID, r.Scheme.NumSubexp())
		}
	}
	if p.Mode == media.OEmbed && p.Endpoint == "" {
		return nil, fmt.Errorf("provider %s: oembed mode requires an endpoint", p.Name)
	}
	if p.Mode == media.Direct && p.Src == "" {
		return nil, fmt.Errorf("provider %s: player src cannot be empty", p.Name)
	}

	// Copy slices and maps so callers cannot mutate a registered profile.
	p.Rules = append([]Rule(nil), p.Rules...)
	p.Params = append([]ParamSpec(nil), p.Params...)
	if p.Dims.Height != nil {
		h := *p.Dims.Height
		p.Dims.Height = &h
	}
	if p.JoinByType != nil {
		m := make(map[string]string, len(p.JoinByType))
		for k, v := range p.JoinByType {
			m[k] = v
		}
		p.JoinByType = m
	}

	return &Provider{profile: p}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string { return p.profile.Name }

// Mode returns how the provider builds its player.
func (p *Provider) Mode() media.Mode { return p.profile.Mode }

// Src returns the player base URL.
func (p *Provider) Src() string { return p.profile.Src }

// Script returns the external script URL, if any.
func (p *Provider) Script() string { return p.profile.Script }

// Join returns the provider's default join tokens.
func (p *Provider) Join() JoinTokens { return p.profile.Join }

// Rules returns a copy of the pattern table.
func (p *Provider) Rules() []Rule { return append([]Rule(nil), p.profile.Rules...) }

// Params returns a copy of the parameter schema in declaration order.
func (p *Provider) Params() []ParamSpec { return append([]ParamSpec(nil), p.profile.Params...) }

// Dims returns the default dimensions.
func (p *Provider) Dims() Dims {
	d := p.profile.Dims
	if d.Height != nil {
		h := *d.Height
		d.Height = &h
	}
	return d
}

// Endpoint returns the oEmbed endpoint.
func (p *Provider) Endpoint() string { return p.profile.Endpoint }

// MediaURL builds the canonical media URL sent to the oEmbed endpoint.
func (p *Provider) MediaURL(d media.Descriptor) string {
	return p.profile.URLBase + d.ID
}

// Pref is a stored preference and its default value.
type Pref struct {
	Key     string `json:"key"`
	Default string `json:"default"`
}

// PrefKey returns the preference key for one of the provider's fields.
func (p *Provider) PrefKey(field string) string {
	return p.profile.Name + "_" + field
}

// Prefs lists every preference the provider reads: dimensions first, then
// parameters in schema order.
func (p *Provider) Prefs() []Pref {
	d := p.profile.Dims
	prefs := []Pref{{Key: p.PrefKey("width"), Default: d.Width}}
	if d.Height != nil {
		prefs = append(prefs, Pref{Key: p.PrefKey("height"), Default: *d.Height})
	}
	prefs = append(prefs, Pref{Key: p.PrefKey("ratio"), Default: d.Ratio})
	for _, ps := range p.profile.Params {
		prefs = append(prefs, Pref{Key: p.PrefKey(ps.Name), Default: ps.Default})
	}
	return prefs
}

// Attributes lists the tag attributes the provider understands.
func (p *Provider) Attributes() []string {
	atts := []string{"width"}
	if p.profile.Dims.Height != nil {
		atts = append(atts, "height")
	}
	atts = append(atts, "ratio")
	for _, ps := range p.profile.Params {
		atts = append(atts, ps.Attribute())
	}
	return atts
}

// ParamInfo is the public description of a parameter.
type ParamInfo struct {
	Name      string   `json:"name"`
	Attribute string   `json:"attribute"`
	Default   string   `json:"default"`
	Valid     []string `json:"valid,omitempty"`
	Type      string   `json:"type,omitempty"`
}

// Info is the public description of a provider, as listed by the CLI and
// the HTTP service.
type Info struct {
	Name       string      `json:"name"`
	Mode       string      `json:"mode"`
	Src        string      `json:"src,omitempty"`
	Endpoint   string      `json:"endpoint,omitempty"`
	Script     string      `json:"script,omitempty"`
	Types      []string    `json:"types"`
	Attributes []string    `json:"attributes"`
	Params     []ParamInfo `json:"params,omitempty"`
	Prefs      []Pref      `json:"prefs"`
}

// Info describes the provider.
func (p *Provider) Info() Info {
	info := Info{
		Name:       p.profile.Name,
		Mode:       p.profile.Mode.String(),
		Src:        p.profile.Src,
		Endpoint:   p.profile.Endpoint,
		Script:     p.profile.Script,
		Attributes: p.Attributes(),
		Prefs:      p.Prefs(),
	}

	seen := make(map[string]bool)
	for _, r := range p.profile.Rules {
		if !seen[r.Type] {
			seen[r.Type] = true
			info.Types = append(info.Types, r.Type)
		}
	}

	for _, ps := range p.profile.Params {
		info.Params = append(info.Params, ParamInfo{
			Name:      ps.Name,
			Attribute: ps.Attribute(),
			Default:   ps.Default,
			Valid:     ps.Valid,
			Type:      ps.Type,
		})
	}
	return info
}
