package provider

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"

	"embedder/internal/media"
)

//go:embed providers.toml
var builtinProfiles []byte

// Registry maps provider names to providers. It is built once and read-only
// afterwards, so it can be shared freely.
type Registry struct {
	providers []*Provider
	byName    map[string]*Provider
}

// NewRegistry validates and registers profiles in order. Later profiles
// replace earlier ones with the same name, keeping the earlier position.
func NewRegistry(profiles ...Profile) (*Registry, error) {
	r := &Registry{byName: make(map[string]*Provider)}
	for _, prof := range profiles {
		p, err := New(prof)
		if err != nil {
			return nil, err
		}
		if existing, ok := r.byName[p.Name()]; ok {
			for i := range r.providers {
				if r.providers[i] == existing {
					r.providers[i] = p
				}
			}
		} else {
			r.providers = append(r.providers, p)
		}
		r.byName[p.Name()] = p
	}
	return r, nil
}

// Builtin returns a registry holding the built-in profiles, followed by
// any extra profiles.
func Builtin(extra ...Profile) (*Registry, error) {
	profiles, err := ParseProfiles(builtinProfiles)
	if err != nil {
		return nil, fmt.Errorf("parsing built-in providers: %w", err)
	}
	return NewRegistry(append(profiles, extra...)...)
}

// Get returns the provider registered under name (case-insensitive).
func (r *Registry) Get(name string) (*Provider, error) {
	p, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", media.ErrUnknownProvider, name)
	}
	return p, nil
}

// All returns the providers in registration order.
func (r *Registry) All() []*Provider {
	return append([]*Provider(nil), r.providers...)
}

// Names returns the provider names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.providers))
	for i, p := range r.providers {
		names[i] = p.Name()
	}
	return names
}

// Detect returns the first provider whose pattern table resolves the
// reference set. Bare ids cannot be attributed to a provider and never match.
func (r *Registry) Detect(play string) (*Provider, *Resolution, bool) {
	for _, p := range r.providers {
		res := p.Resolve(play, false)
		if res.Valid() {
			return p, res, true
		}
	}
	return nil, nil, false
}

// profileFile is the TOML layout of a providers file.
type profileFile struct {
	Providers []profileEntry `toml:"provider"`
}

type profileEntry struct {
	Name       string            `toml:"name"`
	Mode       string            `toml:"mode"`
	Src        string            `toml:"src"`
	Join       []string          `toml:"join"`
	Script     string            `toml:"script"`
	Endpoint   string            `toml:"endpoint"`
	URLBase    string            `toml:"url_base"`
	JoinByType map[string]string `toml:"join_by_type"`
	Dims       *dimsEntry        `toml:"dims"`
	Patterns   []patternEntry    `toml:"pattern"`
	Params     []paramEntry      `toml:"param"`
}

type dimsEntry struct {
	Width  string  `toml:"width"`
	Height *string `toml:"height"`
	Ratio  string  `toml:"ratio"`
}

type patternEntry struct {
	Type   string  `toml:"type"`
	Scheme string  `toml:"scheme"`
	ID     int     `toml:"id"`
	Join   *string `toml:"join"`
	Prefix string  `toml:"prefix"`
}

type paramEntry struct {
	Name    string   `toml:"name"`
	Default string   `toml:"default"`
	Force   bool     `toml:"force"`
	Valid   []string `toml:"valid"`
	Type    string   `toml:"type"`
}

// ParseProfiles decodes provider profiles from TOML. Patterns are compiled
// here; structural checks happen when the profiles are registered.
func ParseProfiles(data []byte) ([]Profile, error) {
	var f profileFile
	if _, err := toml.Decode(string(data), &f); err != nil {
		return nil, fmt.Errorf("decoding providers: %w", err)
	}

	profiles := make([]Profile, 0, len(f.Providers))
	for _, e := range f.Providers {
		p, err := e.profile()
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// LoadFile reads provider profiles from a TOML file.
func LoadFile(path string) ([]Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading providers file: %w", err)
	}
	profiles, err := ParseProfiles(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return profiles, nil
}

func (e profileEntry) profile() (Profile, error) {
	mode, err := media.ParseMode(e.Mode)
	if err != nil {
		return Profile{}, fmt.Errorf("provider %s: %w", e.Name, err)
	}

	p := Profile{
		Name:       e.Name,
		Mode:       mode,
		Src:        e.Src,
		Join:       DefaultJoin,
		Script:     e.Script,
		Endpoint:   e.Endpoint,
		URLBase:    e.URLBase,
		JoinByType: e.JoinByType,
		Dims:       DefaultDims(),
	}

	if e.Join != nil {
		if len(e.Join) != len(p.Join) {
			return Profile{}, fmt.Errorf("provider %s: join needs %d tokens, got %d", e.Name, len(p.Join), len(e.Join))
		}
		copy(p.Join[:], e.Join)
	}

	if e.Dims != nil {
		p.Dims = Dims{Width: e.Dims.Width, Height: e.Dims.Height, Ratio: e.Dims.Ratio}
	}

	for _, pe := range e.Patterns {
		re, err := regexp.Compile(pe.Scheme)
		if err != nil {
			return Profile{}, fmt.Errorf("provider %s: pattern %q: %w", e.Name, pe.Type, err)
		}
		rule := Rule{Type: pe.Type, Scheme: re, ID: pe.ID, Prefix: pe.Prefix}
		if pe.Join != nil {
			rule.Accumulate = true
			rule.Join = *pe.Join
		}
		p.Rules = append(p.Rules, rule)
	}

	for _, pa := range e.Params {
		p.Params = append(p.Params, ParamSpec{
			Name:    pa.Name,
			Default: pa.Default,
			Force:   pa.Force,
			Valid:   pa.Valid,
			Type:    pa.Type,
		})
	}

	return p, nil
}
