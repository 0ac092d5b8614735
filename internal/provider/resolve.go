package provider

import (
	"fmt"
	"regexp"
	"strings"

	"embedder/internal/media"
)

// RefSeparator separates the references of a reference set.
const RefSeparator = ", "

// notIDPattern spots a file-extension-like token; references containing one
// are URLs or filenames, anything else is a bare provider id.
var notIDPattern = regexp.MustCompile(`[.][a-z]+`)

// SplitRefs splits a reference set into its individual references.
func SplitRefs(play string) []string {
	return strings.Split(play, RefSeparator)
}

// IsBareID reports whether a reference is treated as a raw provider id.
func IsBareID(ref string) bool {
	return !notIDPattern.MatchString(ref)
}

// Entry is one resolved reference.
type Entry struct {
	Ref        string
	Descriptor media.Descriptor
	Join       JoinTokens // Tokens to build this reference's player URL with
}

// Resolution maps each reference of a set to its descriptor.
// Entries keep resolution order.
type Resolution struct {
	refs    []string
	order   []string
	entries map[string]Entry
}

// Refs returns the references as given, including unresolved ones.
func (r *Resolution) Refs() []string {
	return append([]string(nil), r.refs...)
}

// Entries returns the resolved references in resolution order.
func (r *Resolution) Entries() []Entry {
	out := make([]Entry, 0, len(r.order))
	for _, ref := range r.order {
		out = append(out, r.entries[ref])
	}
	return out
}

// Lookup returns the entry resolved for ref.
func (r *Resolution) Lookup(ref string) (Entry, bool) {
	e, ok := r.entries[ref]
	return e, ok
}

// Valid reports whether at least one reference resolved.
func (r *Resolution) Valid() bool {
	return len(r.entries) > 0
}

// First returns the entry of the first reference, the one a player is
// built for. It fails when that reference is empty or did not resolve.
func (r *Resolution) First() (Entry, error) {
	if len(r.refs) == 0 || r.refs[0] == "" {
		return Entry{}, media.ErrNothingToPlay
	}
	e, ok := r.entries[r.refs[0]]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q: %w", media.ErrNothingToPlay, r.refs[0], media.ErrNoMatch)
	}
	return e, nil
}

func (r *Resolution) set(e Entry) {
	if _, exists := r.entries[e.Ref]; exists {
		r.drop(e.Ref)
	}
	r.entries[e.Ref] = e
	r.order = append(r.order, e.Ref)
}

func (r *Resolution) drop(ref string) {
	if _, ok := r.entries[ref]; !ok {
		return
	}
	delete(r.entries, ref)
	for i, o := range r.order {
		if o == ref {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Resolve turns a reference set into descriptors using the provider's
// pattern table. Bare ids only resolve when fallback is set. Each call starts
// from the provider's default join tokens.
func (p *Provider) Resolve(play string, fallback bool) *Resolution {
	res := &Resolution{
		refs:    SplitRefs(play),
		entries: make(map[string]Entry),
	}

	for _, ref := range res.refs {
		res.drop(ref)

		d, ok := p.resolveRef(ref, fallback)
		if !ok {
			continue
		}
		res.set(Entry{Ref: ref, Descriptor: d, Join: p.joinFor(d)})
	}

	return res
}

// resolveRef resolves a single reference string.
func (p *Provider) resolveRef(ref string, fallback bool) (media.Descriptor, bool) {
	if IsBareID(ref) {
		if fallback {
			return media.Descriptor{ID: ref, Type: media.TypeID}, true
		}
		return media.Descriptor{}, false
	}

	var (
		d     media.Descriptor
		found bool
		glue  string
	)
	for _, rule := range p.profile.Rules {
		m := rule.Scheme.FindStringSubmatch(ref)
		if m == nil {
			continue
		}
		id := rule.Prefix + capture(m, rule.ID)

		if !found {
			d = media.Descriptor{ID: id, Type: rule.Type}
			found = true
			if !rule.Accumulate {
				break
			}
			glue = rule.Join
			continue
		}

		// Type follows the last matching rule even though earlier ones
		// contributed to the id.
		d.ID += glue + id
		d.Type = rule.Type
	}

	return d, found
}

// joinFor returns the join tokens used for a resolved reference.
func (p *Provider) joinFor(d media.Descriptor) JoinTokens {
	join := p.profile.Join
	if tok, ok := p.profile.JoinByType[d.Type]; ok {
		join[0] = tok
	}
	if p.profile.JoinHook != nil {
		join = p.profile.JoinHook(d, join)
	}
	return join
}

func capture(m []string, i int) string {
	if i < len(m) {
		return m[i]
	}
	return ""
}
