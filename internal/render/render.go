// Package render is the player pipeline: it picks a provider, resolves the
// reference set, gathers parameters and layout, and composes the markup.
package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"embedder/internal/embed"
	"embedder/internal/layout"
	"embedder/internal/media"
	"embedder/internal/metrics"
	"embedder/internal/oembed"
	"embedder/internal/params"
	"embedder/internal/prefs"
	"embedder/internal/provider"
)

// ResponsiveAttr is the attribute switching responsive layout on or off.
const ResponsiveAttr = "responsive"

// Options configure a Renderer.
type Options struct {
	Plugin   string         // Owner of global preferences such as "{plugin}_responsive"
	Fallback bool           // Resolve bare ids as raw provider ids
	OEmbed   *oembed.Client // Defaults to a hardened client
	Logger   *slog.Logger   // Defaults to slog.Default()
}

// Renderer renders players. It holds only read-only state and can be shared.
type Renderer struct {
	registry *provider.Registry
	prefs    prefs.Store
	oembed   *oembed.Client
	plugin   string
	fallback bool
	logger   *slog.Logger
}

// New returns a Renderer over the registry and preference store.
func New(reg *provider.Registry, store prefs.Store, opts Options) *Renderer {
	if opts.Plugin == "" {
		opts.Plugin = "player"
	}
	if opts.OEmbed == nil {
		opts.OEmbed = oembed.NewClient(nil)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if store == nil {
		store = prefs.Map{}
	}
	return &Renderer{
		registry: reg,
		prefs:    store,
		oembed:   opts.OEmbed,
		plugin:   opts.Plugin,
		fallback: opts.Fallback,
		logger:   opts.Logger,
	}
}

// Request describes one player.
type Request struct {
	Provider string            // Provider name; detected from Play when empty
	Play     string            // Reference set
	Attrs    map[string]string // Attribute overrides: width, height, ratio, responsive, parameters
	WrapTag  string
	Class    string
}

// Warning is a non-fatal problem met while rendering.
type Warning struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Result is a rendered player.
type Result struct {
	Provider   string           `json:"provider"`
	Mode       string           `json:"mode"`
	Descriptor media.Descriptor `json:"descriptor"`
	Src        string           `json:"src"`
	Title      string           `json:"title,omitempty"`
	Responsive bool             `json:"responsive"`
	Layout     media.Layout     `json:"layout"`
	Markup     string           `json:"markup"`
	Warnings   []Warning        `json:"warnings,omitempty"`
}

// Pick returns the provider named in the request, or the first registered
// provider recognising the reference set, along with its resolution.
func (r *Renderer) Pick(name, play string) (*provider.Provider, *provider.Resolution, error) {
	if name != "" {
		p, err := r.registry.Get(name)
		if err != nil {
			return nil, nil, err
		}
		return p, p.Resolve(play, r.fallback), nil
	}

	p, res, ok := r.registry.Detect(play)
	if !ok {
		return nil, nil, fmt.Errorf("%w: no provider recognises %q", media.ErrUnknownProvider, play)
	}
	return p, res, nil
}

// IfPlayer reports whether the request would render something.
func (r *Renderer) IfPlayer(name, play string) bool {
	_, res, err := r.Pick(name, play)
	if err != nil {
		return false
	}
	_, err = res.First()
	return err == nil
}

// Responsive reports whether a player is rendered responsive: the
// responsive attribute when set, otherwise the "{plugin}_responsive"
// preference.
func (r *Renderer) Responsive(attrs map[string]string) bool {
	if v := attrs[ResponsiveAttr]; v != "" {
		return v == "true"
	}
	v, _ := r.prefs.Get(prefs.Key(r.plugin, ResponsiveAttr))
	return v == "true"
}

// Render renders a player. Only ErrUnknownProvider, ErrNothingToPlay and
// invalid wrapper options are returned as errors; every other problem is
// logged, counted and listed in Result.Warnings. Scripts the player needs
// are required on page when it is not nil.
func (r *Renderer) Render(ctx context.Context, page *embed.Page, req Request) (*Result, error) {
	p, res, err := r.Pick(req.Provider, req.Play)
	if err != nil {
		metrics.RendersTotal.WithLabelValues("unknown", "unknown", "error").Inc()
		return nil, err
	}
	name := p.Name()
	mode := p.Mode().String()

	entry, err := res.First()
	if err != nil {
		metrics.ResolutionsTotal.WithLabelValues(name, "unresolved").Inc()
		metrics.RendersTotal.WithLabelValues(name, mode, "error").Inc()
		return nil, err
	}
	outcome := "resolved"
	if entry.Descriptor.Type == media.TypeID {
		outcome = "fallback"
	}
	metrics.ResolutionsTotal.WithLabelValues(name, outcome).Inc()

	result := &Result{
		Provider:   name,
		Mode:       mode,
		Descriptor: entry.Descriptor,
		Responsive: r.Responsive(req.Attrs),
	}
	var warnings []error

	stored := prefs.Scoped(r.prefs, name)

	query, err := params.Resolve(p.Params(), req.Attrs, params.Lookup(stored))
	warnings = append(warnings, media.Unwrap(err)...)

	result.Layout, err = layout.Resolve(p.Dims(), req.Attrs, layout.Lookup(stored), result.Responsive)
	warnings = append(warnings, media.Unwrap(err)...)

	src, join, id := p.Src(), entry.Join, entry.Descriptor.ID
	if p.Mode() == media.OEmbed {
		lookup := r.oembed.Lookup(p.Endpoint(), p.MediaURL(entry.Descriptor))

		title, err := lookup.Value(ctx, "title")
		if err != nil {
			warnings = append(warnings, err)
		}
		result.Title = title

		if src == "" {
			embedSrc, err := lookup.EmbedSrc(ctx)
			if err != nil {
				metrics.RendersTotal.WithLabelValues(name, mode, "error").Inc()
				return nil, fmt.Errorf("%w: %w", media.ErrNothingToPlay, err)
			}
			src, join[0], id = embedSrc, "", ""
		}
	}

	result.Src = embed.SourceURL(src, join, id, query)

	result.Markup, err = embed.Markup(result.Src, result.Layout, result.Responsive, embed.Options{
		WrapTag: req.WrapTag,
		Class:   req.Class,
		Title:   result.Title,
	})
	if err != nil {
		metrics.RendersTotal.WithLabelValues(name, mode, "error").Inc()
		return nil, err
	}

	if page != nil {
		if page.Require(p.Script()) {
			r.logger.Debug("script required", "provider", name, "script", p.Script())
		}
	}

	for _, w := range warnings {
		kind := media.WarningKind(w)
		r.logger.Warn("render warning", "provider", name, "kind", kind, "error", w)
		metrics.WarningsTotal.WithLabelValues(name, kind).Inc()
		result.Warnings = append(result.Warnings, Warning{Kind: kind, Message: w.Error()})
	}

	metrics.RendersTotal.WithLabelValues(name, mode, "ok").Inc()
	r.logger.Debug("player rendered", "provider", name, "id", result.Descriptor.ID, "type", result.Descriptor.Type)

	return result, nil
}

// Fatal reports whether a Render error means nothing could be rendered
// for the request itself, as opposed to a malformed request.
func Fatal(err error) bool {
	return errors.Is(err, media.ErrNothingToPlay) || errors.Is(err, media.ErrUnknownProvider)
}
