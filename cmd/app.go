package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"embedder/internal/oembed"
	"embedder/internal/prefs"
	"embedder/internal/provider"
	"embedder/internal/render"
)

// app bundles what the render commands share.
type app struct {
	registry *provider.Registry
	store    prefs.Writable
	renderer *render.Renderer
}

func loadRegistry() (*provider.Registry, error) {
	path, err := cfg.ResolveProvidersFile()
	if err != nil {
		return nil, err
	}

	var extra []provider.Profile
	if path != "" {
		extra, err = provider.LoadFile(path)
		if err != nil {
			return nil, err
		}
		debugf("loaded %d provider profiles from %s", len(extra), path)
	}

	reg, err := provider.Builtin(extra...)
	if err != nil {
		return nil, fmt.Errorf("building provider registry: %w", err)
	}
	return reg, nil
}

func openStore() (prefs.Writable, error) {
	path, err := cfg.ResolvePrefsPath()
	if err != nil {
		return nil, err
	}
	debugf("preferences: %s (%s)", path, cfg.PrefsBackend)
	return prefs.Open(strings.ToLower(cfg.PrefsBackend), path)
}

func openApp() (*app, error) {
	reg, err := loadRegistry()
	if err != nil {
		return nil, err
	}

	store, err := openStore()
	if err != nil {
		return nil, err
	}

	timeout, err := cfg.Timeout()
	if err != nil {
		store.Close()
		return nil, err
	}

	rend := render.New(reg, store, render.Options{
		Plugin:   cfg.Plugin,
		Fallback: cfg.Fallback,
		OEmbed:   oembed.NewClientTimeout(timeout),
		Logger:   slog.Default(),
	})

	return &app{registry: reg, store: store, renderer: rend}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		debugf("closing preferences: %v", err)
	}
}

// parseAttrs turns key=value pairs into attribute overrides.
func parseAttrs(pairs []string) (map[string]string, error) {
	attrs := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid attribute %q (want name=value)", pair)
		}
		attrs[strings.ReplaceAll(strings.ToLower(k), "-", "_")] = v
	}
	return attrs, nil
}
