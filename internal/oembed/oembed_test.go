package oembed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"embedder/internal/media"
)

const vimeoDoc = `{
	"type": "video",
	"title": "Sintel",
	"width": 640,
	"height": 272,
	"is_plus": false,
	"thumbnail": null,
	"html": "<iframe src=\"https://player.vimeo.com/video/1084537?h=abc&amp;app_id=1\" width=\"640\" height=\"272\" allowfullscreen></iframe>"
}`

func newServer(t *testing.T, body string, status int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if got := r.URL.Query().Get("url"); got != "https://vimeo.com/1084537" {
			t.Errorf("url param = %q", got)
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestLookupURL(t *testing.T) {
	c := NewClient(nil)

	l := c.Lookup("https://vimeo.com/api/oembed.json", "https://vimeo.com/1084537")
	if want := "https://vimeo.com/api/oembed.json?url=https%3A%2F%2Fvimeo.com%2F1084537"; l.URL() != want {
		t.Errorf("URL() = %q, want %q", l.URL(), want)
	}

	l = c.Lookup("https://example.com/oembed?format=json", "https://example.com/v/1")
	if want := "https://example.com/oembed?format=json&url=https%3A%2F%2Fexample.com%2Fv%2F1"; l.URL() != want {
		t.Errorf("URL() = %q, want %q", l.URL(), want)
	}
}

func TestFieldFetchesOnce(t *testing.T) {
	srv, hits := newServer(t, vimeoDoc, http.StatusOK)
	l := NewClient(srv.Client()).Lookup(srv.URL+"/api/oembed.json", "https://vimeo.com/1084537")
	ctx := context.Background()

	if hits.Load() != 0 {
		t.Fatal("lookup should not fetch before a field is read")
	}

	tests := []struct {
		field string
		want  string
		ok    bool
	}{
		{"title", "Sintel", true},
		{"width", "640", true},
		{"is_plus", "false", true},
		{"thumbnail", "", false},
		{"author_name", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			got, ok := l.Field(ctx, tt.field)
			if got != tt.want || ok != tt.ok {
				t.Errorf("Field(%q) = %q, %v, want %q, %v", tt.field, got, ok, tt.want, tt.ok)
			}
		})
	}

	if hits.Load() != 1 {
		t.Errorf("endpoint hit %d times, want 1", hits.Load())
	}
	if l.Err() != nil {
		t.Errorf("Err() = %v", l.Err())
	}
}

func TestFieldFailureIsMissing(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"server error", `{"title":"x"}`, http.StatusInternalServerError},
		{"not found", "", http.StatusNotFound},
		{"malformed json", `{"title":`, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newServer(t, tt.body, tt.status)
			l := NewClient(srv.Client()).Lookup(srv.URL, "https://vimeo.com/1084537")

			if _, ok := l.Field(context.Background(), "title"); ok {
				t.Error("field should be missing")
			}
			if l.Err() == nil {
				t.Error("Err() should report the failure")
			}

			_, err := l.Value(context.Background(), "title")
			if !errors.Is(err, media.ErrMissingField) {
				t.Errorf("Value() error = %v, want ErrMissingField", err)
			}
		})
	}
}

func TestEmbedSrc(t *testing.T) {
	srv, _ := newServer(t, vimeoDoc, http.StatusOK)
	l := NewClient(srv.Client()).Lookup(srv.URL, "https://vimeo.com/1084537")

	src, err := l.EmbedSrc(context.Background())
	if err != nil {
		t.Fatalf("EmbedSrc() error: %v", err)
	}
	if want := "https://player.vimeo.com/video/1084537?h=abc&app_id=1"; src != want {
		t.Errorf("EmbedSrc() = %q, want %q", src, want)
	}
}

func TestEmbedSrcWithoutIframe(t *testing.T) {
	srv, _ := newServer(t, `{"html":"<p>no player</p>"}`, http.StatusOK)
	l := NewClient(srv.Client()).Lookup(srv.URL, "https://vimeo.com/1084537")

	if _, err := l.EmbedSrc(context.Background()); !errors.Is(err, media.ErrMissingField) {
		t.Errorf("EmbedSrc() error = %v, want ErrMissingField", err)
	}
}
