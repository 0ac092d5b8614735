// Package oembed reads remote media metadata from oEmbed endpoints.
//
// A Lookup is bound to one media URL. Its document is fetched on first
// field access and cached for the lookup's lifetime. Fetch and decode
// failures never abort a render: the requested field is simply missing and
// the cause is kept for Err.
package oembed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"embedder/internal/httputil"
	"embedder/internal/media"
	"embedder/internal/metrics"
)

// Client issues oEmbed requests.
type Client struct {
	http *http.Client
}

// NewClient wraps an HTTP client. A nil client selects a hardened default.
func NewClient(c *http.Client) *Client {
	if c == nil {
		c = httputil.NewClient(0)
	}
	return &Client{http: c}
}

// NewClientTimeout returns a Client whose requests time out after d.
func NewClientTimeout(d time.Duration) *Client {
	return NewClient(httputil.NewClient(d))
}

// Lookup prepares, without fetching, the metadata lookup of mediaURL.
func (c *Client) Lookup(endpoint, mediaURL string) *Lookup {
	return &Lookup{client: c, endpoint: endpoint, mediaURL: mediaURL}
}

// Lookup is the lazily fetched oEmbed document of one media URL.
type Lookup struct {
	client   *Client
	endpoint string
	mediaURL string

	once sync.Once
	data map[string]any
	err  error
}

// URL returns the request URL: the endpoint with the media URL as its
// url query parameter.
func (l *Lookup) URL() string {
	sep := "?"
	if strings.Contains(l.endpoint, "?") {
		sep = "&"
	}
	return l.endpoint + sep + "url=" + url.QueryEscape(l.mediaURL)
}

// MediaURL returns the canonical media URL the lookup describes.
func (l *Lookup) MediaURL() string { return l.mediaURL }

func (l *Lookup) fetch(ctx context.Context) {
	l.once.Do(func() {
		start := time.Now()
		body, err := httputil.GetJSON(ctx, l.client.http, l.URL())
		metrics.OEmbedFetchDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			l.err = fmt.Errorf("fetching oembed data: %w", err)
			metrics.OEmbedFetchesTotal.WithLabelValues("error").Inc()
			return
		}

		var data map[string]any
		if err := json.Unmarshal(body, &data); err != nil {
			l.err = fmt.Errorf("decoding oembed data: %w", err)
			metrics.OEmbedFetchesTotal.WithLabelValues("error").Inc()
			return
		}
		l.data = data
		metrics.OEmbedFetchesTotal.WithLabelValues("success").Inc()
	})
}

// Err returns the fetch or decode failure, if any. It is nil before the
// first field access.
func (l *Lookup) Err() error {
	return l.err
}

// Field returns a top-level field of the document as a string. Numbers and
// booleans are formatted; objects, arrays and nulls count as missing.
func (l *Lookup) Field(ctx context.Context, name string) (string, bool) {
	l.fetch(ctx)
	if l.data == nil {
		return "", false
	}

	switch v := l.data[name].(type) {
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return "", false
	}
}

// Value is Field with the absence reported as an error wrapping
// media.ErrMissingField (and the fetch failure, when there was one).
func (l *Lookup) Value(ctx context.Context, name string) (string, error) {
	if v, ok := l.Field(ctx, name); ok {
		return v, nil
	}
	if l.err != nil {
		return "", fmt.Errorf("%w %q: %w", media.ErrMissingField, name, l.err)
	}
	return "", fmt.Errorf("%w %q", media.ErrMissingField, name)
}

// EmbedSrc extracts the player URL from the iframe in the html field.
func (l *Lookup) EmbedSrc(ctx context.Context) (string, error) {
	markup, err := l.Value(ctx, "html")
	if err != nil {
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", fmt.Errorf("parsing oembed html: %w", err)
	}

	src, ok := doc.Find("iframe").First().Attr("src")
	if !ok || src == "" {
		return "", fmt.Errorf("%w %q: no iframe src in html", media.ErrMissingField, "html")
	}
	return src, nil
}
