package embed

import (
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"embedder/internal/media"
	"embedder/internal/provider"
)

func parse(t *testing.T, markup string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		t.Fatalf("parsing markup: %v", err)
	}
	return doc
}

func TestSourceURL(t *testing.T) {
	youtube := provider.JoinTokens{"/", "?", "&"}
	soundcloud := provider.JoinTokens{"?url=https://api.soundcloud.com/tracks/", "&", "&"}

	tests := []struct {
		name   string
		src    string
		join   provider.JoinTokens
		id     string
		params []string
		want   string
	}{
		{
			name: "no params",
			src:  "https://www.youtube-nocookie.com/embed",
			join: youtube,
			id:   "dQw4w9WgXcQ",
			want: "https://www.youtube-nocookie.com/embed/dQw4w9WgXcQ",
		},
		{
			name:   "params after question mark",
			src:    "https://www.youtube-nocookie.com/embed",
			join:   youtube,
			id:     "dQw4w9WgXcQ",
			params: []string{"autoplay=1", "color=white"},
			want:   "https://www.youtube-nocookie.com/embed/dQw4w9WgXcQ?autoplay=1&color=white",
		},
		{
			name:   "id already carries a query",
			src:    "https://www.youtube-nocookie.com/embed",
			join:   youtube,
			id:     "dQw4w9WgXcQ?list=PL590L5WQmH8",
			params: []string{"autoplay=1"},
			want:   "https://www.youtube-nocookie.com/embed/dQw4w9WgXcQ?list=PL590L5WQmH8&autoplay=1",
		},
		{
			name:   "reset join",
			src:    "https://w.soundcloud.com/player/",
			join:   soundcloud,
			id:     "1234",
			params: []string{"visual=true"},
			want:   "https://w.soundcloud.com/player/?url=https://api.soundcloud.com/tracks/1234&visual=true",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SourceURL(tt.src, tt.join, tt.id, tt.params); got != tt.want {
				t.Errorf("SourceURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMarkupFixed(t *testing.T) {
	markup, err := Markup("https://example.com/embed/1?a=1&b=2",
		media.Layout{Width: "640", Height: "360", HasHeight: true}, false, Options{})
	if err != nil {
		t.Fatalf("Markup() error: %v", err)
	}

	if !strings.HasPrefix(markup, "<iframe ") {
		t.Errorf("unwrapped player expected, got %q", markup)
	}
	if !strings.Contains(markup, `src="https://example.com/embed/1?a=1&amp;b=2"`) {
		t.Errorf("src not escaped: %q", markup)
	}

	iframe := parse(t, markup).Find("iframe")
	if w, _ := iframe.Attr("width"); w != "640" {
		t.Errorf("width = %q, want 640", w)
	}
	if h, _ := iframe.Attr("height"); h != "360" {
		t.Errorf("height = %q, want 360", h)
	}
	if s, _ := iframe.Attr("style"); s != "border: none" {
		t.Errorf("style = %q, want border: none", s)
	}
	if _, ok := iframe.Attr("allowfullscreen"); !ok {
		t.Error("allowfullscreen missing")
	}
	if src, _ := iframe.Attr("src"); src != "https://example.com/embed/1?a=1&b=2" {
		t.Errorf("src = %q", src)
	}
}

func TestMarkupUnitsAsStyle(t *testing.T) {
	markup, err := Markup("https://example.com/embed/1",
		media.Layout{Width: "50%", Height: "20em", HasHeight: true}, false, Options{Title: `A "quoted" title`})
	if err != nil {
		t.Fatal(err)
	}

	iframe := parse(t, markup).Find("iframe")
	if _, ok := iframe.Attr("width"); ok {
		t.Error("width attribute should not be set for a unit size")
	}
	if s, _ := iframe.Attr("style"); s != "border: none; width: 50%; height: 20em" {
		t.Errorf("style = %q", s)
	}
	if title, _ := iframe.Attr("title"); title != `A "quoted" title` {
		t.Errorf("title = %q", title)
	}
}

func TestMarkupOmitsZeroSizes(t *testing.T) {
	markup, err := Markup("https://example.com/embed/1",
		media.Layout{Width: "300", Height: "0", HasHeight: true}, false, Options{})
	if err != nil {
		t.Fatal(err)
	}
	iframe := parse(t, markup).Find("iframe")
	if _, ok := iframe.Attr("height"); ok {
		t.Error("zero height should be omitted")
	}
	if w, _ := iframe.Attr("width"); w != "300" {
		t.Errorf("width = %q", w)
	}
}

func TestMarkupOmitsZeroSizesWithUnit(t *testing.T) {
	markup, err := Markup("https://example.com/embed/1",
		media.Layout{Width: "100%", Height: "0px", HasHeight: true}, true, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if s, _ := parse(t, markup).Find("iframe").Attr("style"); s != "border: none; width: 100%" {
		t.Errorf("style = %q", s)
	}
}

func TestMarkupDecimalSizes(t *testing.T) {
	markup, err := Markup("https://example.com/embed/1",
		media.Layout{Width: "33.3%", Height: "240.5", HasHeight: true}, false, Options{})
	if err != nil {
		t.Fatal(err)
	}
	iframe := parse(t, markup).Find("iframe")
	if s, _ := iframe.Attr("style"); s != "border: none; width: 33.3%" {
		t.Errorf("style = %q", s)
	}
	if h, _ := iframe.Attr("height"); h != "240.5" {
		t.Errorf("height = %q", h)
	}
}

func TestMarkupResponsive(t *testing.T) {
	markup, err := Markup("https://example.com/embed/1",
		media.Layout{Width: "100%", Height: "56.25%", HasHeight: true, Padding: "56.25%"}, true,
		Options{Class: "video player"})
	if err != nil {
		t.Fatalf("Markup() error: %v", err)
	}

	doc := parse(t, markup)
	wrap := doc.Find("div.video.player")
	if wrap.Length() != 1 {
		t.Fatalf("expected a div wrapper with both classes, got %q", markup)
	}
	if s, _ := wrap.Attr("style"); s != "position: relative; padding-bottom: 56.25%; height: 0; overflow: hidden" {
		t.Errorf("wrapper style = %q", s)
	}

	iframe := wrap.Find("iframe")
	if s, _ := iframe.Attr("style"); s != "border: none; position: absolute; top: 0; left: 0; width: 100%; height: 100%" {
		t.Errorf("iframe style = %q", s)
	}
	if _, ok := iframe.Attr("width"); ok {
		t.Error("responsive iframe should not carry a width attribute")
	}
}

func TestMarkupWrapTag(t *testing.T) {
	markup, err := Markup("https://example.com/embed/1",
		media.Layout{Width: "640", Height: "360", HasHeight: true}, false,
		Options{WrapTag: "figure", Class: "clip"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(markup, `<figure class="clip">`) || !strings.HasSuffix(markup, "</figure>") {
		t.Errorf("markup = %q", markup)
	}
}

func TestMarkupRejectsUnsafeWrapper(t *testing.T) {
	l := media.Layout{Width: "640"}

	if _, err := Markup("https://example.com/1", l, false, Options{WrapTag: "div onload=x"}); err == nil {
		t.Error("expected invalid tag error")
	}
	if _, err := Markup("https://example.com/1", l, false, Options{WrapTag: "div", Class: `a"b`}); err == nil {
		t.Error("expected invalid class error")
	}
	if _, err := Markup("", l, false, Options{}); !errors.Is(err, media.ErrNothingToPlay) {
		t.Errorf("empty src error = %v, want ErrNothingToPlay", err)
	}
}

func TestPage(t *testing.T) {
	p := NewPage()

	if !p.Require("https://example.com/embed.js") {
		t.Error("first Require should report a new script")
	}
	if p.Require("https://example.com/embed.js") {
		t.Error("second Require should be a no-op")
	}
	p.Require("")
	p.Require("https://cdn.example.org/widget.js")

	if got := p.Pending(); len(got) != 2 {
		t.Fatalf("Pending() = %v", got)
	}

	drained := p.Drain()
	if len(drained) != 2 || drained[0] != "https://example.com/embed.js" {
		t.Errorf("Drain() = %v", drained)
	}
	if len(p.Drain()) != 0 {
		t.Error("second Drain should be empty")
	}
	if p.Require("https://example.com/embed.js") {
		t.Error("drained script should stay recorded")
	}
}

func TestPageInject(t *testing.T) {
	doc := parse(t, `<html><head></head><body><p>hello</p></body></html>`)
	p := NewPage()
	p.Require("https://example.com/embed.js")

	if n := p.Inject(doc); n != 1 {
		t.Errorf("Inject() = %d, want 1", n)
	}
	scripts := doc.Find("body script")
	if scripts.Length() != 1 {
		t.Fatalf("found %d scripts in body", scripts.Length())
	}
	if src, _ := scripts.Attr("src"); src != "https://example.com/embed.js" {
		t.Errorf("script src = %q", src)
	}
	if !doc.Find("body").Children().First().Is("p") {
		t.Error("script should be appended after existing content")
	}

	if n := p.Inject(doc); n != 0 {
		t.Errorf("second Inject() = %d, want 0", n)
	}
}
