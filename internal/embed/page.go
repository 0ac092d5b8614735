package embed

import (
	"fmt"
	"html"

	"github.com/PuerkitoBio/goquery"
)

// Page collects the provider scripts required by the players rendered into
// one page. Each script is recorded once, however many players need it.
// A Page belongs to a single render pass and is not safe for concurrent use.
type Page struct {
	pending []string
	seen    map[string]bool
}

// NewPage returns an empty page.
func NewPage() *Page {
	return &Page{seen: make(map[string]bool)}
}

// Require records a script URL. It reports whether the script was new to
// the page. Empty URLs are ignored.
func (p *Page) Require(script string) bool {
	if script == "" || p.seen[script] {
		return false
	}
	p.seen[script] = true
	p.pending = append(p.pending, script)
	return true
}

// Pending returns the scripts not drained yet, in the order required.
func (p *Page) Pending() []string {
	return append([]string(nil), p.pending...)
}

// Drain returns the pending scripts and clears the list. Drained scripts
// stay recorded, so requiring them again is a no-op.
func (p *Page) Drain() []string {
	out := p.pending
	p.pending = nil
	return out
}

// ScriptTag returns the markup loading one script.
func ScriptTag(src string) string {
	return fmt.Sprintf(`<script src="%s"></script>`, html.EscapeString(src))
}

// Inject drains the page and appends a script tag per pending script to
// the document body. It returns the number of scripts injected.
func (p *Page) Inject(doc *goquery.Document) int {
	scripts := p.Drain()
	body := doc.Find("body").First()
	for _, s := range scripts {
		body.AppendHtml(ScriptTag(s))
	}
	return len(scripts)
}
