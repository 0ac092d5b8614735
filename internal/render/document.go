package render

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"embedder/internal/embed"
)

// Placeholder attributes. An element carrying PlayAttr is replaced by the
// player it describes; any other data-* attribute is passed as an
// attribute override, prefix removed and dashes read as underscores.
const (
	PlayAttr     = "data-embed"
	ProviderAttr = "data-provider"
	WrapTagAttr  = "data-wraptag"
	ClassAttr    = "data-class"
)

// DocumentReport summarises a document render.
type DocumentReport struct {
	Players  []*Result `json:"players"`
	Failed   []string  `json:"failed,omitempty"` // Placeholder references that rendered nothing
	Scripts  int       `json:"scripts"`          // Script tags injected into the body
	Warnings int       `json:"warnings"`
}

// Document replaces every placeholder of doc with its player and injects
// the scripts the players need at the end of the body. A placeholder that
// cannot be rendered is removed and listed in the report.
func (r *Renderer) Document(ctx context.Context, doc *goquery.Document) *DocumentReport {
	page := embed.NewPage()
	report := &DocumentReport{}

	doc.Find("[" + PlayAttr + "]").Each(func(_ int, s *goquery.Selection) {
		req := placeholderRequest(s)

		res, err := r.Render(ctx, page, req)
		if err != nil {
			r.logger.Warn("placeholder not rendered", "play", req.Play, "error", err)
			report.Failed = append(report.Failed, req.Play)
			s.Remove()
			return
		}

		report.Players = append(report.Players, res)
		report.Warnings += len(res.Warnings)
		s.ReplaceWithHtml(res.Markup)
	})

	report.Scripts = page.Inject(doc)
	return report
}

// RenderHTML reads an HTML document, renders its placeholders and writes
// the result to w.
func (r *Renderer) RenderHTML(ctx context.Context, in io.Reader, w io.Writer) (*DocumentReport, error) {
	doc, err := goquery.NewDocumentFromReader(in)
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}

	report := r.Document(ctx, doc)

	out, err := doc.Html()
	if err != nil {
		return nil, fmt.Errorf("serialising document: %w", err)
	}
	if _, err := io.WriteString(w, out); err != nil {
		return nil, fmt.Errorf("writing document: %w", err)
	}
	return report, nil
}

func placeholderRequest(s *goquery.Selection) Request {
	req := Request{Attrs: make(map[string]string)}
	if len(s.Nodes) == 0 {
		return req
	}

	for _, a := range s.Nodes[0].Attr {
		switch a.Key {
		case PlayAttr:
			req.Play = a.Val
		case ProviderAttr:
			req.Provider = a.Val
		case WrapTagAttr:
			req.WrapTag = a.Val
		case ClassAttr:
			req.Class = a.Val
		default:
			if name, ok := strings.CutPrefix(a.Key, "data-"); ok {
				req.Attrs[strings.ReplaceAll(name, "-", "_")] = a.Val
			}
		}
	}
	return req
}
