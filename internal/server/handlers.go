package server

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"embedder/internal/embed"
	"embedder/internal/httputil"
	"embedder/internal/media"
	"embedder/internal/provider"
	"embedder/internal/render"
)

// Query keys of /api/embed that are not attribute overrides.
var reservedKeys = map[string]bool{
	"provider": true,
	"play":     true,
	"wraptag":  true,
	"class":    true,
	"format":   true,
}

type resolvedRef struct {
	Ref  string `json:"ref"`
	ID   string `json:"id"`
	Type string `json:"type"`
}

type resolveResponse struct {
	Provider string        `json:"provider"`
	Valid    bool          `json:"valid"`
	Refs     []string      `json:"refs"`
	Resolved []resolvedRef `json:"resolved"`
}

type embedResponse struct {
	*render.Result
	Scripts []string `json:"scripts,omitempty"`
}

func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	infos := make([]provider.Info, 0)
	for _, p := range s.registry.All() {
		infos = append(infos, p.Info())
	}
	httputil.WriteJSON(w, http.StatusOK, infos)
}

func (s *Server) handleProvider(w http.ResponseWriter, r *http.Request) {
	p, err := s.registry.Get(chi.URLParam(r, "name"))
	if err != nil {
		writeRenderError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p.Info())
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	play := q.Get("play")
	if play == "" {
		httputil.WriteError(w, http.StatusBadRequest, "play is required")
		return
	}

	p, res, err := s.renderer.Pick(q.Get("provider"), play)
	if err != nil {
		writeRenderError(w, err)
		return
	}

	resp := resolveResponse{
		Provider: p.Name(),
		Valid:    res.Valid(),
		Refs:     res.Refs(),
		Resolved: make([]resolvedRef, 0),
	}
	for _, e := range res.Entries() {
		resp.Resolved = append(resp.Resolved, resolvedRef{Ref: e.Ref, ID: e.Descriptor.ID, Type: e.Descriptor.Type})
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEmbed(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := render.Request{
		Provider: q.Get("provider"),
		Play:     q.Get("play"),
		WrapTag:  q.Get("wraptag"),
		Class:    q.Get("class"),
		Attrs:    make(map[string]string),
	}
	for key := range q {
		if !reservedKeys[key] {
			req.Attrs[strings.ReplaceAll(key, "-", "_")] = q.Get(key)
		}
	}
	if req.Play == "" {
		writeRenderError(w, media.ErrNothingToPlay)
		return
	}

	page := embed.NewPage()
	res, err := s.renderer.Render(r.Context(), page, req)
	if err != nil {
		writeRenderError(w, err)
		return
	}
	scripts := page.Drain()
	w.Header().Set("X-Embedder-Provider", res.Provider)
	w.Header().Set("X-Embedder-Warnings", strconv.Itoa(len(res.Warnings)))

	if q.Get("format") == "html" {
		var b bytes.Buffer
		b.WriteString(res.Markup)
		for _, src := range scripts {
			b.WriteString(embed.ScriptTag(src))
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(b.Bytes())
		return
	}

	httputil.WriteJSON(w, http.StatusOK, embedResponse{Result: res, Scripts: scripts})
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxPageBytes)

	var out bytes.Buffer
	report, err := s.renderer.RenderHTML(r.Context(), r.Body, &out)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Embedder-Players", strconv.Itoa(len(report.Players)))
	w.Header().Set("X-Embedder-Failed", strconv.Itoa(len(report.Failed)))
	w.Header().Set("X-Embedder-Warnings", strconv.Itoa(report.Warnings))
	_, _ = w.Write(out.Bytes())
}
