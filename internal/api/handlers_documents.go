package api

import (
	"net/http"

	"github.com/dgallion1/cardpress/internal/doctree"
	"github.com/dgallion1/cardpress/internal/excerpt"
	"github.com/go-chi/chi/v5"
)

type documentRequest struct {
	Root *doctree.Node `json:"root"`
}

type parseRequest struct {
	HTML string `json:"html"`
}

// handleGetDocument returns the article body rebuilt as an editable tree.
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	view, err := s.articles.Document(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleSaveDocument(w http.ResponseWriter, r *http.Request) {
	var in documentRequest
	if !decodeBody(w, r, maxJSONBody, &in) {
		return
	}
	a, err := s.articles.SaveDocument(r.Context(), chi.URLParam(r, "slug"), in.Root)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleDefaultDocument(w http.ResponseWriter, r *http.Request) {
	root := s.articles.DefaultDocument()
	writeJSON(w, http.StatusOK, map[string]any{"root": root, "stats": excerpt.Measure(root)})
}

func (s *Server) handleRenderDocument(w http.ResponseWriter, r *http.Request) {
	var in documentRequest
	if !decodeBody(w, r, maxJSONBody, &in) {
		return
	}
	body, err := s.articles.RenderDocument(in.Root)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"html": body})
}

func (s *Server) handleParseDocument(w http.ResponseWriter, r *http.Request) {
	var in parseRequest
	if !decodeBody(w, r, maxJSONBody, &in) {
		return
	}
	root, err := s.articles.ParseDocument(in.HTML)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"root": root, "stats": excerpt.Measure(root)})
}
