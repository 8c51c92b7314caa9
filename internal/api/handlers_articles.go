package api

import (
	"net/http"

	"github.com/dgallion1/cardpress/internal/articles"
	"github.com/go-chi/chi/v5"
)

const maxJSONBody = 4 << 20

func (s *Server) handleListArticles(w http.ResponseWriter, r *http.Request) {
	list, err := s.articles.List(r.Context())
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	if list == nil {
		list = []articles.Article{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"articles": list})
}

func (s *Server) handleCreateArticle(w http.ResponseWriter, r *http.Request) {
	var in articles.Article
	if !decodeBody(w, r, maxJSONBody, &in) {
		return
	}
	a, err := s.articles.Create(r.Context(), &in)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) handleGetArticle(w http.ResponseWriter, r *http.Request) {
	a, err := s.articles.Get(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleUpdateArticle(w http.ResponseWriter, r *http.Request) {
	var in articles.Article
	if !decodeBody(w, r, maxJSONBody, &in) {
		return
	}
	a, err := s.articles.Update(r.Context(), chi.URLParam(r, "slug"), &in)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleDeleteArticle(w http.ResponseWriter, r *http.Request) {
	if err := s.articles.Delete(r.Context(), chi.URLParam(r, "slug")); err != nil {
		s.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
