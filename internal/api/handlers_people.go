package api

import (
	"net/http"

	"github.com/dgallion1/cardpress/internal/articles"
)

func (s *Server) handleListAuthors(w http.ResponseWriter, r *http.Request) {
	list, err := s.articles.ListAuthors(r.Context())
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	if list == nil {
		list = []articles.Author{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"authors": list})
}

func (s *Server) handleSaveAuthor(w http.ResponseWriter, r *http.Request) {
	var in articles.Author
	if !decodeBody(w, r, maxJSONBody, &in) {
		return
	}
	a, err := s.articles.SaveAuthor(r.Context(), &in)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (s *Server) handleListIcons(w http.ResponseWriter, r *http.Request) {
	list, err := s.articles.ListIcons(r.Context())
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	if list == nil {
		list = []articles.Icon{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"icons": list})
}

func (s *Server) handleSaveIcon(w http.ResponseWriter, r *http.Request) {
	var in articles.Icon
	if !decodeBody(w, r, maxJSONBody, &in) {
		return
	}
	i, err := s.articles.SaveIcon(r.Context(), &in)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, i)
}
