package server

import (
	"net/http"

	"github.com/jasonbahil/portfolio/internal/db"
	"github.com/jasonbahil/portfolio/internal/types"
)

// Tech, media and links are flat lists without ordering or encoded columns.

func (s *Server) handleListTech(w http.ResponseWriter, r *http.Request) {
	tech, err := s.store.ListTech(r.Context())
	if err != nil {
		s.storeError(w, err, "Tech")
		return
	}
	s.jsonResponse(w, http.StatusOK, toTechList(tech))
}

func (s *Server) handleCreateTech(w http.ResponseWriter, r *http.Request) {
	var req types.TechRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	tech, err := s.store.CreateTech(r.Context(), db.TechInput{Label: req.Label, Group: req.Group, Level: req.Level})
	if err != nil {
		s.storeError(w, err, "Tech")
		return
	}
	s.jsonResponse(w, http.StatusCreated, toTech(tech))
}

func (s *Server) handleUpdateTech(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "tech")
	if !ok {
		return
	}
	var req types.TechRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	tech, err := s.store.UpdateTech(r.Context(), id, db.TechInput{Label: req.Label, Group: req.Group, Level: req.Level})
	if err != nil {
		s.storeError(w, err, "Tech")
		return
	}
	s.jsonResponse(w, http.StatusOK, toTech(tech))
}

func (s *Server) handleDeleteTech(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "tech")
	if !ok {
		return
	}
	if err := s.store.DeleteTech(r.Context(), id); err != nil {
		s.storeError(w, err, "Tech")
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleListMedia(w http.ResponseWriter, r *http.Request) {
	media, err := s.store.ListMedia(r.Context())
	if err != nil {
		s.storeError(w, err, "Media")
		return
	}
	s.jsonResponse(w, http.StatusOK, toMediaList(media))
}

func (s *Server) handleCreateMedia(w http.ResponseWriter, r *http.Request) {
	var req types.MediaRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	media, err := s.store.CreateMedia(r.Context(), db.MediaInput{Title: req.Title, PublicID: req.PublicID, MediaType: req.Type})
	if err != nil {
		s.storeError(w, err, "Media")
		return
	}
	s.jsonResponse(w, http.StatusCreated, toMedia(media))
}

func (s *Server) handleUpdateMedia(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "media")
	if !ok {
		return
	}
	var req types.MediaRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	media, err := s.store.UpdateMedia(r.Context(), id, db.MediaInput{Title: req.Title, PublicID: req.PublicID, MediaType: req.Type})
	if err != nil {
		s.storeError(w, err, "Media")
		return
	}
	s.jsonResponse(w, http.StatusOK, toMedia(media))
}

func (s *Server) handleDeleteMedia(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "media")
	if !ok {
		return
	}
	if err := s.store.DeleteMedia(r.Context(), id); err != nil {
		s.storeError(w, err, "Media")
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleListLinks(w http.ResponseWriter, r *http.Request) {
	links, err := s.store.ListLinks(r.Context())
	if err != nil {
		s.storeError(w, err, "Links")
		return
	}
	s.jsonResponse(w, http.StatusOK, toLinks(links))
}

func (s *Server) handleCreateLink(w http.ResponseWriter, r *http.Request) {
	var req types.LinkRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	link, err := s.store.CreateLink(r.Context(), db.LinkInput{Label: req.Label, URL: req.URL})
	if err != nil {
		s.storeError(w, err, "Link")
		return
	}
	s.jsonResponse(w, http.StatusCreated, toLink(link))
}

func (s *Server) handleUpdateLink(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "link")
	if !ok {
		return
	}
	var req types.LinkRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	link, err := s.store.UpdateLink(r.Context(), id, db.LinkInput{Label: req.Label, URL: req.URL})
	if err != nil {
		s.storeError(w, err, "Link")
		return
	}
	s.jsonResponse(w, http.StatusOK, toLink(link))
}

func (s *Server) handleDeleteLink(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "link")
	if !ok {
		return
	}
	if err := s.store.DeleteLink(r.Context(), id); err != nil {
		s.storeError(w, err, "Link")
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]bool{"success": true})
}
