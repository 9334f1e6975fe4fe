package server

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/jasonbahil/portfolio/internal/content"
	"github.com/jasonbahil/portfolio/internal/types"
)

// handleListExperience lists experience entries with decoded highlights
func (s *Server) handleListExperience(w http.ResponseWriter, r *http.Request) {
	experiences, err := s.store.ListExperiences(r.Context())
	if err != nil {
		s.storeError(w, err, "Experience")
		return
	}
	s.jsonResponse(w, http.StatusOK, toExperiences(experiences, false))
}

// handleAdminListExperience is the list with highlightsText for editing
func (s *Server) handleAdminListExperience(w http.ResponseWriter, r *http.Request) {
	experiences, err := s.store.ListExperiences(r.Context())
	if err != nil {
		s.storeError(w, err, "Experience")
		return
	}
	s.jsonResponse(w, http.StatusOK, toExperiences(experiences, true))
}

func (s *Server) handleGetExperience(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "experience")
	if !ok {
		return
	}

	experience, err := s.store.GetExperience(r.Context(), id)
	if err != nil {
		s.storeError(w, err, "Experience")
		return
	}
	s.jsonResponse(w, http.StatusOK, toExperience(experience, true))
}

// handleCreateExperience creates an experience entry. Highlights are
// normalized through the codec before they reach the store.
func (s *Server) handleCreateExperience(w http.ResponseWriter, r *http.Request) {
	var req types.ExperienceRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	experience, err := s.store.CreateExperience(r.Context(), content.ExperienceInput(&req))
	if err != nil {
		s.storeError(w, err, "Experience")
		return
	}
	s.logger.Info("experience created", zap.Stringer("id", experience.ID))
	s.jsonResponse(w, http.StatusCreated, toExperience(experience, true))
}

func (s *Server) handleUpdateExperience(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "experience")
	if !ok {
		return
	}
	var req types.ExperienceRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	experience, err := s.store.UpdateExperience(r.Context(), id, content.ExperienceInput(&req))
	if err != nil {
		s.storeError(w, err, "Experience")
		return
	}
	s.jsonResponse(w, http.StatusOK, toExperience(experience, true))
}

func (s *Server) handleDeleteExperience(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "experience")
	if !ok {
		return
	}

	if err := s.store.DeleteExperience(r.Context(), id); err != nil {
		s.storeError(w, err, "Experience")
		return
	}
	s.logger.Info("experience deleted", zap.Stringer("id", id))
	s.jsonResponse(w, http.StatusOK, map[string]bool{"success": true})
}
