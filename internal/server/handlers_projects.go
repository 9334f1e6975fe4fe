package server

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/jasonbahil/portfolio/internal/content"
	"github.com/jasonbahil/portfolio/internal/types"
)

// handleListProjects lists projects in display order
func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.store.ListProjects(r.Context())
	if err != nil {
		s.storeError(w, err, "Projects")
		return
	}
	s.jsonResponse(w, http.StatusOK, toProjects(projects))
}

// handleGetProject retrieves a project by ID
func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "project")
	if !ok {
		return
	}

	project, err := s.store.GetProject(r.Context(), id)
	if err != nil {
		s.storeError(w, err, "Project")
		return
	}
	s.jsonResponse(w, http.StatusOK, toProject(project))
}

// handleCreateProject creates a project
func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req types.ProjectRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	project, err := s.store.CreateProject(r.Context(), content.ProjectInput(&req))
	if err != nil {
		s.storeError(w, err, "Project")
		return
	}
	s.logger.Info("project created", zap.Stringer("id", project.ID), zap.String("slug", project.Slug))
	s.jsonResponse(w, http.StatusCreated, toProject(project))
}

// handleUpdateProject replaces a project
func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "project")
	if !ok {
		return
	}
	var req types.ProjectRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	project, err := s.store.UpdateProject(r.Context(), id, content.ProjectInput(&req))
	if err != nil {
		s.storeError(w, err, "Project")
		return
	}
	s.jsonResponse(w, http.StatusOK, toProject(project))
}

// handleDeleteProject deletes a project
func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "project")
	if !ok {
		return
	}

	if err := s.store.DeleteProject(r.Context(), id); err != nil {
		s.storeError(w, err, "Project")
		return
	}
	s.logger.Info("project deleted", zap.Stringer("id", id))
	s.jsonResponse(w, http.StatusOK, map[string]bool{"success": true})
}

// handleReorderProjects applies a new display order in one transaction
func (s *Server) handleReorderProjects(w http.ResponseWriter, r *http.Request) {
	var req types.ProjectOrderRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}
	updates, err := content.ParseOrders(req.ProjectOrders)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.ReorderProjects(r.Context(), updates); err != nil {
		s.storeError(w, err, "Project")
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"success": true, "updated": len(updates)})
}
