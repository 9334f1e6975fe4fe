package server

import (
	"net/http"

	"github.com/jasonbahil/portfolio/internal/content"
	"github.com/jasonbahil/portfolio/internal/types"
)

func (s *Server) handleListTrainings(w http.ResponseWriter, r *http.Request) {
	trainings, err := s.store.ListTrainings(r.Context())
	if err != nil {
		s.storeError(w, err, "Trainings")
		return
	}
	s.jsonResponse(w, http.StatusOK, toTrainings(trainings))
}

func (s *Server) handleGetTraining(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "training")
	if !ok {
		return
	}

	training, err := s.store.GetTraining(r.Context(), id)
	if err != nil {
		s.storeError(w, err, "Training")
		return
	}
	s.jsonResponse(w, http.StatusOK, toTraining(training))
}

func (s *Server) handleCreateTraining(w http.ResponseWriter, r *http.Request) {
	var req types.TrainingRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	training, err := s.store.CreateTraining(r.Context(), content.TrainingInput(&req))
	if err != nil {
		s.storeError(w, err, "Training")
		return
	}
	s.jsonResponse(w, http.StatusCreated, toTraining(training))
}

func (s *Server) handleUpdateTraining(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "training")
	if !ok {
		return
	}
	var req types.TrainingRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	training, err := s.store.UpdateTraining(r.Context(), id, content.TrainingInput(&req))
	if err != nil {
		s.storeError(w, err, "Training")
		return
	}
	s.jsonResponse(w, http.StatusOK, toTraining(training))
}

func (s *Server) handleDeleteTraining(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "training")
	if !ok {
		return
	}

	if err := s.store.DeleteTraining(r.Context(), id); err != nil {
		s.storeError(w, err, "Training")
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]bool{"success": true})
}

// handleReorderTrainings applies a new display order in one transaction
func (s *Server) handleReorderTrainings(w http.ResponseWriter, r *http.Request) {
	var req types.TrainingOrderRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}
	updates, err := content.ParseOrders(req.TrainingOrders)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.ReorderTrainings(r.Context(), updates); err != nil {
		s.storeError(w, err, "Training")
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"success": true, "updated": len(updates)})
}
