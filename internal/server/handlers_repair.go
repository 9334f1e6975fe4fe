package server

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/jasonbahil/portfolio/internal/db"
	"github.com/jasonbahil/portfolio/internal/highlights"
)

// repairer returns the Repairer for a collection, creating it on first use.
// Repairers are cached so the in-progress guard spans requests.
func (s *Server) repairer(collection string) (*highlights.Repairer, error) {
	s.repairMu.Lock()
	defer s.repairMu.Unlock()

	if r, ok := s.repairers[collection]; ok {
		return r, nil
	}
	store, err := s.store.EncodedListColumn(collection)
	if err != nil {
		return nil, err
	}
	r := highlights.NewRepairer(collection, store,
		highlights.WithLogger(s.logger),
		highlights.WithRecorder(s.metrics),
	)
	s.repairers[collection] = r
	return r, nil
}

// handleListRepairCollections lists the collections the repair endpoint accepts
func (s *Server) handleListRepairCollections(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{"collections": db.EncodedCollections()})
}

// handleRepair rewrites every non-canonical encoded list of one collection.
// ?dryRun=true reports without writing.
func (s *Server) handleRepair(w http.ResponseWriter, r *http.Request) {
	collection := r.PathValue("collection")
	repairer, err := s.repairer(collection)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			s.errorResponse(w, http.StatusNotFound, "Unknown collection: "+collection)
			return
		}
		s.storeError(w, err, "Collection")
		return
	}

	run := repairer.RepairAll
	if r.URL.Query().Get("dryRun") == "true" {
		run = repairer.Plan
	}

	report, err := run(r.Context())
	if err != nil {
		if errors.Is(err, highlights.ErrScanInProgress) {
			s.errorResponse(w, http.StatusConflict, "A repair of "+collection+" is already running")
			return
		}
		s.logger.Error("repair scan failed", zap.String("collection", collection), zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "Repair failed: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, report)
}
