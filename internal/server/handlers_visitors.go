package server

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/jasonbahil/portfolio/internal/db"
	"github.com/jasonbahil/portfolio/internal/types"
)

// handleRecordVisit stores a page view. Fields the client omits are taken
// from the request itself.
func (s *Server) handleRecordVisit(w http.ResponseWriter, r *http.Request) {
	var req types.VisitRequest
	if r.ContentLength != 0 {
		if !s.decodeRequest(w, r, &req) {
			return
		}
	}

	visit := db.Visit{
		IPAddress: req.IPAddress,
		UserAgent: req.UserAgent,
		Referer:   req.Referer,
	}
	if visit.IPAddress == "" {
		visit.IPAddress = s.extractClientID(r)
	}
	if visit.UserAgent == "" {
		visit.UserAgent = r.UserAgent()
	}
	if visit.Referer == "" {
		visit.Referer = r.Referer()
	}

	if err := s.store.RecordVisit(r.Context(), visit); err != nil {
		s.logger.Warn("failed to record visit", zap.Error(err))
		s.errorResponse(w, http.StatusInternalServerError, "Failed to record visit")
		return
	}
	s.metrics.VisitRecorded()
	s.jsonResponse(w, http.StatusOK, map[string]bool{"success": true})
}

// handleVisitorStats summarizes recorded visits
func (s *Server) handleVisitorStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.VisitorStats(r.Context())
	if err != nil {
		s.storeError(w, err, "Visitor stats")
		return
	}
	s.jsonResponse(w, http.StatusOK, stats)
}
