package server

import (
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/jasonbahil/portfolio/internal/db"
	"github.com/jasonbahil/portfolio/internal/types"
)

// handlePortfolio returns every public section in one response. The
// sections are loaded concurrently; any failure fails the whole request.
func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	var (
		projects    []db.Project
		experiences []db.Experience
		trainings   []db.Training
		tech        []db.Tech
		links       []db.Link
		media       []db.Media
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		projects, err = s.store.ListProjects(ctx)
		return err
	})
	g.Go(func() (err error) {
		experiences, err = s.store.ListExperiences(ctx)
		return err
	})
	g.Go(func() (err error) {
		trainings, err = s.store.ListTrainings(ctx)
		return err
	})
	g.Go(func() (err error) {
		tech, err = s.store.ListTech(ctx)
		return err
	})
	g.Go(func() (err error) {
		links, err = s.store.ListLinks(ctx)
		return err
	})
	g.Go(func() (err error) {
		media, err = s.store.ListMedia(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		s.storeError(w, err, "Portfolio")
		return
	}

	s.jsonResponse(w, http.StatusOK, types.Portfolio{
		Projects:   toProjects(projects),
		Experience: toExperiences(experiences, false),
		Trainings:  toTrainings(trainings),
		Tech:       groupTech(tech),
		Links:      toLinks(links),
		Media:      toMediaList(media),
	})
}
