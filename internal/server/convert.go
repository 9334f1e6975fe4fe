package server

import (
	"strings"

	"github.com/jasonbahil/portfolio/internal/db"
	"github.com/jasonbahil/portfolio/internal/highlights"
	"github.com/jasonbahil/portfolio/internal/types"
)

// Stored rows are turned into API shapes here. Encoded list columns go
// through the tolerant decoder, so a damaged row still renders.

func toProject(p *db.Project) types.Project {
	return types.Project{
		ID:          p.ID,
		Title:       p.Title,
		Slug:        p.Slug,
		Summary:     p.Summary,
		Description: p.Description,
		Tags:        highlights.Decode(p.Tags),
		RepoURL:     p.RepoURL,
		LiveURL:     p.LiveURL,
		CoverID:     p.CoverID,
		MediaIDs:    highlights.Decode(p.MediaIDs),
		ProjectType: p.ProjectType,
		Order:       p.SortOrder,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toProjects(rows []db.Project) []types.Project {
	out := make([]types.Project, 0, len(rows))
	for i := range rows {
		out = append(out, toProject(&rows[i]))
	}
	return out
}

// toExperience decodes highlights; admin reads also get the newline joined
// text used by the edit form.
func toExperience(e *db.Experience, admin bool) types.Experience {
	items := highlights.Decode(e.Highlights)
	out := types.Experience{
		ID:         e.ID,
		Role:       e.Role,
		Company:    e.Company,
		StartDate:  types.NewDate(e.StartDate),
		EndDate:    types.DatePtr(e.EndDate),
		Summary:    e.Summary,
		Highlights: items,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
	if admin {
		out.HighlightsText = strings.Join(items, "\n")
	}
	return out
}

func toExperiences(rows []db.Experience, admin bool) []types.Experience {
	out := make([]types.Experience, 0, len(rows))
	for i := range rows {
		out = append(out, toExperience(&rows[i], admin))
	}
	return out
}

func toTraining(t *db.Training) types.Training {
	return types.Training{
		ID:          t.ID,
		Title:       t.Title,
		Institution: t.Institution,
		StartDate:   types.NewDate(t.StartDate),
		EndDate:     types.DatePtr(t.EndDate),
		Description: t.Description,
		Certificate: t.Certificate,
		Order:       t.SortOrder,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func toTrainings(rows []db.Training) []types.Training {
	out := make([]types.Training, 0, len(rows))
	for i := range rows {
		out = append(out, toTraining(&rows[i]))
	}
	return out
}

func toTech(t *db.Tech) types.Tech {
	return types.Tech{ID: t.ID, Label: t.Label, Group: t.Group, Level: t.Level}
}

func toTechList(rows []db.Tech) []types.Tech {
	out := make([]types.Tech, 0, len(rows))
	for i := range rows {
		out = append(out, toTech(&rows[i]))
	}
	return out
}

// groupTech groups entries by their group, keeping store order within each
func groupTech(rows []db.Tech) map[string][]types.Tech {
	groups := make(map[string][]types.Tech)
	for i := range rows {
		groups[rows[i].Group] = append(groups[rows[i].Group], toTech(&rows[i]))
	}
	return groups
}

func toMedia(m *db.Media) types.Media {
	return types.Media{
		ID:        m.ID,
		Title:     m.Title,
		PublicID:  m.PublicID,
		Type:      m.MediaType,
		CreatedAt: m.CreatedAt,
	}
}

func toMediaList(rows []db.Media) []types.Media {
	out := make([]types.Media, 0, len(rows))
	for i := range rows {
		out = append(out, toMedia(&rows[i]))
	}
	return out
}

func toLink(l *db.Link) types.Link {
	return types.Link{ID: l.ID, Label: l.Label, URL: l.URL}
}

func toLinks(rows []db.Link) []types.Link {
	out := make([]types.Link, 0, len(rows))
	for i := range rows {
		out = append(out, toLink(&rows[i]))
	}
	return out
}
