// Package content imports portfolio content from YAML or JSON seed files.
package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/jasonbahil/portfolio/internal/db"
	"github.com/jasonbahil/portfolio/internal/schemas"
	"github.com/jasonbahil/portfolio/internal/types"
)

// Document is a seed file. Every section is optional.
type Document struct {
	Projects   []types.ProjectRequest    `json:"projects"`
	Experience []types.ExperienceRequest `json:"experience"`
	Trainings  []types.TrainingRequest   `json:"trainings"`
	Tech       []types.TechRequest       `json:"tech"`
	Links      []types.LinkRequest       `json:"links"`
}

// Store is the subset of the content store the seeder writes to
type Store interface {
	ClearContent(ctx context.Context) error
	CreateProject(ctx context.Context, in db.ProjectInput) (*db.Project, error)
	CreateExperience(ctx context.Context, in db.ExperienceInput) (*db.Experience, error)
	CreateTraining(ctx context.Context, in db.TrainingInput) (*db.Training, error)
	CreateTech(ctx context.Context, in db.TechInput) (*db.Tech, error)
	CreateLink(ctx context.Context, in db.LinkInput) (*db.Link, error)
}

var _ Store = (*db.DB)(nil)

// Summary counts the imported rows per section
type Summary struct {
	Projects   int `json:"projects"`
	Experience int `json:"experience"`
	Trainings  int `json:"trainings"`
	Tech       int `json:"tech"`
	Links      int `json:"links"`
}

// Parse reads a YAML (or JSON) document, checks it against the content
// schema and decodes it. List fields are normalized on the way in.
func Parse(r io.Reader) (*Document, error) {
	var raw any
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return &Document{}, nil
		}
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	if raw == nil {
		return &Document{}, nil
	}

	// round trip through JSON so YAML scalars (dates, numbers) become the
	// JSON shapes the schema and request types expect
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to convert seed file: %w", err)
	}
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("failed to convert seed file: %w", err)
	}
	if err := schemas.ValidateContent(generic); err != nil {
		return nil, err
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode seed file: %w", err)
	}
	return &doc, nil
}

// Seeder writes documents into a Store
type Seeder struct {
	store  Store
	logger *zap.Logger
}

// NewSeeder creates a Seeder
func NewSeeder(store Store, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{store: store, logger: logger}
}

// Import validates every entry first, then writes them. With replace the
// content tables are emptied before the first write.
func (s *Seeder) Import(ctx context.Context, doc *Document, replace bool) (*Summary, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	if replace {
		if err := s.store.ClearContent(ctx); err != nil {
			return nil, err
		}
		s.logger.Info("cleared existing content")
	}

	summary := &Summary{}
	for i := range doc.Projects {
		p := &doc.Projects[i]
		if _, err := s.store.CreateProject(ctx, ProjectInput(p)); err != nil {
			return summary, fmt.Errorf("project %q: %w", p.Title, err)
		}
		summary.Projects++
	}
	for i := range doc.Experience {
		e := &doc.Experience[i]
		if _, err := s.store.CreateExperience(ctx, ExperienceInput(e)); err != nil {
			return summary, fmt.Errorf("experience %q at %q: %w", e.Role, e.Company, err)
		}
		summary.Experience++
	}
	for i := range doc.Trainings {
		t := &doc.Trainings[i]
		if _, err := s.store.CreateTraining(ctx, TrainingInput(t)); err != nil {
			return summary, fmt.Errorf("training %q: %w", t.Title, err)
		}
		summary.Trainings++
	}
	for i := range doc.Tech {
		t := &doc.Tech[i]
		if _, err := s.store.CreateTech(ctx, db.TechInput{Label: t.Label, Group: t.Group, Level: t.Level}); err != nil {
			return summary, fmt.Errorf("tech %q: %w", t.Label, err)
		}
		summary.Tech++
	}
	for i := range doc.Links {
		l := &doc.Links[i]
		if _, err := s.store.CreateLink(ctx, db.LinkInput{Label: l.Label, URL: l.URL}); err != nil {
			return summary, fmt.Errorf("link %q: %w", l.Label, err)
		}
		summary.Links++
	}

	s.logger.Info("content imported",
		zap.Bool("replace", replace),
		zap.Int("projects", summary.Projects),
		zap.Int("experience", summary.Experience),
		zap.Int("trainings", summary.Trainings),
		zap.Int("tech", summary.Tech),
		zap.Int("links", summary.Links))
	return summary, nil
}

// Validate runs the request validators over every entry
func (d *Document) Validate() error {
	for i := range d.Projects {
		if err := d.Projects[i].Validate(); err != nil {
			return fmt.Errorf("projects[%d]: %w", i, err)
		}
	}
	for i := range d.Experience {
		if err := d.Experience[i].Validate(); err != nil {
			return fmt.Errorf("experience[%d]: %w", i, err)
		}
	}
	for i := range d.Trainings {
		if err := d.Trainings[i].Validate(); err != nil {
			return fmt.Errorf("trainings[%d]: %w", i, err)
		}
	}
	for i := range d.Tech {
		if err := d.Tech[i].Validate(); err != nil {
			return fmt.Errorf("tech[%d]: %w", i, err)
		}
	}
	for i := range d.Links {
		if err := d.Links[i].Validate(); err != nil {
			return fmt.Errorf("links[%d]: %w", i, err)
		}
	}
	return nil
}

// ProjectInput converts a request into store columns, encoding list fields.
func ProjectInput(r *types.ProjectRequest) db.ProjectInput {
	return db.ProjectInput{
		Title:       r.Title,
		Slug:        r.Slug,
		Summary:     r.Summary,
		Description: r.Description,
		Tags:        r.Tags.Encoded(),
		RepoURL:     r.RepoURL,
		LiveURL:     r.LiveURL,
		CoverID:     r.CoverID,
		MediaIDs:    r.MediaIDs.Encoded(),
		ProjectType: r.ProjectType,
		SortOrder:   r.Order,
	}
}

// ExperienceInput converts a request into store columns, encoding highlights.
func ExperienceInput(r *types.ExperienceRequest) db.ExperienceInput {
	in := db.ExperienceInput{
		Role:       r.Role,
		Company:    r.Company,
		EndDate:    r.EndDate.TimePtr(),
		Summary:    r.Summary,
		Highlights: r.HighlightItems().Encoded(),
	}
	if r.StartDate != nil {
		in.StartDate = r.StartDate.Time
	}
	return in
}

// TrainingInput converts a request into store columns
func TrainingInput(r *types.TrainingRequest) db.TrainingInput {
	in := db.TrainingInput{
		Title:       r.Title,
		Institution: r.Institution,
		EndDate:     r.EndDate.TimePtr(),
		Description: r.Description,
		Certificate: r.Certificate,
		SortOrder:   r.Order,
	}
	if r.StartDate != nil {
		in.StartDate = r.StartDate.Time
	}
	return in
}

// ParseOrders converts reorder items, rejecting malformed ids
func ParseOrders(items []types.OrderItem) ([]db.OrderUpdate, error) {
	updates := make([]db.OrderUpdate, 0, len(items))
	for _, item := range items {
		id, err := uuid.Parse(item.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", item.ID, err)
		}
		updates = append(updates, db.OrderUpdate{ID: id, Order: item.Order})
	}
	return updates, nil
}
