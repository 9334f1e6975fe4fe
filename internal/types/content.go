package types

import (
	"time"

	"github.com/google/uuid"

	"github.com/jasonbahil/portfolio/internal/highlights"
)

// ProjectRequest creates or replaces a project
type ProjectRequest struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Slug        string    `json:"slug" validate:"omitempty,max=200,slug"`
	Summary     string    `json:"summary" validate:"max=1000"`
	Description string    `json:"description"`
	Tags        ListInput `json:"tags"`
	RepoURL     string    `json:"repoUrl" validate:"omitempty,url"`
	LiveURL     string    `json:"liveUrl" validate:"omitempty,url"`
	CoverID     string    `json:"coverId"`
	MediaIDs    ListInput `json:"mediaIds"`
	ProjectType string    `json:"projectType" validate:"omitempty,oneof=developed managed"`
	Order       *int      `json:"order" validate:"omitempty,min=0"`
}

// ExperienceRequest creates or replaces an experience entry. Highlights
// may also be sent as highlightsText, the newline separated admin form
// field; a non-empty highlights wins.
type ExperienceRequest struct {
	Role           string    `json:"role" validate:"required,max=200"`
	Company        string    `json:"company" validate:"required,max=200"`
	StartDate      *Date     `json:"startDate" validate:"required"`
	EndDate        *Date     `json:"endDate"`
	Summary        string    `json:"summary"`
	Highlights     ListInput `json:"highlights"`
	HighlightsText *string   `json:"highlightsText"`
}

// TrainingRequest creates or replaces a training entry
type TrainingRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Institution string `json:"institution" validate:"required,max=200"`
	StartDate   *Date  `json:"startDate" validate:"required"`
	EndDate     *Date  `json:"endDate"`
	Description string `json:"description"`
	Certificate string `json:"certificate"`
	Order       *int   `json:"order" validate:"omitempty,min=0"`
}

// TechRequest creates or replaces a tech stack entry
type TechRequest struct {
	Label string `json:"label" validate:"required,max=100"`
	Group string `json:"group" validate:"required,max=100"`
	Level string `json:"level" validate:"max=50"`
}

// MediaRequest creates or replaces a media reference
type MediaRequest struct {
	Title    string `json:"title" validate:"required,max=200"`
	PublicID string `json:"publicId" validate:"required"`
	Type     string `json:"type" validate:"omitempty,oneof=image video"`
}

// LinkRequest creates or replaces a link
type LinkRequest struct {
	Label string `json:"label" validate:"required,max=100"`
	URL   string `json:"url" validate:"required,url"`
}

// OrderItem moves one row to a display position
type OrderItem struct {
	ID    string `json:"id" validate:"required,uuid"`
	Order int    `json:"order" validate:"min=0"`
}

// ProjectOrderRequest is the body of PATCH /api/admin/projects
type ProjectOrderRequest struct {
	ProjectOrders []OrderItem `json:"projectOrders" validate:"required,min=1,dive"`
}

// TrainingOrderRequest is the body of PATCH /api/admin/trainings
type TrainingOrderRequest struct {
	TrainingOrders []OrderItem `json:"trainingOrders" validate:"required,min=1,dive"`
}

// VisitRequest is the body of the visitor beacon
type VisitRequest struct {
	IPAddress string `json:"ipAddress" validate:"omitempty,ip"`
	UserAgent string `json:"userAgent" validate:"max=500"`
	Referer   string `json:"referer" validate:"max=2000"`
}

// Project is the API representation of a project
type Project struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	RepoURL     string    `json:"repoUrl,omitempty"`
	LiveURL     string    `json:"liveUrl,omitempty"`
	CoverID     string    `json:"coverId,omitempty"`
	MediaIDs    []string  `json:"mediaIds"`
	ProjectType string    `json:"projectType"`
	Order       int       `json:"order"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Experience is the API representation of an experience entry.
// HighlightsText is only filled for admin reads.
type Experience struct {
	ID             uuid.UUID `json:"id"`
	Role           string    `json:"role"`
	Company        string    `json:"company"`
	StartDate      Date      `json:"startDate"`
	EndDate        *Date     `json:"endDate"`
	Summary        string    `json:"summary"`
	Highlights     []string  `json:"highlights"`
	HighlightsText string    `json:"highlightsText,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Training is the API representation of a training entry
type Training struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Institution string    `json:"institution"`
	StartDate   Date      `json:"startDate"`
	EndDate     *Date     `json:"endDate"`
	Description string    `json:"description,omitempty"`
	Certificate string    `json:"certificate,omitempty"`
	Order       int       `json:"order"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Tech is the API representation of a tech stack entry
type Tech struct {
	ID    uuid.UUID `json:"id"`
	Label string    `json:"label"`
	Group string    `json:"group"`
	Level string    `json:"level,omitempty"`
}

// Media is the API representation of a media reference
type Media struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	PublicID  string    `json:"publicId"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

// Link is the API representation of a link
type Link struct {
	ID    uuid.UUID `json:"id"`
	Label string    `json:"label"`
	URL   string    `json:"url"`
}

// Portfolio is every public section in one response
type Portfolio struct {
	Projects   []Project         `json:"projects"`
	Experience []Experience      `json:"experience"`
	Trainings  []Training        `json:"trainings"`
	Tech       map[string][]Tech `json:"tech"`
	Links      []Link            `json:"links"`
	Media      []Media           `json:"media"`
}

// UploadResponse describes a stored upload
type UploadResponse struct {
	Success   bool   `json:"success"`
	ImagePath string `json:"imagePath"`
	Filename  string `json:"filename"`
	Size      int64  `json:"size"`
	Type      string `json:"type"`
}

// ImageCheckResponse reports whether an uploaded image exists
type ImageCheckResponse struct {
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
}

// Validate validates the ProjectRequest using the validator.
func (r *ProjectRequest) Validate() error { return validate.Struct(r) }

// Validate validates the ExperienceRequest using the validator.
func (r *ExperienceRequest) Validate() error { return validate.Struct(r) }

// Validate validates the TrainingRequest using the validator.
func (r *TrainingRequest) Validate() error { return validate.Struct(r) }

// Validate validates the TechRequest using the validator.
func (r *TechRequest) Validate() error { return validate.Struct(r) }

// Validate validates the MediaRequest using the validator.
func (r *MediaRequest) Validate() error { return validate.Struct(r) }

// Validate validates the LinkRequest using the validator.
func (r *LinkRequest) Validate() error { return validate.Struct(r) }

// Validate validates the ProjectOrderRequest using the validator.
func (r *ProjectOrderRequest) Validate() error { return validate.Struct(r) }

// Validate validates the TrainingOrderRequest using the validator.
func (r *TrainingOrderRequest) Validate() error { return validate.Struct(r) }

// Validate validates the VisitRequest using the validator.
func (r *VisitRequest) Validate() error { return validate.Struct(r) }

// HighlightItems resolves the highlights to store: the list field when it
// has items, otherwise the text field.
func (r *ExperienceRequest) HighlightItems() ListInput {
	if len(r.Highlights) > 0 || r.HighlightsText == nil {
		return r.Highlights
	}
	return ListInput(highlights.ParseText(*r.HighlightsText))
}
