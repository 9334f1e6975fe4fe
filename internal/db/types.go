package db

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Project types
const (
	ProjectTypeDeveloped = "developed"
	ProjectTypeManaged   = "managed"
)

// Project is a portfolio project. Tags and MediaIDs hold encoded lists
// exactly as stored; callers decode them with the highlights package.
type Project struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	Tags        string    `json:"-"`
	RepoURL     string    `json:"repo_url,omitempty"`
	LiveURL     string    `json:"live_url,omitempty"`
	CoverID     string    `json:"cover_id,omitempty"`
	MediaIDs    string    `json:"-"`
	ProjectType string    `json:"project_type"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProjectInput holds the writable project columns. A nil SortOrder keeps
// the current order on update and appends on create.
type ProjectInput struct {
	Title       string
	Slug        string
	Summary     string
	Description string
	Tags        string
	RepoURL     string
	LiveURL     string
	CoverID     string
	MediaIDs    string
	ProjectType string
	SortOrder   *int
}

// Experience is a work experience entry. Highlights holds the encoded list.
type Experience struct {
	ID         uuid.UUID  `json:"id"`
	Role       string     `json:"role"`
	Company    string     `json:"company"`
	StartDate  time.Time  `json:"start_date"`
	EndDate    *time.Time `json:"end_date,omitempty"`
	Summary    string     `json:"summary"`
	Highlights string     `json:"-"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// ExperienceInput holds the writable experience columns
type ExperienceInput struct {
	Role       string
	Company    string
	StartDate  time.Time
	EndDate    *time.Time
	Summary    string
	Highlights string
}

// Training is a course or certification entry
type Training struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Institution string     `json:"institution"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Description string     `json:"description,omitempty"`
	Certificate string     `json:"certificate,omitempty"`
	SortOrder   int        `json:"sort_order"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TrainingInput holds the writable training columns
type TrainingInput struct {
	Title       string
	Institution string
	StartDate   time.Time
	EndDate     *time.Time
	Description string
	Certificate string
	SortOrder   *int
}

// Tech is one entry of the technology stack, grouped for display
type Tech struct {
	ID        uuid.UUID `json:"id"`
	Label     string    `json:"label"`
	Group     string    `json:"group"`
	Level     string    `json:"level,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TechInput holds the writable tech columns
type TechInput struct {
	Label string
	Group string
	Level string
}

// Media is an uploaded image or video reference
type Media struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	PublicID  string    `json:"public_id"`
	MediaType string    `json:"media_type"`
	CreatedAt time.Time `json:"created_at"`
}

// MediaInput holds the writable media columns
type MediaInput struct {
	Title     string
	PublicID  string
	MediaType string
}

// Link is an external profile link
type Link struct {
	ID        uuid.UUID `json:"id"`
	Label     string    `json:"label"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

// LinkInput holds the writable link columns
type LinkInput struct {
	Label string
	URL   string
}

// Visit is a single recorded page view
type Visit struct {
	IPAddress string
	UserAgent string
	Referer   string
}

// VisitorStats summarizes recorded visits
type VisitorStats struct {
	Total  int64 `json:"totalVisitors"`
	Unique int64 `json:"uniqueVisitors"`
	Today  int64 `json:"todayVisitors"`
	Week   int64 `json:"weekVisitors"`
}

// OrderUpdate assigns a display position to one row
type OrderUpdate struct {
	ID    uuid.UUID `json:"id"`
	Order int       `json:"order"`
}

var (
	slugSpaces  = regexp.MustCompile(`\s+`)
	slugInvalid = regexp.MustCompile(`[^a-z0-9-]`)
)

// Slugify lowercases title, replaces whitespace runs with '-' and drops
// everything outside [a-z0-9-].
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = slugSpaces.ReplaceAllString(s, "-")
	return slugInvalid.ReplaceAllString(s, "")
}
