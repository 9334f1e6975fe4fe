package highlights

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
)

// ErrScanInProgress is returned when a repair scan for the same collection is
// already running.
var ErrScanInProgress = errors.New("repair scan already in progress")

// Record is one stored list value and the key of the row that owns it.
type Record struct {
	ID  string
	Raw string
}

// Store is the persistence capability the Repairer needs: enumerate every
// stored value of one column, and overwrite a single row's value by key.
type Store interface {
	ListEncoded(ctx context.Context) ([]Record, error)
	UpdateEncoded(ctx context.Context, id, value string) error
}

// Recorder receives one outcome per scanned record ("canonical", "repaired",
// "failed"). It is optional.
type Recorder interface {
	ObserveRepair(collection, outcome string)
}

// Change describes a record that was (or, in a dry run, would be) rewritten.
type Change struct {
	ID     string `json:"id"`
	Before string `json:"before"`
	After  string `json:"after"`
}

// Failure describes a record whose rewrite could not be persisted.
type Failure struct {
	ID     string `json:"id"`
	Before string `json:"before"`
	Error  string `json:"error"`
}

// Report summarizes one scan.
type Report struct {
	Collection string    `json:"collection"`
	DryRun     bool      `json:"dryRun,omitempty"`
	Scanned    int       `json:"scanned"`
	Repaired   int       `json:"repaired"`
	Failed     int       `json:"failed"`
	Details    []Change  `json:"details"`
	Failures   []Failure `json:"failures"`
}

// Repairer rewrites non-canonical stored values of one collection into
// canonical form.
type Repairer struct {
	collection string
	store      Store
	logger     *zap.Logger
	recorder   Recorder
	running    atomic.Bool
}

// Option configures a Repairer.
type Option func(*Repairer)

// WithLogger sets the logger; the default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Repairer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRecorder reports per-record outcomes to rec.
func WithRecorder(rec Recorder) Option {
	return func(r *Repairer) { r.recorder = rec }
}

// NewRepairer creates a Repairer for the named collection.
func NewRepairer(collection string, store Store, opts ...Option) *Repairer {
	r := &Repairer{
		collection: collection,
		store:      store,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(zap.String("collection", collection))
	return r
}

// Collection returns the name the Repairer was created with.
func (r *Repairer) Collection() string { return r.collection }

// RepairAll scans every record, leaves canonical values untouched and
// rewrites the rest. A failed write is recorded in the report and the scan
// moves on. If ctx is cancelled the partial report is returned with ctx's
// error.
func (r *Repairer) RepairAll(ctx context.Context) (*Report, error) {
	return r.scan(ctx, false)
}

// Plan is a dry run of RepairAll: it reports what would change without
// writing anything.
func (r *Repairer) Plan(ctx context.Context) (*Report, error) {
	return r.scan(ctx, true)
}

func (r *Repairer) scan(ctx context.Context, dryRun bool) (*Report, error) {
	if !r.running.CompareAndSwap(false, true) {
		return nil, ErrScanInProgress
	}
	defer r.running.Store(false)

	records, err := r.store.ListEncoded(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", r.collection, err)
	}

	report := &Report{
		Collection: r.collection,
		DryRun:     dryRun,
		Details:    []Change{},
		Failures:   []Failure{},
	}

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			r.logger.Warn("repair scan cancelled",
				zap.Int("scanned", report.Scanned),
				zap.Int("remaining", len(records)-report.Scanned))
			return report, err
		}
		report.Scanned++

		if IsCanonical(rec.Raw) {
			r.observe("canonical")
			continue
		}

		after := Encode(Decode(rec.Raw))
		change := Change{ID: rec.ID, Before: rec.Raw, After: after}

		if dryRun {
			report.Repaired++
			report.Details = append(report.Details, change)
			continue
		}

		if err := r.store.UpdateEncoded(ctx, rec.ID, after); err != nil {
			r.logger.Warn("failed to persist repaired value",
				zap.String("id", rec.ID), zap.Error(err))
			report.Failed++
			report.Failures = append(report.Failures, Failure{ID: rec.ID, Before: rec.Raw, Error: err.Error()})
			r.observe("failed")
			continue
		}

		r.logger.Info("repaired stored list",
			zap.String("id", rec.ID),
			zap.String("before", rec.Raw),
			zap.String("after", after))
		report.Repaired++
		report.Details = append(report.Details, change)
		r.observe("repaired")
	}

	r.logger.Info("repair scan finished",
		zap.Bool("dry_run", dryRun),
		zap.Int("scanned", report.Scanned),
		zap.Int("repaired", report.Repaired),
		zap.Int("failed", report.Failed))
	return report, nil
}

func (r *Repairer) observe(outcome string) {
	if r.recorder != nil {
		r.recorder.ObserveRepair(r.collection, outcome)
	}
}
