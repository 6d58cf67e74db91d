package views

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cdtdelta/tablekit/internal/logger"
)

var (
	// ErrEmptyName is returned when a view is created or renamed without a
	// name.
	ErrEmptyName = errors.New("saved view name cannot be empty")

	// ErrNotFound is returned when an operation names an unknown view id.
	ErrNotFound = errors.New("saved view not found")

	// ErrNotLoaded is recorded in PersistErr when a write is skipped because
	// the persisted collection could not be loaded.
	ErrNotLoaded = errors.New("saved views were not loaded, changes kept in memory only")
)

// Persistence loads and saves the whole saved-view collection.
type Persistence interface {
	Load(ctx context.Context) ([]SavedView, error)
	Save(ctx context.Context, views []SavedView) error
}

// CreateOptions are the optional fields of a new view.
type CreateOptions struct {
	Description  string
	SetAsDefault bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger persistence failures are reported to.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithClock sets the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator sets the function that assigns view ids.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// Store is the in-memory saved-view collection. Every mutation writes the
// full collection through the Persistence adapter. Persistence failures
// never fail an operation: they are logged and kept for PersistErr.
//
// After a failed load the store works in memory only and never writes, so
// the persisted collection it could not read is left intact until Reload
// succeeds.
type Store struct {
	persist Persistence
	views   []SavedView
	log     *slog.Logger
	now     func() time.Time
	newID   func() string
	lastErr error
	loadErr error
}

// NewStore loads the persisted collection. A failed load is logged and the
// store starts empty without writing back.
func NewStore(ctx context.Context, p Persistence, opts ...Option) *Store {
	s := &Store{
		persist: p,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if p == nil {
		return s
	}

	loaded, err := p.Load(ctx)
	if err != nil {
		s.loadErr = err
		s.lastErr = fmt.Errorf("loading saved views: %w", err)
		s.logOrDefault().Warn("Failed to load saved views, starting empty", "error", err)
		return s
	}
	s.views = cloneViews(loaded)
	s.normalizeDefault()
	return s
}

// Reload retries loading after a failed load. Views created in memory
// since then are appended to the loaded collection, which is then saved.
// It is a no-op when the store loaded successfully.
func (s *Store) Reload(ctx context.Context) error {
	if s.loadErr == nil {
		return nil
	}
	loaded, err := s.persist.Load(ctx)
	if err != nil {
		s.loadErr = err
		s.lastErr = fmt.Errorf("loading saved views: %w", err)
		return s.lastErr
	}

	merged := cloneViews(loaded)
	for _, v := range s.views {
		if !slices.ContainsFunc(merged, func(m SavedView) bool { return m.ID == v.ID }) {
			merged = append(merged, v.Clone())
		}
	}
	s.views = merged
	s.normalizeDefault()
	s.loadErr = nil
	s.save(ctx)
	return s.lastErr
}

// normalizeDefault keeps only the first default flag of a loaded collection.
func (s *Store) normalizeDefault() {
	seen := false
	for i := range s.views {
		if s.views[i].IsDefault {
			if seen {
				s.views[i].IsDefault = false
			}
			seen = true
		}
	}
}

// logOrDefault returns the configured logger, or the process logger at
// the time of the call.
func (s *Store) logOrDefault() *slog.Logger {
	if s.log != nil {
		return s.log
	}
	return logger.Get()
}

func (s *Store) stamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *Store) save(ctx context.Context) {
	if s.persist == nil {
		return
	}
	if s.loadErr != nil {
		s.lastErr = fmt.Errorf("%w: %v", ErrNotLoaded, s.loadErr)
		s.logOrDefault().Warn("Skipping save of saved views after failed load", "error", s.loadErr, "count", len(s.views))
		return
	}
	if err := s.persist.Save(ctx, cloneViews(s.views)); err != nil {
		s.lastErr = fmt.Errorf("saving saved views: %w", err)
		s.logOrDefault().Warn("Failed to persist saved views", "error", err, "count", len(s.views))
		return
	}
	s.lastErr = nil
}

func (s *Store) index(id string) int {
	for i := range s.views {
		if s.views[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) clearDefault() {
	for i := range s.views {
		s.views[i].IsDefault = false
	}
}

// Create adds a view for snap. With SetAsDefault, every other view loses
// its default flag in the same step.
func (s *Store) Create(ctx context.Context, name string, snap Snapshot, opts CreateOptions) (SavedView, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return SavedView{}, ErrEmptyName
	}
	now := s.stamp()
	v := SavedView{
		ID:          s.newID(),
		Name:        name,
		Description: strings.TrimSpace(opts.Description),
		IsDefault:   opts.SetAsDefault,
		CreatedAt:   now,
		UpdatedAt:   now,
		Snapshot:    snap.Clone(),
	}
	if opts.SetAsDefault {
		s.clearDefault()
	}
	s.views = append(s.views, v)
	s.save(ctx)
	return v.Clone(), nil
}

// Apply returns the snapshot stored under id, or nil if there is none.
func (s *Store) Apply(id string) *Snapshot {
	i := s.index(id)
	if i < 0 {
		return nil
	}
	snap := s.views[i].Snapshot.Clone()
	return &snap
}

// Duplicate copies view id under a fresh id. A blank newName becomes
// "<name> (copy)". The copy is never the default.
func (s *Store) Duplicate(ctx context.Context, id, newName string) *SavedView {
	i := s.index(id)
	if i < 0 {
		return nil
	}
	src := s.views[i]
	name := strings.TrimSpace(newName)
	if name == "" {
		name = src.Name + " (copy)"
	}
	now := s.stamp()
	v := src.Clone()
	v.ID = s.newID()
	v.Name = name
	v.IsDefault = false
	v.CreatedAt = now
	v.UpdatedAt = now
	s.views = append(s.views, v)
	s.save(ctx)

	out := v.Clone()
	return &out
}

// SetDefault makes id the only default view. An empty id clears the
// default. It reports false, changing nothing, when id is unknown.
func (s *Store) SetDefault(ctx context.Context, id string) bool {
	if id == "" {
		s.clearDefault()
		s.save(ctx)
		return true
	}
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.clearDefault()
	s.views[i].IsDefault = true
	s.save(ctx)
	return true
}

// Delete removes view id and reports whether it existed.
func (s *Store) Delete(ctx context.Context, id string) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	s.views = append(s.views[:i], s.views[i+1:]...)
	s.save(ctx)
	return true
}

// Update replaces the snapshot of view id with snap.
func (s *Store) Update(ctx context.Context, id string, snap Snapshot) *SavedView {
	i := s.index(id)
	if i < 0 {
		return nil
	}
	s.views[i].Snapshot = snap.Clone()
	s.views[i].UpdatedAt = s.stamp()
	s.save(ctx)

	out := s.views[i].Clone()
	return &out
}

// Rename changes the name and description of view id. It returns
// ErrNotFound for an unknown id.
func (s *Store) Rename(ctx context.Context, id, name, description string) (*SavedView, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	i := s.index(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	s.views[i].Name = name
	s.views[i].Description = strings.TrimSpace(description)
	s.views[i].UpdatedAt = s.stamp()
	s.save(ctx)

	out := s.views[i].Clone()
	return &out, nil
}

// FindMatching returns the first view whose snapshot equals snap.
func (s *Store) FindMatching(snap Snapshot) *SavedView {
	for _, v := range s.views {
		if v.Snapshot.Equal(snap) {
			out := v.Clone()
			return &out
		}
	}
	return nil
}

// Default returns the default view, if any.
func (s *Store) Default() *SavedView {
	for _, v := range s.views {
		if v.IsDefault {
			out := v.Clone()
			return &out
		}
	}
	return nil
}

// Get returns view id, or nil.
func (s *Store) Get(id string) *SavedView {
	i := s.index(id)
	if i < 0 {
		return nil
	}
	out := s.views[i].Clone()
	return &out
}

// List returns a copy of all views in creation order.
func (s *Store) List() []SavedView {
	return cloneViews(s.views)
}

// Import appends views under fresh ids. Imported views are never default,
// and blank names are replaced by "Imported view". It returns the stored
// copies.
func (s *Store) Import(ctx context.Context, views []SavedView) []SavedView {
	if len(views) == 0 {
		return nil
	}
	now := s.stamp()
	added := make([]SavedView, 0, len(views))
	for _, in := range views {
		v := in.Clone()
		v.ID = s.newID()
		v.Name = strings.TrimSpace(v.Name)
		if v.Name == "" {
			v.Name = "Imported view"
		}
		v.IsDefault = false
		if v.CreatedAt.IsZero() {
			v.CreatedAt = now
		}
		v.UpdatedAt = now
		s.views = append(s.views, v)
		added = append(added, v.Clone())
	}
	s.save(ctx)
	return added
}

// PersistErr returns the error of the last failed load or save, or nil
// once a later save succeeds.
func (s *Store) PersistErr() error {
	return s.lastErr
}
