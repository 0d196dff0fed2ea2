// ABOUTME: Tracker is the application service behind every surface (HTTP, CLI, MCP).
// ABOUTME: It turns store failures into empty results so callers always get an answer.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/fitlog/internal/auth"
	"github.com/harperreed/fitlog/internal/metrics"
	"github.com/harperreed/fitlog/internal/models"
	"github.com/harperreed/fitlog/internal/storage"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrStoreUnavailable is returned by Register when no record store is configured.
	ErrStoreUnavailable = errors.New("record store unavailable")
	// ErrInvalidKind is returned when an entry operation names a goal kind.
	ErrInvalidKind = errors.New("kind must be diet or workout")
	// ErrEntryNotFound is returned by ResolveID when nothing matches.
	ErrEntryNotFound = errors.New("entry not found")
	// ErrAmbiguousID is returned by ResolveID when a prefix matches several entries.
	ErrAmbiguousID = errors.New("ambiguous id prefix")
)

// Tracker owns the record store and credential store for one process.
// A nil repository is valid: reads come back empty and writes do nothing.
type Tracker struct {
	repo    storage.Repository
	creds   *auth.Credentials
	log     *logrus.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	cost    int
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithMetrics records writes and degraded calls.
func WithMetrics(m *metrics.Metrics) Option {
	return func(t *Tracker) { t.metrics = m }
}

// WithBcryptCost sets the password hashing cost.
func WithBcryptCost(cost int) Option {
	return func(t *Tracker) { t.cost = cost }
}

// New creates a Tracker. Pass a nil repo (untyped) when storage could not be opened.
func New(repo storage.Repository, log *logrus.Logger, opts ...Option) *Tracker {
	t := &Tracker{
		repo: repo,
		log:  log,
		now:  time.Now,
		cost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.log == nil {
		t.log = logrus.StandardLogger()
	}
	if repo != nil {
		t.creds = auth.NewCredentialsWithCost(repo, t.cost)
	}
	return t
}

// Available reports whether a record store is configured.
func (t *Tracker) Available() bool {
	return t.repo != nil
}

// Now returns the tracker's clock reading.
func (t *Tracker) Now() time.Time {
	return t.now()
}

func (t *Tracker) degraded(op string, err error) {
	t.metrics.RecordDegraded(op)
	entry := t.log.WithField("op", op)
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Warn("record store degraded")
}

// Register creates a user. It fails with ErrStoreUnavailable when there is no store.
func (t *Tracker) Register(ctx context.Context, username, password string) error {
	if t.repo == nil {
		t.degraded("register", nil)
		return ErrStoreUnavailable
	}
	if _, err := t.creds.Register(ctx, username, password); err != nil {
		if !errors.Is(err, auth.ErrAlreadyExists) && !errors.Is(err, auth.ErrInvalidInput) {
			t.log.WithError(err).WithField("user", username).Error("register failed")
		}
		return err
	}
	t.log.WithField("user", username).Info("registered user")
	return nil
}

// Login checks a username/password pair. Any failure, including a missing
// store, is reported as auth.ErrInvalidCredentials.
func (t *Tracker) Login(ctx context.Context, username, password string) error {
	if t.repo == nil {
		t.degraded("login", nil)
		return auth.ErrInvalidCredentials
	}
	_, ok, err := t.creds.Verify(ctx, username, password)
	if err != nil {
		t.degraded("login", err)
		return auth.ErrInvalidCredentials
	}
	if !ok {
		return auth.ErrInvalidCredentials
	}
	return nil
}

// EntryInput carries entry fields from a form or tool call. Nil fields are
// absent: on create they are empty, on edit they keep the stored value.
// Time is parsed by storage.ResolveOccurredAt; a present empty Time means "now".
type EntryInput struct {
	MealName      *string
	Description   *string
	WorkoutType   *string
	Calories      *string
	Protein       *string
	Carbohydrates *string
	Fat           *string
	Time          *string
}

// ListOptions controls Entries.
type ListOptions struct {
	SortBy string
	Order  string
	Search string

	// From and To restrict occurrence time to [From, To) when set.
	From time.Time
	To   time.Time
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

func override(dst *string, p *string) {
	if p != nil {
		*dst = strings.TrimSpace(*p)
	}
}

func (in EntryInput) macros(base models.Macros) models.Macros {
	override(&base.Calories, in.Calories)
	override(&base.Protein, in.Protein)
	override(&base.Carbohydrates, in.Carbohydrates)
	override(&base.Fat, in.Fat)
	return base
}

// LogEntry records a diet or workout entry and returns its ID. When the
// store is missing or fails, nothing is written and the ID is uuid.Nil.
func (t *Tracker) LogEntry(ctx context.Context, owner string, kind models.Kind, in EntryInput) (uuid.UUID, error) {
	var body models.Body
	switch kind {
	case models.KindDietEntry:
		body = models.NewDietEntry(str(in.MealName), in.macros(models.Macros{}))
	case models.KindWorkoutEntry:
		body = models.NewWorkoutEntry(str(in.Description), str(in.WorkoutType))
	default:
		return uuid.Nil, ErrInvalidKind
	}

	if t.repo == nil {
		t.degraded("insert", nil)
		return uuid.Nil, nil
	}
	id, err := t.repo.Insert(ctx, owner, body, str(in.Time), t.now())
	if err != nil {
		if errors.Is(err, storage.ErrMissingOwner) {
			return uuid.Nil, err
		}
		t.degraded("insert", err)
		return uuid.Nil, nil
	}
	t.metrics.RecordWrite(string(kind), "insert")
	t.log.WithFields(logrus.Fields{"user": owner, "kind": kind, "id": id}).Debug("logged entry")
	return id, nil
}

// Entries lists the owner's entries of kind, sorted and optionally searched.
func (t *Tracker) Entries(ctx context.Context, owner string, kind models.Kind, opts ListOptions) []*models.Record {
	if !kind.IsEntry() {
		return nil
	}
	sortBy := strings.TrimSpace(opts.SortBy)
	if sortBy == "" {
		sortBy = storage.DefaultSortField
	}
	return t.collect(ctx, "find_many", func(repo storage.Repository) *storage.Records {
		return repo.FindMany(storage.Query{
			Kind:   kind,
			Owner:  owner,
			Text:   opts.Search,
			SortBy: sortBy,
			Order:  storage.ParseSortOrder(opts.Order),
			From:   opts.From,
			To:     opts.To,
		})
	})
}

// Records lists every record the owner has, newest first.
func (t *Tracker) Records(ctx context.Context, owner string) []*models.Record {
	return t.collect(ctx, "list_all", func(repo storage.Repository) *storage.Records {
		return repo.ListAll(owner)
	})
}

func (t *Tracker) collect(ctx context.Context, op string, query func(storage.Repository) *storage.Records) []*models.Record {
	if t.repo == nil {
		t.degraded(op, nil)
		return []*models.Record{}
	}
	recs, err := query(t.repo).Collect(ctx)
	if err != nil {
		t.degraded(op, err)
		return []*models.Record{}
	}
	if recs == nil {
		recs = []*models.Record{}
	}
	return recs
}

// Entry returns one of the owner's records by ID.
func (t *Tracker) Entry(ctx context.Context, owner string, id uuid.UUID) (*models.Record, bool) {
	if t.repo == nil {
		t.degraded("get", nil)
		return nil, false
	}
	rec, err := t.repo.Get(ctx, id, owner)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			t.degraded("get", err)
		}
		return nil, false
	}
	return rec, true
}

// ResolveID turns a full ID or a unique ID prefix into one of the owner's entry IDs.
// A full ID is returned as-is without checking that it exists.
func (t *Tracker) ResolveID(ctx context.Context, owner, ref string) (uuid.UUID, error) {
	ref = strings.ToLower(strings.TrimSpace(ref))
	if ref == "" {
		return uuid.Nil, ErrEntryNotFound
	}
	if id, err := uuid.Parse(ref); err == nil {
		return id, nil
	}

	var matches []uuid.UUID
	for _, rec := range t.Records(ctx, owner) {
		if rec.Kind().IsEntry() && strings.HasPrefix(rec.ID.String(), ref) {
			matches = append(matches, rec.ID)
		}
	}
	switch len(matches) {
	case 0:
		return uuid.Nil, fmt.Errorf("%w: %s", ErrEntryNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return uuid.Nil, fmt.Errorf("%w: %q matches %d entries", ErrAmbiguousID, ref, len(matches))
	}
}

// Edit merges in over the owner's entry with this ID. It reports false when
// the entry does not exist, belongs to someone else, is a goal, or the store failed.
func (t *Tracker) Edit(ctx context.Context, owner string, id uuid.UUID, in EntryInput) bool {
	rec, ok := t.Entry(ctx, owner, id)
	if !ok {
		return false
	}

	var body models.Body
	switch b := rec.Body.(type) {
	case *models.DietEntry:
		next := *b
		override(&next.MealName, in.MealName)
		next.Macros = in.macros(b.Macros)
		if in.Time != nil {
			next.OccurredAt = storage.ResolveOccurredAt(*in.Time, t.now())
		}
		body = &next
	case *models.WorkoutEntry:
		next := *b
		override(&next.Description, in.Description)
		override(&next.WorkoutType, in.WorkoutType)
		if in.Time != nil {
			next.OccurredAt = storage.ResolveOccurredAt(*in.Time, t.now())
		}
		body = &next
	default:
		return false
	}

	updated, err := t.repo.Update(ctx, id, owner, body)
	if err != nil {
		t.degraded("update", err)
		return false
	}
	if updated {
		t.metrics.RecordWrite(string(body.Kind()), "update")
	}
	return updated
}

// Delete removes one of the owner's records.
func (t *Tracker) Delete(ctx context.Context, owner string, id uuid.UUID) bool {
	if t.repo == nil {
		t.degraded("delete", nil)
		return false
	}
	deleted, err := t.repo.Delete(ctx, id, owner)
	if err != nil {
		t.degraded("delete", err)
		return false
	}
	if deleted {
		t.metrics.RecordWrite("any", "delete")
	}
	return deleted
}

// DeleteAll removes every record the owner has and returns how many went.
func (t *Tracker) DeleteAll(ctx context.Context, owner string) int64 {
	if t.repo == nil {
		t.degraded("delete_all", nil)
		return 0
	}
	n, err := t.repo.DeleteAll(ctx, owner)
	if err != nil {
		t.degraded("delete_all", err)
		return 0
	}
	t.metrics.RecordWrite("any", "delete_all")
	t.log.WithFields(logrus.Fields{"user": owner, "deleted": n}).Info("deleted all records")
	return n
}
