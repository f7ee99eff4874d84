package storage

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/eliasosarumwense/Habital-sub003/internal/errors"
	"github.com/eliasosarumwense/Habital-sub003/internal/models"
)

// ErrNotFound is returned when a lookup by ID matches nothing.
var ErrNotFound = apperrors.ErrNotFound

// Kind names an entity table for batch operations.
type Kind string

const (
	KindList       Kind = "HabitList"
	KindHabit      Kind = "Habit"
	KindPattern    Kind = "RepeatPattern"
	KindCompletion Kind = "Completion"
)

// HabitFilter selects habits. The zero value returns every unarchived habit
// without patterns or completions.
type HabitFilter struct {
	// ListID restricts to one list. Ignored when Standalone is set.
	ListID uuid.NullUUID
	// Standalone restricts to habits without a list.
	Standalone      bool
	IncludeArchived bool
	WithPatterns    bool
	WithCompletions bool
	Limit           int
}

// CompletionFilter selects completions. Zero times leave the range open.
type CompletionFilter struct {
	HabitID uuid.NullUUID
	From    time.Time // inclusive
	To      time.Time // exclusive
	// Date matches one exact stored date.
	Date  time.Time
	Limit int
}

// Repository is the data surface shared by a store and its transactions.
type Repository interface {
	// Lists
	SaveList(ctx context.Context, list models.HabitList) error
	GetList(ctx context.Context, id uuid.UUID) (models.HabitList, error)
	Lists(ctx context.Context) ([]models.HabitList, error)
	// DeleteList leaves the list's habits standalone.
	DeleteList(ctx context.Context, id uuid.UUID) error

	// Habits
	SaveHabit(ctx context.Context, habit models.Habit) error
	// GetHabit loads the habit with its patterns and completions.
	GetHabit(ctx context.Context, id uuid.UUID) (models.Habit, error)
	Habits(ctx context.Context, filter HabitFilter) ([]models.Habit, error)
	// DeleteHabit removes the habit together with its patterns and completions.
	DeleteHabit(ctx context.Context, id uuid.UUID) error

	// Repeat patterns
	SavePattern(ctx context.Context, pattern models.RepeatPattern) error
	GetPattern(ctx context.Context, id uuid.UUID) (models.RepeatPattern, error)
	// Patterns returns the habit's patterns, newest EffectiveFrom first.
	Patterns(ctx context.Context, habitID uuid.UUID) ([]models.RepeatPattern, error)
	DeletePattern(ctx context.Context, id uuid.UUID) error

	// Completions
	SaveCompletion(ctx context.Context, completion models.Completion) error
	// Completions returns matching completions ordered by date then LoggedAt.
	Completions(ctx context.Context, filter CompletionFilter) ([]models.Completion, error)
	DeleteCompletion(ctx context.Context, id uuid.UUID) error
	// OrphanCompletions returns completions whose habit no longer exists.
	OrphanCompletions(ctx context.Context) ([]models.Completion, error)

	// Count returns the number of stored entities of kind.
	Count(ctx context.Context, kind Kind) (int, error)
	// DeleteAll removes every entity of kind and returns how many went.
	DeleteAll(ctx context.Context, kind Kind) (int64, error)
}

// Provider is a persistent store.
type Provider interface {
	// Lifecycle
	Init(ctx context.Context) error
	Load(ctx context.Context) error
	Close() error

	Repository

	// InTx runs fn against a transaction-bound repository. The transaction
	// commits when fn returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(tx Repository) error) error

	// SchemaVersion reports the applied and the latest known schema version.
	SchemaVersion(ctx context.Context) (current, latest int, err error)

	// GetConfigPath returns the database path or connection string.
	GetConfigPath() string
}

// IsPostgres reports whether the database setting is a PostgreSQL URL.
func IsPostgres(database string) bool {
	return strings.HasPrefix(database, "postgres://") || strings.HasPrefix(database, "postgresql://")
}
