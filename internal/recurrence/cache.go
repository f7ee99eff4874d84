package recurrence

import (
	"sync"

	"github.com/google/uuid"
)

// Query distinguishes the memoized evaluator answers.
type Query uint8

const (
	QueryScheduled Query = iota
	QueryCompleted
)

// Key identifies one memoized answer.
type Key struct {
	HabitID uuid.UUID
	Day     string // YYYY-MM-DD
	Query   Query
}

// Invalidator receives the change notifications that make cached answers
// stale. Every hook drops all answers for the habit: follow-up carry-forward
// lets a single completion change answers on later days.
type Invalidator interface {
	HabitEdited(habitID uuid.UUID)
	PatternEdited(habitID uuid.UUID)
	PatternDeleted(habitID uuid.UUID)
	CompletionToggled(habitID uuid.UUID)
	InvalidateAll()
}

// Cache memoizes evaluator answers until explicitly invalidated.
type Cache interface {
	Get(key Key) (bool, bool)
	Put(key Key, value bool)
	Invalidator
}

type dayQuery struct {
	day   string
	query Query
}

// MemoCache is a Cache safe for concurrent use. Lookups share a read lock;
// population and invalidation take the write lock.
type MemoCache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]map[dayQuery]bool
}

func NewMemoCache() *MemoCache {
	return &MemoCache{entries: make(map[uuid.UUID]map[dayQuery]bool)}
}

func (c *MemoCache) Get(key Key) (bool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	habit, ok := c.entries[key.HabitID]
	if !ok {
		return false, false
	}
	v, ok := habit[dayQuery{key.Day, key.Query}]
	return v, ok
}

func (c *MemoCache) Put(key Key, value bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	habit, ok := c.entries[key.HabitID]
	if !ok {
		habit = make(map[dayQuery]bool)
		c.entries[key.HabitID] = habit
	}
	habit[dayQuery{key.Day, key.Query}] = value
}

// Len returns the number of cached answers.
func (c *MemoCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := 0
	for _, habit := range c.entries {
		n += len(habit)
	}
	return n
}

func (c *MemoCache) dropHabit(habitID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, habitID)
}

func (c *MemoCache) HabitEdited(habitID uuid.UUID)       { c.dropHabit(habitID) }
func (c *MemoCache) PatternEdited(habitID uuid.UUID)     { c.dropHabit(habitID) }
func (c *MemoCache) PatternDeleted(habitID uuid.UUID)    { c.dropHabit(habitID) }
func (c *MemoCache) CompletionToggled(habitID uuid.UUID) { c.dropHabit(habitID) }

func (c *MemoCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[uuid.UUID]map[dayQuery]bool)
}

// nopCache never stores anything.
type nopCache struct{}

func (nopCache) Get(Key) (bool, bool)        { return false, false }
func (nopCache) Put(Key, bool)               {}
func (nopCache) HabitEdited(uuid.UUID)       {}
func (nopCache) PatternEdited(uuid.UUID)     {}
func (nopCache) PatternDeleted(uuid.UUID)    {}
func (nopCache) CompletionToggled(uuid.UUID) {}
func (nopCache) InvalidateAll()              {}
