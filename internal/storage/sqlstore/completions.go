package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/eliasosarumwense/Habital-sub003/internal/models"
	"github.com/eliasosarumwense/Habital-sub003/internal/storage"
)

const completionColumns = "id, habit_id, date, logged_at, duration, completed"

func (s *Store) SaveCompletion(ctx context.Context, c models.Completion) error {
	_, err := s.exec(ctx, `
		INSERT INTO completions (`+completionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			habit_id = excluded.habit_id,
			date = excluded.date,
			logged_at = excluded.logged_at,
			duration = excluded.duration,
			completed = excluded.completed`,
		c.ID, c.HabitID, dbTime{c.Date}, dbTime{c.LoggedAt}, c.Duration, c.Completed)
	if err != nil {
		return fmt.Errorf("failed to save completion %s: %w", c.ID, err)
	}
	return nil
}

func scanCompletion(row interface{ Scan(...any) error }) (models.Completion, error) {
	var (
		c            models.Completion
		date, logged dbTime
	)
	if err := row.Scan(&c.ID, &c.HabitID, &date, &logged, &c.Duration, &c.Completed); err != nil {
		return models.Completion{}, err
	}
	c.Date = date.Time
	c.LoggedAt = logged.Time
	return c, nil
}

func (s *Store) Completions(ctx context.Context, filter storage.CompletionFilter) ([]models.Completion, error) {
	var (
		where []string
		args  []any
	)
	if filter.HabitID.Valid {
		where = append(where, "habit_id = ?")
		args = append(args, filter.HabitID.UUID)
	}
	if !filter.Date.IsZero() {
		where = append(where, "date = ?")
		args = append(args, dbTime{filter.Date})
	}
	if !filter.From.IsZero() {
		where = append(where, "date >= ?")
		args = append(args, dbTime{filter.From})
	}
	if !filter.To.IsZero() {
		where = append(where, "date < ?")
		args = append(args, dbTime{filter.To})
	}

	query := "SELECT " + completionColumns + " FROM completions"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date, logged_at, id"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	return s.collectCompletions(ctx, query, args...)
}

func (s *Store) collectCompletions(ctx context.Context, query string, args ...any) ([]models.Completion, error) {
	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query completions: %w", err)
	}
	defer rows.Close()

	var completions []models.Completion
	for rows.Next() {
		c, err := scanCompletion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan completion: %w", err)
		}
		completions = append(completions, c)
	}
	return completions, rows.Err()
}

func (s *Store) DeleteCompletion(ctx context.Context, id uuid.UUID) error {
	res, err := s.exec(ctx, "DELETE FROM completions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete completion %s: %w", id, err)
	}
	return checkAffected(res, storage.KindCompletion, id)
}

func (s *Store) OrphanCompletions(ctx context.Context) ([]models.Completion, error) {
	return s.collectCompletions(ctx, `
		SELECT c.id, c.habit_id, c.date, c.logged_at, c.duration, c.completed
		FROM completions c
		LEFT JOIN habits h ON h.id = c.habit_id
		WHERE h.id IS NULL
		ORDER BY c.date, c.id`)
}
