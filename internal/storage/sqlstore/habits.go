package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/eliasosarumwense/Habital-sub003/internal/models"
	"github.com/eliasosarumwense/Habital-sub003/internal/storage"
)

const habitColumns = `id, name, description, icon, color, is_bad_habit, is_archived,
	sort_order, start_date, intensity_level, last_completion_date, list_id`

func (s *Store) SaveHabit(ctx context.Context, h models.Habit) error {
	_, err := s.exec(ctx, `
		INSERT INTO habits (`+habitColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			icon = excluded.icon,
			color = excluded.color,
			is_bad_habit = excluded.is_bad_habit,
			is_archived = excluded.is_archived,
			sort_order = excluded.sort_order,
			start_date = excluded.start_date,
			intensity_level = excluded.intensity_level,
			last_completion_date = excluded.last_completion_date,
			list_id = excluded.list_id`,
		h.ID, h.Name, h.Description, h.Icon, h.Color, h.IsBadHabit, h.IsArchived,
		h.Order, dbTime{h.StartDate}, h.IntensityLevel, newNullTime(h.LastCompletionDate), h.ListID)
	if err != nil {
		return fmt.Errorf("failed to save habit %s: %w", h.ID, err)
	}
	return nil
}

func scanHabit(row interface{ Scan(...any) error }) (models.Habit, error) {
	var (
		h         models.Habit
		startDate dbTime
		last      nullTime
	)
	err := row.Scan(&h.ID, &h.Name, &h.Description, &h.Icon, &h.Color, &h.IsBadHabit, &h.IsArchived,
		&h.Order, &startDate, &h.IntensityLevel, &last, &h.ListID)
	if err != nil {
		return models.Habit{}, err
	}
	h.StartDate = startDate.Time
	h.LastCompletionDate = last.Ptr()
	return h, nil
}

func (s *Store) GetHabit(ctx context.Context, id uuid.UUID) (models.Habit, error) {
	h, err := scanHabit(s.queryRow(ctx, "SELECT "+habitColumns+" FROM habits WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Habit{}, notFound(storage.KindHabit, id)
	}
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to get habit %s: %w", id, err)
	}
	if err := s.loadChildren(ctx, &h, true, true); err != nil {
		return models.Habit{}, err
	}
	return h, nil
}

func (s *Store) Habits(ctx context.Context, filter storage.HabitFilter) ([]models.Habit, error) {
	var (
		where []string
		args  []any
	)
	switch {
	case filter.Standalone:
		where = append(where, "list_id IS NULL")
	case filter.ListID.Valid:
		where = append(where, "list_id = ?")
		args = append(args, filter.ListID.UUID)
	}
	if !filter.IncludeArchived {
		where = append(where, "is_archived = ?")
		args = append(args, false)
	}

	query := "SELECT " + habitColumns + " FROM habits"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY sort_order, name, id"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query habits: %w", err)
	}

	var habits []models.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan habit: %w", err)
		}
		habits = append(habits, h)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if filter.WithPatterns || filter.WithCompletions {
		for i := range habits {
			if err := s.loadChildren(ctx, &habits[i], filter.WithPatterns, filter.WithCompletions); err != nil {
				return nil, err
			}
		}
	}
	return habits, nil
}

func (s *Store) loadChildren(ctx context.Context, h *models.Habit, patterns, completions bool) error {
	if patterns {
		p, err := s.Patterns(ctx, h.ID)
		if err != nil {
			return err
		}
		h.Patterns = p
	}
	if completions {
		c, err := s.Completions(ctx, storage.CompletionFilter{HabitID: uuid.NullUUID{UUID: h.ID, Valid: true}})
		if err != nil {
			return err
		}
		h.Completions = c
	}
	return nil
}

func (s *Store) DeleteHabit(ctx context.Context, id uuid.UUID) error {
	return s.InTx(ctx, func(tx storage.Repository) error {
		ts := tx.(*Store)
		if _, err := ts.exec(ctx, "DELETE FROM completions WHERE habit_id = ?", id); err != nil {
			return fmt.Errorf("failed to delete completions of habit %s: %w", id, err)
		}
		if _, err := ts.exec(ctx, "DELETE FROM repeat_patterns WHERE habit_id = ?", id); err != nil {
			return fmt.Errorf("failed to delete patterns of habit %s: %w", id, err)
		}
		res, err := ts.exec(ctx, "DELETE FROM habits WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("failed to delete habit %s: %w", id, err)
		}
		return checkAffected(res, storage.KindHabit, id)
	})
}
