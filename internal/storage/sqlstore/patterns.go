package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/eliasosarumwense/Habital-sub003/internal/models"
	"github.com/eliasosarumwense/Habital-sub003/internal/storage"
)

const patternColumns = `id, habit_id, effective_from, creation_date, follow_up, repeats_per_day,
	goal_type, goal_pattern, goal_interval, goal_mask`

func (s *Store) SavePattern(ctx context.Context, p models.RepeatPattern) error {
	goal, err := encodeGoal(p.Goal)
	if err != nil {
		return fmt.Errorf("failed to save pattern %s: %w", p.ID, err)
	}

	_, err = s.exec(ctx, `
		INSERT INTO repeat_patterns (`+patternColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			habit_id = excluded.habit_id,
			effective_from = excluded.effective_from,
			creation_date = excluded.creation_date,
			follow_up = excluded.follow_up,
			repeats_per_day = excluded.repeats_per_day,
			goal_type = excluded.goal_type,
			goal_pattern = excluded.goal_pattern,
			goal_interval = excluded.goal_interval,
			goal_mask = excluded.goal_mask`,
		p.ID, p.HabitID, dbTime{p.EffectiveFrom}, dbTime{p.CreationDate}, p.FollowUp, p.RepeatsPerDay,
		goal.Type, goal.Pattern, goal.Interval, goal.Mask)
	if err != nil {
		return fmt.Errorf("failed to save pattern %s: %w", p.ID, err)
	}
	return nil
}

func scanPattern(row interface{ Scan(...any) error }) (models.RepeatPattern, error) {
	var (
		p               models.RepeatPattern
		effective, made dbTime
		goal            goalColumns
	)
	err := row.Scan(&p.ID, &p.HabitID, &effective, &made, &p.FollowUp, &p.RepeatsPerDay,
		&goal.Type, &goal.Pattern, &goal.Interval, &goal.Mask)
	if err != nil {
		return models.RepeatPattern{}, err
	}
	p.EffectiveFrom = effective.Time
	p.CreationDate = made.Time
	p.Goal, err = decodeGoal(goal)
	if err != nil {
		return models.RepeatPattern{}, fmt.Errorf("pattern %s: %w", p.ID, err)
	}
	return p, nil
}

func (s *Store) GetPattern(ctx context.Context, id uuid.UUID) (models.RepeatPattern, error) {
	p, err := scanPattern(s.queryRow(ctx, "SELECT "+patternColumns+" FROM repeat_patterns WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.RepeatPattern{}, notFound(storage.KindPattern, id)
	}
	if err != nil {
		return models.RepeatPattern{}, fmt.Errorf("failed to get pattern %s: %w", id, err)
	}
	return p, nil
}

func (s *Store) Patterns(ctx context.Context, habitID uuid.UUID) ([]models.RepeatPattern, error) {
	rows, err := s.query(ctx, "SELECT "+patternColumns+` FROM repeat_patterns
		WHERE habit_id = ? ORDER BY effective_from DESC, creation_date DESC`, habitID)
	if err != nil {
		return nil, fmt.Errorf("failed to query patterns of habit %s: %w", habitID, err)
	}
	defer rows.Close()

	var patterns []models.RepeatPattern
	for rows.Next() {
		p, err := scanPattern(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pattern: %w", err)
		}
		patterns = append(patterns, p)
	}
	return patterns, rows.Err()
}

func (s *Store) DeletePattern(ctx context.Context, id uuid.UUID) error {
	res, err := s.exec(ctx, "DELETE FROM repeat_patterns WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete pattern %s: %w", id, err)
	}
	return checkAffected(res, storage.KindPattern, id)
}
