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

const listColumns = "id, name, color, icon, sort_order"

func (s *Store) SaveList(ctx context.Context, list models.HabitList) error {
	_, err := s.exec(ctx, `
		INSERT INTO habit_lists (id, name, color, icon, sort_order)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			color = excluded.color,
			icon = excluded.icon,
			sort_order = excluded.sort_order`,
		list.ID, list.Name, list.Color, list.Icon, list.Order)
	if err != nil {
		return fmt.Errorf("failed to save list %s: %w", list.ID, err)
	}
	return nil
}

func scanList(row interface{ Scan(...any) error }) (models.HabitList, error) {
	var l models.HabitList
	err := row.Scan(&l.ID, &l.Name, &l.Color, &l.Icon, &l.Order)
	return l, err
}

func (s *Store) GetList(ctx context.Context, id uuid.UUID) (models.HabitList, error) {
	l, err := scanList(s.queryRow(ctx, "SELECT "+listColumns+" FROM habit_lists WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.HabitList{}, notFound(storage.KindList, id)
	}
	if err != nil {
		return models.HabitList{}, fmt.Errorf("failed to get list %s: %w", id, err)
	}
	return l, nil
}

func (s *Store) Lists(ctx context.Context) ([]models.HabitList, error) {
	rows, err := s.query(ctx, "SELECT "+listColumns+" FROM habit_lists ORDER BY sort_order, name")
	if err != nil {
		return nil, fmt.Errorf("failed to query lists: %w", err)
	}
	defer rows.Close()

	var lists []models.HabitList
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan list: %w", err)
		}
		lists = append(lists, l)
	}
	return lists, rows.Err()
}

func (s *Store) DeleteList(ctx context.Context, id uuid.UUID) error {
	return s.InTx(ctx, func(tx storage.Repository) error {
		ts := tx.(*Store)
		if _, err := ts.exec(ctx, "UPDATE habits SET list_id = NULL WHERE list_id = ?", id); err != nil {
			return fmt.Errorf("failed to detach habits from list %s: %w", id, err)
		}
		res, err := ts.exec(ctx, "DELETE FROM habit_lists WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("failed to delete list %s: %w", id, err)
		}
		return checkAffected(res, storage.KindList, id)
	})
}
