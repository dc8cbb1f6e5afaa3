package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/billkeeper/internal/models"
)

// CreateGroup вставляет новую группу и возвращает её ID.
func (s *Storage) CreateGroup(ctx context.Context, group models.Group) (int64, error) {
	const op = "storage.CreateGroup"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO groups (name, description, photo, user_id)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	var newID int64
	err := s.DB.QueryRowContext(ctx, query,
		group.Name, group.Description, group.Photo, group.UserID).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetGroup возвращает данные группы по её ID.
func (s *Storage) GetGroup(ctx context.Context, id int64) (*models.Group, error) {
	const op = "storage.GetGroup"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, COALESCE(description, ''), photo, user_id
			  FROM groups WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)

	var result models.Group
	var photo sql.NullString
	if err := row.Scan(&result.ID, &result.Name, &result.Description,
		&photo, &result.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if photo.Valid {
		result.Photo = &photo.String
	}
	return &result, nil
}

// ListGroupsByUser возвращает список всех групп пользователя.
func (s *Storage) ListGroupsByUser(ctx context.Context, userID int64) ([]*models.Group, error) {
	const op = "storage.ListGroupsByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, COALESCE(description, ''), photo, user_id
			  FROM groups
			  WHERE user_id = $1
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Group
	for rows.Next() {
		var item models.Group
		var photo sql.NullString
		if err := rows.Scan(&item.ID, &item.Name, &item.Description,
			&photo, &item.UserID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if photo.Valid {
			item.Photo = &photo.String
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateGroup обновляет имя, описание и фотографию группы по её ID
// и возвращает количество изменённых строк.
func (s *Storage) UpdateGroup(ctx context.Context, group models.Group) (int64, error) {
	const op = "storage.UpdateGroup"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE groups
			  SET name = $1, description = $2, photo = $3
			  WHERE id = $4`
	result, err := s.DB.ExecContext(ctx, query,
		group.Name, group.Description, group.Photo, group.ID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected, nil
}

// DeleteGroup удаляет группу по ID и возвращает количество удалённых строк.
// Счета группы удаляются каскадно на уровне базы данных.
func (s *Storage) DeleteGroup(ctx context.Context, id int64) (int64, error) {
	const op = "storage.DeleteGroup"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM groups WHERE id = $1`
	result, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected, nil
}

// SearchGroupsByName ищет группы по подстроке имени без учёта регистра
// среди всех групп. Пустая подстрока соответствует каждой группе.
func (s *Storage) SearchGroupsByName(ctx context.Context, query string) ([]*models.Group, error) {
	const op = "storage.SearchGroupsByName"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	sqlQuery := `SELECT id, name, COALESCE(description, ''), photo, user_id
			  FROM groups
			  WHERE name ILIKE '%' || $1 || '%'
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, sqlQuery, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Group
	for rows.Next() {
		var item models.Group
		var photo sql.NullString
		if err := rows.Scan(&item.ID, &item.Name, &item.Description,
			&photo, &item.UserID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if photo.Valid {
			item.Photo = &photo.String
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
