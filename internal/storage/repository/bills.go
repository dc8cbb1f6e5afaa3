package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/billkeeper/internal/models"
)

// CreateBill вставляет новый счёт и возвращает его ID.
func (s *Storage) CreateBill(ctx context.Context, bill models.Bill) (int64, error) {
	const op = "storage.CreateBill"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO bills (name, date, description, group_id)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	var newID int64
	err := s.DB.QueryRowContext(ctx, query,
		bill.Name, bill.Date, bill.Description, bill.GroupID).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetBill возвращает счёт по паре (group_id, bill_id).
func (s *Storage) GetBill(ctx context.Context, groupID, billID int64) (*models.Bill, error) {
	const op = "storage.GetBill"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, date, COALESCE(description, ''), group_id
			  FROM bills
			  WHERE id = $1 AND group_id = $2`
	row := s.DB.QueryRowContext(ctx, query, billID, groupID)

	var result models.Bill
	if err := row.Scan(&result.ID, &result.Name, &result.Date,
		&result.Description, &result.GroupID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

// ListBillsByGroup возвращает список всех счетов группы.
func (s *Storage) ListBillsByGroup(ctx context.Context, groupID int64) ([]*models.Bill, error) {
	const op = "storage.ListBillsByGroup"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, date, COALESCE(description, ''), group_id
			  FROM bills
			  WHERE group_id = $1
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Bill
	for rows.Next() {
		var item models.Bill
		if err := rows.Scan(&item.ID, &item.Name, &item.Date,
			&item.Description, &item.GroupID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateBill обновляет имя, дату и описание счёта по паре (group_id, bill_id)
// и возвращает количество изменённых строк.
func (s *Storage) UpdateBill(ctx context.Context, bill models.Bill) (int64, error) {
	const op = "storage.UpdateBill"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE bills
			  SET name = $1, date = $2, description = $3
			  WHERE id = $4 AND group_id = $5`
	result, err := s.DB.ExecContext(ctx, query,
		bill.Name, bill.Date, bill.Description, bill.ID, bill.GroupID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected, nil
}

// DeleteBill удаляет счёт по паре (group_id, bill_id) и возвращает
// количество удалённых строк.
func (s *Storage) DeleteBill(ctx context.Context, groupID, billID int64) (int64, error) {
	const op = "storage.DeleteBill"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM bills WHERE id = $1 AND group_id = $2`
	result, err := s.DB.ExecContext(ctx, query, billID, groupID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected, nil
}
