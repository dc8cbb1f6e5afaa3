// Package bill содержит бизнес-логику для управления счетами внутри групп.
package bill

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/billkeeper/internal/lib/sl"
	"github.com/magabrotheeeer/billkeeper/internal/models"
	"github.com/magabrotheeeer/billkeeper/internal/rabbitmq"
	"github.com/magabrotheeeer/billkeeper/internal/storage/repository"
)

// DateLayout — формат даты, принимаемый формами счетов.
const DateLayout = "2006-01-02"

// ErrInvalidDate возвращается, когда дата формы не соответствует DateLayout.
var ErrInvalidDate = errors.New("invalid bill date")

// BillRepository определяет методы для работы со счетами в хранилище.
type BillRepository interface {
	// CreateBill добавляет новый счет и возвращает его ID.
	CreateBill(ctx context.Context, bill models.Bill) (int64, error)
	// GetBill возвращает счет по паре group_id/id или ErrNotFound.
	GetBill(ctx context.Context, groupID, billID int64) (*models.Bill, error)
	// ListBillsByGroup возвращает список счетов группы.
	ListBillsByGroup(ctx context.Context, groupID int64) ([]*models.Bill, error)
	// UpdateBill обновляет счет и возвращает количество изменённых строк.
	UpdateBill(ctx context.Context, bill models.Bill) (int64, error)
	// DeleteBill удаляет счет и возвращает количество удалённых строк.
	DeleteBill(ctx context.Context, groupID, billID int64) (int64, error)
}

// EventPublisher описывает публикацию аудит-событий.
type EventPublisher interface {
	Publish(event rabbitmq.Event) error
}

// BillService реализует бизнес-логику работы со счетами.
type BillService struct {
	repo   BillRepository
	events EventPublisher
	log    *slog.Logger
}

// NewBillService создает новый экземпляр BillService.
func NewBillService(repo BillRepository, events EventPublisher, log *slog.Logger) *BillService {
	return &BillService{
		repo:   repo,
		events: events,
		log:    log,
	}
}

// Create создает новый счет в группе. Возвращает ErrInvalidDate,
// если дата формы не разбирается по DateLayout.
func (s *BillService) Create(ctx context.Context, userID, groupID int64, form models.BillForm) (int64, error) {
	date, err := time.Parse(DateLayout, form.Date)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDate, form.Date)
	}
	entry := models.Bill{
		Name:        form.Name,
		Date:        date,
		Description: form.Description,
		GroupID:     groupID,
	}
	id, err := s.repo.CreateBill(ctx, entry)
	if err != nil {
		return 0, err
	}
	s.log.Info("created new bill", slog.Int64("id", id), slog.Int64("group_id", groupID))

	s.publish(rabbitmq.Event{
		Action:     "bill.created",
		UserID:     userID,
		EntityID:   id,
		EntityName: entry.Name,
		OccurredAt: time.Now().UTC(),
	})
	return id, nil
}

// Get возвращает счет по паре group_id/id.
func (s *BillService) Get(ctx context.Context, groupID, billID int64) (*models.Bill, error) {
	return s.repo.GetBill(ctx, groupID, billID)
}

// ListForGroup возвращает список счетов группы.
func (s *BillService) ListForGroup(ctx context.Context, groupID int64) ([]*models.Bill, error) {
	return s.repo.ListBillsByGroup(ctx, groupID)
}

// Update перезаписывает имя, дату и описание счета. Возвращает
// ErrInvalidDate при неразборной дате и ErrNotFound, если счет
// не принадлежит указанной группе.
func (s *BillService) Update(ctx context.Context, userID, groupID, billID int64, form models.BillForm) error {
	date, err := time.Parse(DateLayout, form.Date)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, form.Date)
	}
	entry := models.Bill{
		ID:          billID,
		Name:        form.Name,
		Date:        date,
		Description: form.Description,
		GroupID:     groupID,
	}
	rows, err := s.repo.UpdateBill(ctx, entry)
	if err != nil {
		return err
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	s.log.Info("updated bill", slog.Int64("id", billID), slog.Int64("group_id", groupID))

	s.publish(rabbitmq.Event{
		Action:     "bill.updated",
		UserID:     userID,
		EntityID:   billID,
		EntityName: entry.Name,
		OccurredAt: time.Now().UTC(),
	})
	return nil
}

// Delete удаляет счет. Возвращает сам счет, чтобы вызывающая сторона
// знала его группу, и ErrNotFound, если счета нет.
func (s *BillService) Delete(ctx context.Context, userID, groupID, billID int64) (*models.Bill, error) {
	bill, err := s.repo.GetBill(ctx, groupID, billID)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.DeleteBill(ctx, groupID, billID)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, repository.ErrNotFound
	}
	s.log.Info("deleted bill", slog.Int64("id", billID), slog.Int64("group_id", groupID))

	s.publish(rabbitmq.Event{
		Action:     "bill.deleted",
		UserID:     userID,
		EntityID:   billID,
		EntityName: bill.Name,
		OccurredAt: time.Now().UTC(),
	})
	return bill, nil
}

func (s *BillService) publish(event rabbitmq.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(event); err != nil {
		s.log.Warn("failed to publish audit event", slog.String("action", event.Action), sl.Err(err))
	}
}
