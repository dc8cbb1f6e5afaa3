// Package group содержит бизнес-логику для управления группами счетов,
// включая кеширование чтения и публикацию аудит-событий.
package group

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/billkeeper/internal/lib/sl"
	"github.com/magabrotheeeer/billkeeper/internal/models"
	"github.com/magabrotheeeer/billkeeper/internal/rabbitmq"
	"github.com/magabrotheeeer/billkeeper/internal/storage/repository"
)

// GroupRepository определяет методы для работы с группами в хранилище.
type GroupRepository interface {
	// CreateGroup добавляет новую группу и возвращает её ID.
	CreateGroup(ctx context.Context, group models.Group) (int64, error)
	// GetGroup возвращает группу по ID или ErrNotFound.
	GetGroup(ctx context.Context, id int64) (*models.Group, error)
	// ListGroupsByUser возвращает список групп пользователя.
	ListGroupsByUser(ctx context.Context, userID int64) ([]*models.Group, error)
	// UpdateGroup обновляет группу и возвращает количество изменённых строк.
	UpdateGroup(ctx context.Context, group models.Group) (int64, error)
	// DeleteGroup удаляет группу и возвращает количество удалённых строк.
	DeleteGroup(ctx context.Context, id int64) (int64, error)
	// SearchGroupsByName ищет группы по подстроке имени среди всех групп.
	SearchGroupsByName(ctx context.Context, query string) ([]*models.Group, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// EventPublisher описывает публикацию аудит-событий.
type EventPublisher interface {
	Publish(event rabbitmq.Event) error
}

// GroupService реализует бизнес-логику работы с группами.
type GroupService struct {
	repo   GroupRepository
	cache  Cache
	events EventPublisher
	log    *slog.Logger
}

// NewGroupService создает новый экземпляр GroupService.
func NewGroupService(repo GroupRepository, cache Cache, events EventPublisher, log *slog.Logger) *GroupService {
	return &GroupService{
		repo:   repo,
		cache:  cache,
		events: events,
		log:    log,
	}
}

func cacheKey(id int64) string {
	return fmt.Sprintf("group:%d", id)
}

// Create создает новую группу для пользователя. Фотография (если есть)
// уже сохранена вызывающей стороной и передается именем файла.
func (s *GroupService) Create(ctx context.Context, userID int64, form models.GroupForm, photo *string) (int64, error) {
	entry := models.Group{
		Name:        form.Name,
		Description: form.Description,
		Photo:       photo,
		UserID:      userID,
	}
	id, err := s.repo.CreateGroup(ctx, entry)
	if err != nil {
		return 0, err
	}
	s.log.Info("created new group", slog.Int64("id", id))

	entry.ID = id
	if err := s.cache.Set(cacheKey(id), entry, time.Hour); err != nil {
		s.log.Warn("failed to cache group", slog.String("key", cacheKey(id)), sl.Err(err))
	}
	s.publish(rabbitmq.Event{
		Action:     "group.created",
		UserID:     userID,
		EntityID:   id,
		EntityName: entry.Name,
		OccurredAt: time.Now().UTC(),
	})
	return id, nil
}

// Get возвращает группу по ID, используя кеш или репозиторий.
func (s *GroupService) Get(ctx context.Context, id int64) (*models.Group, error) {
	var result *models.Group
	found, err := s.cache.Get(cacheKey(id), &result)
	if err != nil {
		s.log.Warn("failed to read group from cache", slog.String("key", cacheKey(id)), sl.Err(err))
	}
	if found && result != nil {
		return result, nil
	}
	result, err = s.repo.GetGroup(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(cacheKey(id), result, time.Hour); err != nil {
		s.log.Warn("failed to cache group", slog.String("key", cacheKey(id)), sl.Err(err))
	}
	return result, nil
}

// ListForUser возвращает список групп пользователя.
func (s *GroupService) ListForUser(ctx context.Context, userID int64) ([]*models.Group, error) {
	return s.repo.ListGroupsByUser(ctx, userID)
}

// Update перезаписывает имя и описание группы; фотография меняется
// только если передано новое имя файла. Возвращает ErrNotFound,
// если группа отсутствует.
func (s *GroupService) Update(ctx context.Context, id int64, form models.GroupForm, newPhoto *string) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	entry := models.Group{
		ID:          id,
		Name:        form.Name,
		Description: form.Description,
		Photo:       existing.Photo,
		UserID:      existing.UserID,
	}
	if newPhoto != nil {
		entry.Photo = newPhoto
	}
	rows, err := s.repo.UpdateGroup(ctx, entry)
	if err != nil {
		return err
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	s.log.Info("updated group", slog.Int64("id", id))

	if err := s.cache.Set(cacheKey(id), entry, time.Hour); err != nil {
		s.log.Warn("failed to cache group", slog.String("key", cacheKey(id)), sl.Err(err))
	}
	s.publish(rabbitmq.Event{
		Action:     "group.updated",
		UserID:     entry.UserID,
		EntityID:   id,
		EntityName: entry.Name,
		OccurredAt: time.Now().UTC(),
	})
	return nil
}

// Delete удаляет группу по ID (счета удаляются каскадно в базе)
// и инвалидирует кеш. Возвращает ErrNotFound, если группы нет.
func (s *GroupService) Delete(ctx context.Context, id int64) error {
	group, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.cache.Invalidate(cacheKey(id)); err != nil {
		s.log.Warn("failed to remove group from cache", slog.String("key", cacheKey(id)), sl.Err(err))
	}

	rows, err := s.repo.DeleteGroup(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	s.log.Info("deleted group", slog.Int64("id", id))

	s.publish(rabbitmq.Event{
		Action:     "group.deleted",
		UserID:     group.UserID,
		EntityID:   id,
		EntityName: group.Name,
		OccurredAt: time.Now().UTC(),
	})
	return nil
}

// Search ищет группы по подстроке имени без учёта регистра среди всех
// групп. Пустой запрос соответствует каждой группе.
func (s *GroupService) Search(ctx context.Context, query string) ([]*models.Group, error) {
	return s.repo.SearchGroupsByName(ctx, query)
}

func (s *GroupService) publish(event rabbitmq.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(event); err != nil {
		s.log.Warn("failed to publish audit event", slog.String("action", event.Action), sl.Err(err))
	}
}
