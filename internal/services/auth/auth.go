// Package auth содержит бизнес-логику регистрации и входа пользователей.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/billkeeper/internal/lib/password"
	"github.com/magabrotheeeer/billkeeper/internal/lib/sl"
	"github.com/magabrotheeeer/billkeeper/internal/models"
	"github.com/magabrotheeeer/billkeeper/internal/rabbitmq"
	"github.com/magabrotheeeer/billkeeper/internal/storage/repository"
)

// ErrEmailTaken возвращается при попытке регистрации с занятым email.
var ErrEmailTaken = errors.New("email already registered")

// ErrInvalidCredentials возвращается при неверной паре email+пароль.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя и возвращает его ID.
	RegisterUser(ctx context.Context, user models.User) (int64, error)

	// GetUserByEmail возвращает пользователя по email или ErrNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// EventPublisher описывает публикацию аудит-событий.
type EventPublisher interface {
	Publish(event rabbitmq.Event) error
}

// AuthService отвечает за регистрацию и проверку учётных данных.
type AuthService struct {
	users  UserRepository
	events EventPublisher
	log    *slog.Logger
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, events EventPublisher, log *slog.Logger) *AuthService {
	return &AuthService{
		users:  users,
		events: events,
		log:    log,
	}
}

// Register создает нового пользователя с хэшированием пароля.
// Возвращает ErrEmailTaken, если email уже занят.
func (s *AuthService) Register(ctx context.Context, name, email, rawPassword string) (int64, error) {
	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return 0, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return 0, err
	}

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return 0, err
	}
	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
	}
	id, err := s.users.RegisterUser(ctx, user)
	if err != nil {
		return 0, err
	}
	s.publish(rabbitmq.Event{
		Action:     "user.registered",
		UserID:     id,
		OccurredAt: time.Now().UTC(),
	})
	return id, nil
}

// Login проверяет пару email+пароль и возвращает пользователя.
// Любое несовпадение выражается как ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (*models.User, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *AuthService) publish(event rabbitmq.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(event); err != nil {
		s.log.Warn("failed to publish audit event", slog.String("action", event.Action), sl.Err(err))
	}
}
