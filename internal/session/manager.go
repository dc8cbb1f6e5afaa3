// Package session реализует серверные браузерные сессии.
//
// Cookie содержит только подписанный токен со случайным идентификатором
// сессии; сами данные (идентификатор пользователя и флеш-сообщения)
// хранятся на сервере в Redis. Сессия создаётся по требованию, поэтому
// флеш-сообщения работают и до входа пользователя.
package session

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	jwtlib "github.com/magabrotheeeer/billkeeper/internal/lib/jwt"
)

// Flash представляет одноразовое сообщение пользователю.
type Flash struct {
	Message  string `json:"message"`
	Category string `json:"category"` // "success" или "error"
}

// record — серверное содержимое сессии, сериализуемое в JSON.
type record struct {
	UserID  int64   `json:"user_id"`
	Flashes []Flash `json:"flashes,omitempty"`
}

// Store описывает методы серверного хранилища сессий.
// Сигнатуры совпадают с клиентом из internal/cache.
type Store interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Manager создаёт, находит и уничтожает сессии.
type Manager struct {
	store      Store
	maker      jwtlib.Maker
	cookieName string
	ttl        time.Duration
}

// NewManager создает новый Manager поверх хранилища и создателя токенов.
func NewManager(store Store, maker jwtlib.Maker, cookieName string, ttl time.Duration) *Manager {
	return &Manager{
		store:      store,
		maker:      maker,
		cookieName: cookieName,
		ttl:        ttl,
	}
}

// Session — загруженная сессия одного браузера.
type Session struct {
	uid string
	rec record
	m   *Manager
}

func (m *Manager) key(uid string) string {
	return "session:" + uid
}

// Lookup находит существующую сессию по cookie запроса.
// Возвращает false, если cookie нет, токен невалиден или запись истекла.
func (m *Manager) Lookup(r *http.Request) (*Session, bool) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return nil, false
	}
	claims, err := m.maker.ParseToken(cookie.Value)
	if err != nil {
		return nil, false
	}
	var rec record
	found, err := m.store.Get(m.key(claims.SessionUID), &rec)
	if err != nil || !found {
		return nil, false
	}
	return &Session{uid: claims.SessionUID, rec: rec, m: m}, true
}

// Ensure возвращает сессию запроса, создавая новую при необходимости.
// При создании выставляет cookie в ответ.
func (m *Manager) Ensure(w http.ResponseWriter, r *http.Request) (*Session, error) {
	const op = "session.Ensure"
	if s, ok := m.Lookup(r); ok {
		return s, nil
	}

	uid := uuid.New().String()
	s := &Session{uid: uid, m: m}
	if err := s.save(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	token, err := m.maker.GenerateToken(uid)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return s, nil
}

// Destroy удаляет серверную запись сессии и гасит cookie.
func (m *Manager) Destroy(w http.ResponseWriter, s *Session) error {
	const op = "session.Destroy"
	if err := m.store.Invalidate(m.key(s.uid)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// UserID возвращает идентификатор вошедшего пользователя, 0 — аноним.
func (s *Session) UserID() int64 {
	return s.rec.UserID
}

// SetUserID привязывает пользователя к сессии.
func (s *Session) SetUserID(id int64) error {
	s.rec.UserID = id
	return s.save()
}

// AddFlash добавляет одноразовое сообщение в сессию.
func (s *Session) AddFlash(message, category string) error {
	s.rec.Flashes = append(s.rec.Flashes, Flash{Message: message, Category: category})
	return s.save()
}

// PopFlashes забирает накопленные сообщения, очищая их в сессии.
func (s *Session) PopFlashes() ([]Flash, error) {
	flashes := s.rec.Flashes
	if len(flashes) == 0 {
		return nil, nil
	}
	s.rec.Flashes = nil
	if err := s.save(); err != nil {
		return nil, err
	}
	return flashes, nil
}

func (s *Session) save() error {
	return s.m.store.Set(s.m.key(s.uid), s.rec, s.m.ttl)
}
