// Package jwt реализует генерацию и парсинг подписанных сессионных токенов.
//
// Токен хранится в браузерной cookie и содержит только случайный
// идентификатор сессии; сами данные сессии лежат на сервере.
package jwt

import (
	"time"
)

// Maker описывает интерфейс для генерации и парсинга сессионных токенов.
type Maker interface {
	// GenerateToken создает токен для идентификатора сессии.
	GenerateToken(sessionUID string) (string, error)
	// ParseToken возвращает *SessionClaims с идентификатором сессии.
	ParseToken(tokenStr string) (*SessionClaims, error)
}

// MakerImpl реализует интерфейс Maker с использованием секретного ключа
// и времени жизни токена (TTL).
type MakerImpl struct {
	secretKey string        // Секретный ключ для подписи токенов.
	tokenTTL  time.Duration // Время жизни токена.
}

// NewMaker создаёт новый экземпляр MakerImpl на основе секретного ключа и TTL.
func NewMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}
