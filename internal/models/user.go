// Package models содержит доменные структуры приложения — пользователей,
// группы и счета — и вспомогательные типы для приёма данных из HTML-форм.
package models

// User представляет зарегистрированного пользователя приложения.
type User struct {
	ID           int64  // Уникальный идентификатор пользователя
	Name         string // Отображаемое имя (уникальность не требуется)
	Email        string // Электронная почта (уникальная)
	PasswordHash string // Хэш пароля пользователя
}

// RegisterForm используется для приёма данных формы регистрации,
// прежде чем конвертировать их в User. Совпадение паролей проверяется
// отдельно в обработчике.
type RegisterForm struct {
	Name     string `validate:"required,max=50"`
	Email    string `validate:"required,email,max=50"`
	Password string `validate:"required"`
	Confirm  string `validate:"required"`
}

// LoginForm используется для приёма данных формы входа.
type LoginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}
