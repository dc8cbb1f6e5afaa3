package models

// Group представляет категорию счетов, принадлежащую одному пользователю.
// Поле Photo может быть nil — это означает отсутствие фотографии;
// иначе оно содержит имя файла относительно каталога загрузок.
type Group struct {
	ID          int64   // Уникальный идентификатор группы
	Name        string  // Название группы
	Description string  // Описание (опционально)
	Photo       *string // Имя файла фотографии, nil если не задана
	UserID      int64   // Идентификатор пользователя-владельца
}

// GroupForm используется для приёма данных формы создания и
// редактирования группы. Файл фотографии обрабатывается отдельно.
type GroupForm struct {
	Name        string `validate:"required,max=50"`
	Description string `validate:"max=255"`
}
