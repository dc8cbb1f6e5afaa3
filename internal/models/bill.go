package models

import "time"

// Bill представляет датированную запись счёта внутри группы.
type Bill struct {
	ID          int64     // Уникальный идентификатор счёта
	Name        string    // Название счёта
	Date        time.Time // Календарная дата счёта
	Description string    // Описание (опционально)
	GroupID     int64     // Идентификатор группы-владельца
}

// BillForm используется для приёма данных формы создания и
// редактирования счёта. Дата приходит строкой; её формат проверяет
// сервис счетов при разборе, а не тег валидации.
type BillForm struct {
	Name        string `validate:"required,max=50"`
	Date        string `validate:"required"`
	Description string `validate:"max=255"`
}
