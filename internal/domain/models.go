package domain

import (
	"time"

	"github.com/google/uuid"
)

// Базовые идентификаторы
type UserID = uuid.UUID
type TaskID = uuid.UUID

// Статус задачи — конечный набор значений
type TaskStatus string

const (
	StatusOpen       TaskStatus = "OPEN"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusDone       TaskStatus = "DONE"
)

// ValidStatus проверяет, что статус входит в перечень
func ValidStatus(s TaskStatus) bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Пользователь (владелец кэш-партиции)
type User struct {
	ID        UserID    `json:"id"`
	Login     string    `json:"login"`
	PassHash  []byte    `json:"-"` // никогда не отдаём наружу
	CreatedAt time.Time `json:"created_at"`
}

// Задача принадлежит ровно одному пользователю
type Task struct {
	ID          TaskID     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	UserID      UserID     `json:"user_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Фильтр списка задач: оба поля опциональны.
// Используется только для запроса к БД и построения ключа кэша.
type TaskFilter struct {
	Status TaskStatus // "" — без фильтра по статусу
	Search string     // "" — без текстового поиска
}

// IsZero — фильтр не задан вовсе (запрос «все задачи»)
func (f TaskFilter) IsZero() bool { return f.Status == "" && f.Search == "" }
