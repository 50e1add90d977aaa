package domain

import "context"

// Репозиторий задач. Все операции ограничены владельцем:
// чужая задача неотличима от несуществующей (ErrNotFound).
type TasksRepo interface {
	CreateTask(ctx context.Context, title, description string, owner UserID) (Task, error)
	TaskByID(ctx context.Context, id TaskID, owner UserID) (Task, error)
	// Список без фильтра, новые сверху
	TasksList(ctx context.Context, owner UserID) ([]Task, error)
	// Фильтр: равенство по статусу и/или подстрока в title/description
	TasksFiltered(ctx context.Context, owner UserID, f TaskFilter) ([]Task, error)
	// Возвращает последнее состояние удалённой задачи
	DeleteTask(ctx context.Context, id TaskID, owner UserID) (Task, error)
	UpdateTaskStatus(ctx context.Context, id TaskID, owner UserID, status TaskStatus) (Task, error)
}

type UsersRepo interface {
	Close()
	Ping(context.Context) error
	CreateUser(ctx context.Context, login string, passHash []byte) (User, error)
	UserByLogin(ctx context.Context, login string) (User, error)
	UserByID(ctx context.Context, id UserID) (User, error)
}
