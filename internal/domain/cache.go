package domain

import (
	"context"
	"net/url"
)

// Ключи кеша — единое место, чтобы не расползались по коду.
//
// Все ключи коллекций пользователя T начинаются с "user-tasks:{T}" —
// это позволяет сбрасывать их одним pattern-вызовом.
// Ключ задачи глобальный: id уникален, изоляцию владельца обеспечивает БД.

func CacheKeyUserTasks(user UserID) string { return "user-tasks:" + user.String() }

func CacheKeyUserTasksFiltered(user UserID, f TaskFilter) string {
	status := "all"
	if f.Status != "" {
		status = string(f.Status)
	}
	search := "none"
	if f.Search != "" {
		// экранируем разделитель ":" в поисковой строке,
		// иначе два разных фильтра могут склеиться в один ключ
		search = url.QueryEscape(f.Search)
	}
	return CacheKeyUserTasks(user) + ":status:" + status + ":search:" + search
}

// Паттерн инвалидации всех списков пользователя (glob)
func CacheKeyUserTasksPattern(user UserID) string { return CacheKeyUserTasks(user) + "*" }

func CacheKeyTask(id TaskID) string { return "task:" + id.String() }

func CacheKeyTokenJTI(jti string) string { return "jti:" + jti }

// Простой k/v интерфейс. Реализация — Redis.
// Get возвращает (nil, nil) на промахе: отсутствие ключа — не ошибка.
// Транспортные сбои оборачиваются в ErrCacheUnavailable.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte, ttlMs int) error
	Del(ctx context.Context, keys ...string) error
	// Удаляет все ключи по glob-паттерну; ноль совпадений — no-op
	DelPattern(ctx context.Context, pattern string) error
	Exists(ctx context.Context, key string) (bool, error)
	Ping(context.Context) error
	Close()
}
