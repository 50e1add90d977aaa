package tasks

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/EgorLis/task-manager/internal/domain"
)

// Service — оркестратор над репозиторием задач: cache-aside на чтениях,
// инвалидация по ключу и паттерну на записях, публикация событий после
// мутаций. Сбои кэша и шины поглощаются здесь: они стоят латентности,
// но не корректности — источник истины всегда БД.

const DefaultTTLms = 300000 // 5 минут

type Config struct {
	TTLms        int           // TTL кэш-записей, мс
	CacheTimeout time.Duration // бюджет на один вызов кэша
	BusTimeout   time.Duration // бюджет на publish
}

type Service struct {
	log   *log.Logger
	repo  domain.TasksRepo
	cache domain.Cache
	bus   domain.Bus

	ttlMs        int
	cacheTimeout time.Duration
	busTimeout   time.Duration
}

func NewService(logger *log.Logger, repo domain.TasksRepo, cache domain.Cache, bus domain.Bus, cfg Config) *Service {
	if cfg.TTLms <= 0 {
		cfg.TTLms = DefaultTTLms
	}
	if cfg.CacheTimeout <= 0 {
		cfg.CacheTimeout = 2 * time.Second
	}
	if cfg.BusTimeout <= 0 {
		cfg.BusTimeout = 2 * time.Second
	}
	return &Service{
		log:          logger,
		repo:         repo,
		cache:        cache,
		bus:          bus,
		ttlMs:        cfg.TTLms,
		cacheTimeout: cfg.CacheTimeout,
		busTimeout:   cfg.BusTimeout,
	}
}

// ---- Чтения (cache-aside) ----

func (s *Service) GetAllTasks(ctx context.Context, user domain.User) ([]domain.Task, error) {
	key := domain.CacheKeyUserTasks(user.ID)
	return s.listThrough(ctx, key, func() ([]domain.Task, error) {
		return s.repo.TasksList(ctx, user.ID)
	})
}

func (s *Service) GetTasksWithFilters(ctx context.Context, f domain.TaskFilter, user domain.User) ([]domain.Task, error) {
	key := domain.CacheKeyUserTasksFiltered(user.ID, f)
	return s.listThrough(ctx, key, func() ([]domain.Task, error) {
		return s.repo.TasksFiltered(ctx, user.ID, f)
	})
}

func (s *Service) GetTaskByID(ctx context.Context, id domain.TaskID, user domain.User) (domain.Task, error) {
	key := domain.CacheKeyTask(id)

	if b := s.cacheGet(ctx, key); b != nil {
		var t domain.Task
		if err := json.Unmarshal(b, &t); err == nil {
			return t, nil
		}
		s.log.Printf("cache %q: bad payload, fallback to db", key)
	}

	t, err := s.repo.TaskByID(ctx, id, user.ID)
	if err != nil {
		// NotFound не кэшируем и отдаём как есть
		return domain.Task{}, err
	}

	s.cacheSet(ctx, key, t)
	return t, nil
}

// listThrough: общая форма cache-aside для коллекций.
// Пустой результат — валидный и тоже кэшируется: иначе пользователь
// без задач долбил бы БД на каждом чтении.
func (s *Service) listThrough(ctx context.Context, key string, fetch func() ([]domain.Task, error)) ([]domain.Task, error) {
	if b := s.cacheGet(ctx, key); b != nil {
		var cached []domain.Task
		if err := json.Unmarshal(b, &cached); err == nil {
			return cached, nil
		}
		s.log.Printf("cache %q: bad payload, fallback to db", key)
	}

	res, err := fetch()
	if err != nil {
		return nil, err
	}
	if res == nil {
		res = []domain.Task{}
	}

	s.cacheSet(ctx, key, res)
	return res, nil
}

// ---- Записи (write-through-invalidate) ----

// CreateTask: сперва коммит в БД, затем сброс всех списков владельца,
// затем событие. Исход инвалидации/публикации на результат не влияет.
func (s *Service) CreateTask(ctx context.Context, title, description string, user domain.User) (domain.Task, error) {
	t, err := s.repo.CreateTask(ctx, title, description, user.ID)
	if err != nil {
		return domain.Task{}, err
	}

	s.invalidateLists(ctx, user.ID)
	s.publish(ctx, domain.NewTaskCreated(t))
	return t, nil
}

func (s *Service) DeleteTaskByID(ctx context.Context, id domain.TaskID, user domain.User) (domain.Task, error) {
	t, err := s.repo.DeleteTask(ctx, id, user.ID)
	if err != nil {
		return domain.Task{}, err
	}

	s.invalidateTask(ctx, id)
	s.invalidateLists(ctx, user.ID)
	return t, nil
}

func (s *Service) UpdateTaskStatus(ctx context.Context, id domain.TaskID, user domain.User, status domain.TaskStatus) (domain.Task, error) {
	t, err := s.repo.UpdateTaskStatus(ctx, id, user.ID, status)
	if err != nil {
		return domain.Task{}, err
	}

	s.invalidateTask(ctx, id)
	s.invalidateLists(ctx, user.ID)
	return t, nil
}

// ---- Кэш/шина: деградация вместо отказа ----

// cacheGet: nil — промах либо недоступный кэш; оба случая ведут в БД.
func (s *Service) cacheGet(ctx context.Context, key string) []byte {
	cctx, cancel := context.WithTimeout(ctx, s.cacheTimeout)
	defer cancel()

	b, err := s.cache.Get(cctx, key)
	if err != nil {
		s.log.Printf("cache get %q: %v (degrade to db)", key, err)
		return nil
	}
	return b
}

func (s *Service) cacheSet(ctx context.Context, key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		s.log.Printf("cache set %q: marshal: %v", key, err)
		return
	}

	cctx, cancel := context.WithTimeout(ctx, s.cacheTimeout)
	defer cancel()

	if err := s.cache.Set(cctx, key, b, s.ttlMs); err != nil {
		s.log.Printf("cache set %q: %v (skip)", key, err)
	}
}

func (s *Service) invalidateTask(ctx context.Context, id domain.TaskID) {
	cctx, cancel := context.WithTimeout(ctx, s.cacheTimeout)
	defer cancel()

	if err := s.cache.Del(cctx, domain.CacheKeyTask(id)); err != nil {
		s.log.Printf("invalidate task %s: %v (skip)", id, err)
	}
}

func (s *Service) invalidateLists(ctx context.Context, user domain.UserID) {
	cctx, cancel := context.WithTimeout(ctx, s.cacheTimeout)
	defer cancel()

	pattern := domain.CacheKeyUserTasksPattern(user)
	if err := s.cache.DelPattern(cctx, pattern); err != nil {
		s.log.Printf("invalidate %q: %v (skip)", pattern, err)
	}
}

// publish: ошибка публикации не откатывает и не фейлит мутацию
func (s *Service) publish(ctx context.Context, e domain.Event) {
	bctx, cancel := context.WithTimeout(ctx, s.busTimeout)
	defer cancel()

	if err := s.bus.Publish(bctx, domain.TasksChannel, e); err != nil {
		s.log.Printf("publish %s: %v (skip)", e.Event, err)
	}
}
