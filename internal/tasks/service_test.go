package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/EgorLis/task-manager/internal/domain"
)

// ---- фейки портов ----

type fakeRepo struct {
	mu    sync.Mutex
	tasks map[domain.TaskID]domain.Task

	listCalls     int
	filteredCalls int
	byIDCalls     int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{tasks: make(map[domain.TaskID]domain.Task)}
}

func (r *fakeRepo) CreateTask(_ context.Context, title, description string, owner domain.UserID) (domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := domain.Task{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		Status:      domain.StatusOpen,
		UserID:      owner,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	r.tasks[t.ID] = t
	return t, nil
}

func (r *fakeRepo) TaskByID(_ context.Context, id domain.TaskID, owner domain.UserID) (domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byIDCalls++
	t, ok := r.tasks[id]
	if !ok || t.UserID != owner {
		return domain.Task{}, domain.ErrNotFound
	}
	return t, nil
}

func (r *fakeRepo) TasksList(_ context.Context, owner domain.UserID) ([]domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	var out []domain.Task
	for _, t := range r.tasks {
		if t.UserID == owner {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeRepo) TasksFiltered(_ context.Context, owner domain.UserID, f domain.TaskFilter) ([]domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.filteredCalls++
	var out []domain.Task
	for _, t := range r.tasks {
		if t.UserID != owner {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.Search != "" && !strings.Contains(t.Title, f.Search) && !strings.Contains(t.Description, f.Search) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *fakeRepo) DeleteTask(_ context.Context, id domain.TaskID, owner domain.UserID) (domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok || t.UserID != owner {
		return domain.Task{}, domain.ErrNotFound
	}
	delete(r.tasks, id)
	return t, nil
}

func (r *fakeRepo) UpdateTaskStatus(_ context.Context, id domain.TaskID, owner domain.UserID, status domain.TaskStatus) (domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok || t.UserID != owner {
		return domain.Task{}, domain.ErrNotFound
	}
	t.Status = status
	t.UpdatedAt = time.Now()
	r.tasks[id] = t
	return t, nil
}

type cacheEntry struct {
	val   []byte
	ttlMs int
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	down    bool // имитация недоступного Redis
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]cacheEntry)}
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.down {
		return nil, domain.ErrCacheUnavailable
	}
	e, ok := c.entries[key]
	if !ok {
		return nil, nil
	}
	return e.val, nil
}

func (c *fakeCache) Set(_ context.Context, key string, val []byte, ttlMs int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.down {
		return domain.ErrCacheUnavailable
	}
	c.entries[key] = cacheEntry{val: val, ttlMs: ttlMs}
	return nil
}

func (c *fakeCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.down {
		return domain.ErrCacheUnavailable
	}
	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}

func (c *fakeCache) DelPattern(_ context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.down {
		return domain.ErrCacheUnavailable
	}
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
	return nil
}

func (c *fakeCache) Exists(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok, nil
}

func (c *fakeCache) Ping(context.Context) error { return nil }
func (c *fakeCache) Close()                     {}

func (c *fakeCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

func (c *fakeCache) entry(key string) (cacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return e, ok
}

type published struct {
	channel string
	event   domain.Event
}

type fakeBus struct {
	mu     sync.Mutex
	events []published
	fail   bool
}

func (b *fakeBus) Publish(_ context.Context, channel string, e domain.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail {
		return domain.ErrPublishFailed
	}
	b.events = append(b.events, published{channel: channel, event: e})
	return nil
}

func (b *fakeBus) Subscribe(context.Context, string, func(domain.Event)) error { return nil }
func (b *fakeBus) Close()                                                      {}

func (b *fakeBus) all() []published {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]published(nil), b.events...)
}

func newTestService(repo domain.TasksRepo, cache domain.Cache, bus domain.Bus) *Service {
	logger := log.New(io.Discard, "", 0)
	return NewService(logger, repo, cache, bus, Config{})
}

// ---- чтения ----

func TestGetAllTasks_CacheHitSuppressesStore(t *testing.T) {
	repo := newFakeRepo()
	cache := newFakeCache()
	bus := &fakeBus{}
	svc := newTestService(repo, cache, bus)

	me := domain.User{ID: uuid.New(), Login: "u1"}
	cached := []domain.Task{{ID: uuid.New(), Title: "cached", UserID: me.ID}}
	b, _ := json.Marshal(cached)
	require.NoError(t, cache.Set(context.Background(), domain.CacheKeyUserTasks(me.ID), b, DefaultTTLms))

	got, err := svc.GetAllTasks(context.Background(), me)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "cached", got[0].Title)
	require.Zero(t, repo.listCalls, "repo must not be hit on cache hit")
}

func TestGetAllTasks_MissPopulatesCache(t *testing.T) {
	repo := newFakeRepo()
	cache := newFakeCache()
	svc := newTestService(repo, cache, &fakeBus{})

	me := domain.User{ID: uuid.New(), Login: "u1"}
	created, err := repo.CreateTask(context.Background(), "A", "B", me.ID)
	require.NoError(t, err)

	got, err := svc.GetAllTasks(context.Background(), me)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, created.ID, got[0].ID)
	require.Equal(t, 1, repo.listCalls)

	e, ok := cache.entry(domain.CacheKeyUserTasks(me.ID))
	require.True(t, ok, "miss must populate the cache")
	require.Equal(t, DefaultTTLms, e.ttlMs)

	// повторное чтение идёт из кэша
	_, err = svc.GetAllTasks(context.Background(), me)
	require.NoError(t, err)
	require.Equal(t, 1, repo.listCalls)
}

func TestGetAllTasks_EmptyResultIsCached(t *testing.T) {
	repo := newFakeRepo()
	cache := newFakeCache()
	svc := newTestService(repo, cache, &fakeBus{})

	me := domain.User{ID: uuid.New(), Login: "empty"}

	got, err := svc.GetAllTasks(context.Background(), me)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)

	// пустой ответ — валидный и кэшируется
	e, ok := cache.entry(domain.CacheKeyUserTasks(me.ID))
	require.True(t, ok)
	var cached []domain.Task
	require.NoError(t, json.Unmarshal(e.val, &cached))
	require.Empty(t, cached)

	_, err = svc.GetAllTasks(context.Background(), me)
	require.NoError(t, err)
	require.Equal(t, 1, repo.listCalls, "empty answer must be served from cache")
}

func TestGetTasksWithFilters_UsesFilteredKey(t *testing.T) {
	repo := newFakeRepo()
	cache := newFakeCache()
	svc := newTestService(repo, cache, &fakeBus{})

	me := domain.User{ID: uuid.New(), Login: "u1"}
	f := domain.TaskFilter{Status: domain.StatusOpen, Search: "test"}

	_, err := svc.GetTasksWithFilters(context.Background(), f, me)
	require.NoError(t, err)

	require.True(t, cache.has(domain.CacheKeyUserTasksFiltered(me.ID, f)))
	require.False(t, cache.has(domain.CacheKeyUserTasks(me.ID)),
		"filtered read must not touch the unscoped key")
}

func TestGetTaskByID_NotFoundWritesNothing(t *testing.T) {
	repo := newFakeRepo()
	cache := newFakeCache()
	svc := newTestService(repo, cache, &fakeBus{})

	me := domain.User{ID: uuid.New(), Login: "u1"}
	missing := uuid.New()

	_, err := svc.GetTaskByID(context.Background(), missing, me)
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.False(t, cache.has(domain.CacheKeyTask(missing)))
}

func TestGetTaskByID_CacheRoundTrip(t *testing.T) {
	repo := newFakeRepo()
	cache := newFakeCache()
	svc := newTestService(repo, cache, &fakeBus{})

	me := domain.User{ID: uuid.New(), Login: "u1"}
	created, _ := repo.CreateTask(context.Background(), "A", "B", me.ID)

	got, err := svc.GetTaskByID(context.Background(), created.ID, me)
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)
	require.Equal(t, 1, repo.byIDCalls)
	require.True(t, cache.has(domain.CacheKeyTask(created.ID)))

	got2, err := svc.GetTaskByID(context.Background(), created.ID, me)
	require.NoError(t, err)
	require.Equal(t, got.ID, got2.ID)
	require.Equal(t, 1, repo.byIDCalls, "second read must come from cache")
}

func TestRead_DegradesWhenCacheDown(t *testing.T) {
	repo := newFakeRepo()
	cache := newFakeCache()
	cache.down = true
	svc := newTestService(repo, cache, &fakeBus{})

	me := domain.User{ID: uuid.New(), Login: "u1"}
	_, err := repo.CreateTask(context.Background(), "A", "B", me.ID)
	require.NoError(t, err)

	// недоступный кэш стоит латентности, но не корректности
	got, err := svc.GetAllTasks(context.Background(), me)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, 1, repo.listCalls)
}

// ---- записи ----

func TestCreateTask_InvalidatesAndPublishes(t *testing.T) {
	repo := newFakeRepo()
	cache := newFakeCache()
	bus := &fakeBus{}
	svc := newTestService(repo, cache, bus)

	me := domain.User{ID: uuid.New(), Login: "u1"}
	other := uuid.New()

	// заселяем кэш: список, фильтр и чужой ключ
	ctx := context.Background()
	_ = cache.Set(ctx, domain.CacheKeyUserTasks(me.ID), []byte("[]"), DefaultTTLms)
	_ = cache.Set(ctx, domain.CacheKeyUserTasksFiltered(me.ID, domain.TaskFilter{Status: domain.StatusOpen}), []byte("[]"), DefaultTTLms)
	_ = cache.Set(ctx, domain.CacheKeyUserTasks(other), []byte("[]"), DefaultTTLms)

	created, err := svc.CreateTask(ctx, "A", "B", me)
	require.NoError(t, err)
	require.Equal(t, domain.StatusOpen, created.Status)

	require.False(t, cache.has(domain.CacheKeyUserTasks(me.ID)))
	require.False(t, cache.has(domain.CacheKeyUserTasksFiltered(me.ID, domain.TaskFilter{Status: domain.StatusOpen})))
	require.True(t, cache.has(domain.CacheKeyUserTasks(other)),
		"pattern invalidation must not touch other users")

	events := bus.all()
	require.Len(t, events, 1)
	require.Equal(t, domain.TasksChannel, events[0].channel)
	require.Equal(t, domain.EventTaskCreated, events[0].event.Event)
	require.Equal(t,
		domain.TaskCreatedData{ID: created.ID.String(), Title: "A"},
		events[0].event.Data)
}

func TestCreateTask_SucceedsWhenCacheAndBusDown(t *testing.T) {
	repo := newFakeRepo()
	cache := newFakeCache()
	cache.down = true
	bus := &fakeBus{fail: true}
	svc := newTestService(repo, cache, bus)

	me := domain.User{ID: uuid.New(), Login: "u1"}
	created, err := svc.CreateTask(context.Background(), "A", "B", me)
	require.NoError(t, err, "cache/bus failures must not fail the mutation")
	require.NotEqual(t, uuid.Nil, created.ID)
}

func TestDeleteTask_InvalidatesEntityAndLists(t *testing.T) {
	repo := newFakeRepo()
	cache := newFakeCache()
	svc := newTestService(repo, cache, &fakeBus{})

	me := domain.User{ID: uuid.New(), Login: "u1"}
	ctx := context.Background()
	created, _ := repo.CreateTask(ctx, "A", "B", me.ID)

	// прогреваем кэш задачей и списком
	_, err := svc.GetTaskByID(ctx, created.ID, me)
	require.NoError(t, err)
	_, err = svc.GetAllTasks(ctx, me)
	require.NoError(t, err)

	deleted, err := svc.DeleteTaskByID(ctx, created.ID, me)
	require.NoError(t, err)
	require.Equal(t, created.ID, deleted.ID, "delete returns last-known state")

	require.False(t, cache.has(domain.CacheKeyTask(created.ID)))
	require.False(t, cache.has(domain.CacheKeyUserTasks(me.ID)))

	_, err = svc.GetTaskByID(ctx, created.ID, me)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteTask_NotFound(t *testing.T) {
	repo := newFakeRepo()
	cache := newFakeCache()
	svc := newTestService(repo, cache, &fakeBus{})

	me := domain.User{ID: uuid.New(), Login: "u1"}
	_, err := svc.DeleteTaskByID(context.Background(), uuid.New(), me)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateStatus_NoStaleValueRemains(t *testing.T) {
	repo := newFakeRepo()
	cache := newFakeCache()
	svc := newTestService(repo, cache, &fakeBus{})

	me := domain.User{ID: uuid.New(), Login: "u1"}
	ctx := context.Background()
	created, _ := repo.CreateTask(ctx, "A", "B", me.ID)

	// прогреваем все формы чтения
	_, _ = svc.GetTaskByID(ctx, created.ID, me)
	_, _ = svc.GetAllTasks(ctx, me)
	_, _ = svc.GetTasksWithFilters(ctx, domain.TaskFilter{Status: domain.StatusOpen}, me)

	updated, err := svc.UpdateTaskStatus(ctx, created.ID, me, domain.StatusDone)
	require.NoError(t, err)
	require.Equal(t, domain.StatusDone, updated.Status)

	// ключ задачи снят, ни один ключ владельца не хранит старый статус
	require.False(t, cache.has(domain.CacheKeyTask(created.ID)))
	require.False(t, cache.has(domain.CacheKeyUserTasks(me.ID)))
	require.False(t, cache.has(domain.CacheKeyUserTasksFiltered(me.ID, domain.TaskFilter{Status: domain.StatusOpen})))

	got, err := svc.GetTaskByID(ctx, created.ID, me)
	require.NoError(t, err)
	require.Equal(t, domain.StatusDone, got.Status)
}

func TestReadAfterWrite(t *testing.T) {
	repo := newFakeRepo()
	cache := newFakeCache()
	svc := newTestService(repo, cache, &fakeBus{})

	me := domain.User{ID: uuid.New(), Login: "u1"}
	ctx := context.Background()

	// пустой список закэширован
	got, err := svc.GetAllTasks(ctx, me)
	require.NoError(t, err)
	require.Empty(t, got)

	created, err := svc.CreateTask(ctx, "A", "B", me)
	require.NoError(t, err)

	// следующий listAll обязан увидеть новую задачу, а не пустой кэш
	got, err = svc.GetAllTasks(ctx, me)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, created.ID, got[0].ID)
}

func TestPublish_ErrorIsSwallowed(t *testing.T) {
	repo := newFakeRepo()
	cache := newFakeCache()
	bus := &fakeBus{fail: true}
	svc := newTestService(repo, cache, bus)

	me := domain.User{ID: uuid.New(), Login: "u1"}
	_, err := svc.CreateTask(context.Background(), "A", "B", me)
	require.NoError(t, err)
	require.True(t, errors.Is(bus.Publish(context.Background(), domain.TasksChannel, domain.Event{}), domain.ErrPublishFailed))
}
