package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestCacheKeyUserTasks(t *testing.T) {
	u := uuid.New()
	require.Equal(t, "user-tasks:"+u.String(), CacheKeyUserTasks(u))
}

func TestCacheKeyFiltered_Deterministic(t *testing.T) {
	u := uuid.New()
	f := TaskFilter{Status: StatusOpen, Search: "test"}

	require.Equal(t, CacheKeyUserTasksFiltered(u, f), CacheKeyUserTasksFiltered(u, f))
	require.Equal(t,
		"user-tasks:"+u.String()+":status:OPEN:search:test",
		CacheKeyUserTasksFiltered(u, f))
}

func TestCacheKeyFiltered_Sentinels(t *testing.T) {
	u := uuid.New()

	// отсутствующие поля фильтра сворачиваются в сентинелы —
	// два «пустых» фильтра всегда дают один и тот же ключ
	empty := CacheKeyUserTasksFiltered(u, TaskFilter{})
	require.Equal(t, "user-tasks:"+u.String()+":status:all:search:none", empty)

	onlyStatus := CacheKeyUserTasksFiltered(u, TaskFilter{Status: StatusDone})
	require.Equal(t, "user-tasks:"+u.String()+":status:DONE:search:none", onlyStatus)

	onlySearch := CacheKeyUserTasksFiltered(u, TaskFilter{Search: "abc"})
	require.NotEqual(t, empty, onlySearch)
	require.NotEqual(t, onlyStatus, onlySearch)
}

func TestCacheKeyFiltered_PrefixInvariant(t *testing.T) {
	u := uuid.New()
	base := CacheKeyUserTasks(u)

	for _, f := range []TaskFilter{
		{},
		{Status: StatusInProgress},
		{Search: "milk"},
		{Status: StatusOpen, Search: "a:b:c"},
	} {
		key := CacheKeyUserTasksFiltered(u, f)
		require.True(t, strings.HasPrefix(key, base),
			"filtered key %q must be prefixed by %q", key, base)
	}
	require.Equal(t, base+"*", CacheKeyUserTasksPattern(u))
}

func TestCacheKeyFiltered_SeparatorEscaped(t *testing.T) {
	u := uuid.New()

	// поисковая строка с ":" не должна склеиваться с другим ключом
	a := CacheKeyUserTasksFiltered(u, TaskFilter{Search: "x:search:y"})
	b := CacheKeyUserTasksFiltered(u, TaskFilter{Search: "x"})
	require.NotEqual(t, a, b)
	require.NotContains(t, strings.TrimPrefix(a, CacheKeyUserTasks(u)+":status:all:search:"), ":")
}

func TestCacheKeyTask_Global(t *testing.T) {
	id := uuid.New()
	// ключ задачи не привязан к владельцу: id глобально уникален
	require.Equal(t, "task:"+id.String(), CacheKeyTask(id))
}
