package tasks

import (
	"context"
	"log"

	"github.com/EgorLis/task-manager/internal/domain"
)

// StartEventLogger подписывает процесс на tasks_channel при старте.
// Сейчас единственный встроенный потребитель просто логирует события;
// внешние подписчики (дайджесты и т.п.) слушают тот же канал сами.
func StartEventLogger(ctx context.Context, logger *log.Logger, bus domain.Bus) error {
	return bus.Subscribe(ctx, domain.TasksChannel, func(e domain.Event) {
		logger.Printf("event received: %s data=%v", e.Event, e.Data)
	})
}
