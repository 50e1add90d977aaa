package task

import (
	"log"

	"github.com/EgorLis/task-manager/internal/tasks"
)

type Handler struct {
	Log     *log.Logger
	Service *tasks.Service
}
