package task

import (
	"net/http"

	"github.com/EgorLis/task-manager/internal/domain"
	"github.com/EgorLis/task-manager/internal/transport/web/logx"
	"github.com/EgorLis/task-manager/internal/transport/web/mw"
	v1 "github.com/EgorLis/task-manager/internal/transport/web/v1"
)

// List godoc
// @Summary     List tasks
// @Description Список задач пользователя; query-параметры включают фильтрацию.
// @Tags        tasks
// @Produce     json
// @Param       status query string false "task status (OPEN|IN_PROGRESS|DONE)"
// @Param       search query string false "substring in title/description"
// @Success     200 {object} domain.APIEnvelope{data=[]domain.Task}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Security    BearerAuth
// @Router      /api/tasks [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "tasks.list"
	reqID := mw.RequestIDFromCtx(r.Context())

	me, ok := domain.UserFromCtx(r.Context())
	if !ok {
		logx.Error(h.Log, reqID, op, "unauthorized", domain.ErrUnauth)
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}

	f := domain.TaskFilter{
		Status: domain.TaskStatus(r.URL.Query().Get("status")),
		Search: r.URL.Query().Get("search"),
	}
	if f.Status != "" && !domain.ValidStatus(f.Status) {
		logx.Error(h.Log, reqID, op, "bad status filter", domain.ErrBadParams, "status", f.Status)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	// без фильтров — общий список (отдельный ключ кэша)
	var (
		res []domain.Task
		err error
	)
	if f.IsZero() {
		res, err = h.Service.GetAllTasks(r.Context(), me)
	} else {
		res, err = h.Service.GetTasksWithFilters(r.Context(), f, me)
	}
	if err != nil {
		logx.Error(h.Log, reqID, op, "list failed", err, "user_id", me.ID)
		v1.WriteDomainError(w, r, err)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "user_id", me.ID, "count", len(res))
	v1.WriteOKData(w, r, res)
}
