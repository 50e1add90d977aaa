package task

import (
	"encoding/json"
	"net/http"

	"github.com/EgorLis/task-manager/internal/domain"
	"github.com/EgorLis/task-manager/internal/transport/web/logx"
	"github.com/EgorLis/task-manager/internal/transport/web/mw"
	v1 "github.com/EgorLis/task-manager/internal/transport/web/v1"
)

type createRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Create godoc
// @Summary     Create task
// @Description Создаёт задачу со статусом OPEN у текущего пользователя.
// @Tags        tasks
// @Accept      json
// @Produce     json
// @Param       request body createRequest true "title, description"
// @Success     200 {object} domain.APIEnvelope{data=domain.Task}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Security    BearerAuth
// @Router      /api/tasks [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "tasks.create"
	reqID := mw.RequestIDFromCtx(r.Context())

	me, ok := domain.UserFromCtx(r.Context())
	if !ok {
		logx.Error(h.Log, reqID, op, "unauthorized", domain.ErrUnauth)
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logx.Error(h.Log, reqID, op, "bad json", err)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	// валидация на границе: ядро получает уже корректные значения
	if !domain.ValidTaskInput(req.Title, req.Description) {
		logx.Error(h.Log, reqID, op, "validation failed", domain.ErrBadParams)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	t, err := h.Service.CreateTask(r.Context(), req.Title, req.Description, me)
	if err != nil {
		logx.Error(h.Log, reqID, op, "create failed", err, "user_id", me.ID)
		v1.WriteDomainError(w, r, err)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "task_id", t.ID, "title", t.Title)
	v1.WriteOKData(w, r, t)
}
