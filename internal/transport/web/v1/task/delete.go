package task

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/EgorLis/task-manager/internal/domain"
	"github.com/EgorLis/task-manager/internal/transport/web/logx"
	"github.com/EgorLis/task-manager/internal/transport/web/mw"
	v1 "github.com/EgorLis/task-manager/internal/transport/web/v1"
)

// Delete godoc
// @Summary     Delete task (owner only)
// @Description Удаляет задачу и возвращает её последнее состояние.
// @Tags        tasks
// @Produce     json
// @Param       id path string true "task id"
// @Success     200 {object} domain.APIEnvelope{data=domain.Task}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Failure     404 {object} domain.APIEnvelope
// @Security    BearerAuth
// @Router      /api/tasks/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "tasks.delete"
	reqID := mw.RequestIDFromCtx(r.Context())

	me, ok := domain.UserFromCtx(r.Context())
	if !ok {
		logx.Error(h.Log, reqID, op, "unauthorized", domain.ErrUnauth)
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}

	taskID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		logx.Error(h.Log, reqID, op, "bad task id", err, "task_id_raw", r.PathValue("id"))
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	t, err := h.Service.DeleteTaskByID(r.Context(), taskID, me)
	if err != nil {
		logx.Error(h.Log, reqID, op, "delete failed", err, "task_id", taskID)
		v1.WriteDomainError(w, r, err)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "task_id", t.ID)
	v1.WriteOKData(w, r, t)
}
