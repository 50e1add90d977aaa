package task

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/EgorLis/task-manager/internal/domain"
	"github.com/EgorLis/task-manager/internal/transport/web/logx"
	"github.com/EgorLis/task-manager/internal/transport/web/mw"
	v1 "github.com/EgorLis/task-manager/internal/transport/web/v1"
)

type updateStatusRequest struct {
	Status domain.TaskStatus `json:"status"`
}

// UpdateStatus godoc
// @Summary     Update task status
// @Tags        tasks
// @Accept      json
// @Produce     json
// @Param       id path string true "task id"
// @Param       request body updateStatusRequest true "status"
// @Success     200 {object} domain.APIEnvelope{data=domain.Task}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Failure     404 {object} domain.APIEnvelope
// @Security    BearerAuth
// @Router      /api/tasks/{id}/status [patch]
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	const op = "tasks.update_status"
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

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logx.Error(h.Log, reqID, op, "bad json", err)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}
	if !domain.ValidStatus(req.Status) {
		logx.Error(h.Log, reqID, op, "bad status", domain.ErrBadParams, "status", req.Status)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	t, err := h.Service.UpdateTaskStatus(r.Context(), taskID, me, req.Status)
	if err != nil {
		logx.Error(h.Log, reqID, op, "update failed", err, "task_id", taskID)
		v1.WriteDomainError(w, r, err)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "task_id", t.ID, "status", t.Status)
	v1.WriteOKData(w, r, t)
}
