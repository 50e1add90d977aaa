package auth

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/EgorLis/task-manager/internal/domain"
	"github.com/EgorLis/task-manager/internal/transport/web/logx"
	"github.com/EgorLis/task-manager/internal/transport/web/mw"
	v1 "github.com/EgorLis/task-manager/internal/transport/web/v1"
)

// HandlerRegister обрабатывает POST /api/register
type HandlerRegister struct {
	Log        *log.Logger
	Users      domain.UsersRepo
	Hasher     domain.PasswordHasher
	AdminToken string
}

type registerRequest struct {
	Token string `json:"token"` // админ-токен (из конфига)
	Login string `json:"login"`
	Pswd  string `json:"pswd"`
}

type registerResponse struct {
	Login string `json:"login"`
}

// Register godoc
// @Summary     Register new user
// @Description Регистрация нового пользователя (доступно только по admin-token из конфига).
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body registerRequest true "token, login, pswd"
// @Success     200 {object} domain.APIEnvelope{response=registerResponse}
// @Failure     400 {object} domain.APIEnvelope
// @Failure     401 {object} domain.APIEnvelope
// @Failure     500 {object} domain.APIEnvelope
// @Router      /api/register [post]
func (h *HandlerRegister) Register(w http.ResponseWriter, r *http.Request) {
	const op = "auth.register"
	reqID := mw.RequestIDFromCtx(r.Context())
	logx.Info(h.Log, reqID, op, "start", "method", r.Method, "path", r.URL.Path)

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logx.Error(h.Log, reqID, op, "bad json", err)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	// 1) Проверка admin token
	if req.Token == "" || req.Token != h.AdminToken {
		logx.Error(h.Log, reqID, op, "bad admin token", domain.ErrUnauth)
		v1.WriteDomainError(w, r, domain.ErrUnauth)
		return
	}

	// 2) Валидация логина/пароля (домен)
	if !domain.ValidLogin(req.Login) || !domain.ValidPassword(req.Pswd) {
		logx.Error(h.Log, reqID, op, "validation failed", domain.ErrBadParams, "login", req.Login)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	// 3) Хэш пароля
	hashStr, err := h.Hasher.Hash(req.Pswd)
	if err != nil {
		logx.Error(h.Log, reqID, op, "hash failed", err)
		v1.WriteDomainError(w, r, domain.ErrUnexpected)
		return
	}

	// 4) Создаём пользователя
	u, err := h.Users.CreateUser(r.Context(), req.Login, []byte(hashStr))
	if err != nil {
		// возможен уникальный конфликт по login — маппим как bad params
		logx.Error(h.Log, reqID, op, "create user failed", err, "login", req.Login)
		v1.WriteDomainError(w, r, domain.ErrBadParams)
		return
	}

	logx.Info(h.Log, reqID, op, "ok", "user_id", u.ID, "login", u.Login)
	v1.WriteOKResponse(w, r, registerResponse{Login: u.Login})
}
