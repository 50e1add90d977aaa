package web

import (
	"log"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/EgorLis/task-manager/internal/docs"
	"github.com/EgorLis/task-manager/internal/transport/web/mw"
	authv1 "github.com/EgorLis/task-manager/internal/transport/web/v1/auth"
	"github.com/EgorLis/task-manager/internal/transport/web/v1/health"
	taskv1 "github.com/EgorLis/task-manager/internal/transport/web/v1/task"
)

func newRouter(logger *log.Logger, deps Deps, auth AuthDeps) http.Handler {
	healthLog := log.New(logger.Writer(), logger.Prefix()+"[health] ", logger.Flags())
	taskLog := log.New(logger.Writer(), logger.Prefix()+"[tasks] ", logger.Flags())
	authLog := log.New(logger.Writer(), logger.Prefix()+"[auth] ", logger.Flags())

	hh := &health.Handler{Log: healthLog, DB: deps.DB, Cache: deps.Cache, Bus: deps.Bus}
	th := &taskv1.Handler{Log: taskLog, Service: deps.Tasks}
	register := &authv1.HandlerRegister{Log: authLog, Users: deps.Users, Hasher: auth.Hasher, AdminToken: auth.AdminToken}
	login := &authv1.HandlerLogin{Log: authLog, Users: deps.Users, Hasher: auth.Hasher, Tokens: auth.Tokens}
	logout := &authv1.HandlerLogout{Log: authLog, Tokens: auth.Tokens, Blacklist: auth.Blacklist}

	mdeps := mw.AuthDeps{Tokens: auth.Tokens, Blacklist: auth.Blacklist}
	protected := func(h http.HandlerFunc) http.Handler { return mw.RequireAuth(mdeps, h) }

	mux := http.NewServeMux()

	// health
	mux.HandleFunc("GET /api/healthz", hh.Liveness)
	mux.HandleFunc("GET /api/readyz", hh.Readiness)

	// auth
	mux.HandleFunc("POST /api/register", register.Register)
	mux.HandleFunc("POST /api/auth", login.Login)
	mux.HandleFunc("DELETE /api/auth/{token}", logout.Logout)

	// tasks (только с токеном)
	mux.Handle("GET /api/tasks", protected(th.List))
	mux.Handle("POST /api/tasks", protected(th.Create))
	mux.Handle("GET /api/tasks/{id}", protected(th.GetOne))
	mux.Handle("DELETE /api/tasks/{id}", protected(th.Delete))
	mux.Handle("PATCH /api/tasks/{id}/status", protected(th.UpdateStatus))

	// swagger
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)

	return mw.WithRequestID(mw.Logging(logger)(mux))
}
