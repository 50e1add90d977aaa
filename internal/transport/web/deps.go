package web

import (
	"github.com/EgorLis/task-manager/internal/domain"
	"github.com/EgorLis/task-manager/internal/tasks"
	"github.com/EgorLis/task-manager/internal/transport/web/v1/health"
)

type Deps struct {
	Users domain.UsersRepo
	Tasks *tasks.Service

	// пинги для readyz
	DB    health.Pinger
	Cache health.Pinger
	Bus   health.Pinger
}

type AuthDeps struct {
	Hasher     domain.PasswordHasher
	Tokens     domain.TokenManager
	Blacklist  domain.TokenBlacklist
	AdminToken string
}
