package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/EgorLis/task-manager/internal/auth/blacklist"
	"github.com/EgorLis/task-manager/internal/auth/password"
	"github.com/EgorLis/task-manager/internal/auth/token"
	"github.com/EgorLis/task-manager/internal/config"
	"github.com/EgorLis/task-manager/internal/domain"
	redisbus "github.com/EgorLis/task-manager/internal/infra/bus/redis"
	redisx "github.com/EgorLis/task-manager/internal/infra/cache/redis"
	"github.com/EgorLis/task-manager/internal/infra/database/postgres"
	"github.com/EgorLis/task-manager/internal/tasks"
	"github.com/EgorLis/task-manager/internal/transport/web"
)

type App struct {
	config *config.Config
	server *web.Server
	log    *log.Logger
	repo   *postgres.PGRepo
	cache  domain.Cache
	bus    domain.Bus
}

func Build(ctx context.Context) (*App, error) {
	base := log.New(os.Stdout, "[app] ", log.LstdFlags)

	serverLog := log.New(base.Writer(), base.Prefix()+"[server] ", base.Flags())
	pgLog := log.New(base.Writer(), base.Prefix()+"[postgres] ", base.Flags())
	redisLog := log.New(base.Writer(), base.Prefix()+"[redis] ", base.Flags())
	busLog := log.New(base.Writer(), base.Prefix()+"[bus] ", base.Flags())
	tasksLog := log.New(base.Writer(), base.Prefix()+"[tasks] ", base.Flags())

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed load config: %w", err)
	}
	base.Printf("\n  configuration: %s-------------------", cfg)

	base.Println("init PostgreSQL")
	pgRepo, err := postgres.NewPGRepo(ctx, pgLog, cfg.GetDSN(), cfg.DBScheme)
	if err != nil {
		return nil, fmt.Errorf("failed init postgres: %w", err)
	}
	base.Println("PostgreSQL is initialized")

	base.Println("init Redis cache")
	rc := redisx.New(redisx.Config{
		Addr:     cfg.RedisAddr,
		DB:       cfg.RedisDB,
		Password: cfg.RedisPassword,
	}, redisLog)
	if err := rc.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed init redis: %w", err)
	}
	base.Println("Redis cache is initialized")

	base.Println("init Redis pub/sub")
	bus := redisbus.New(redisbus.Config{
		Addr:     cfg.RedisAddr,
		DB:       cfg.RedisDB,
		Password: cfg.RedisPassword,
	}, busLog)
	if err := bus.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed init bus: %w", err)
	}
	// встроенный подписчик: логирует события мутаций
	if err := tasks.StartEventLogger(ctx, tasksLog, bus); err != nil {
		return nil, fmt.Errorf("failed subscribe %s: %w", domain.TasksChannel, err)
	}
	base.Println("Redis pub/sub is initialized")

	// Auth primitives
	hasher := password.NewDefault()
	tm := token.New(cfg.AuthJWTSecret, cfg.AuthIssuer, cfg.AuthTokenTTL)
	bl := blacklist.NewStore(rc)

	svc := tasks.NewService(tasksLog, pgRepo, rc, bus, tasks.Config{TTLms: cfg.CacheTTLms})

	base.Println("init Server")
	deps := web.Deps{Users: pgRepo, Tasks: svc, DB: pgRepo, Cache: rc, Bus: bus}
	auth := web.AuthDeps{Hasher: hasher, Tokens: tm, Blacklist: bl, AdminToken: cfg.AdminToken}
	server := web.New(serverLog, cfg, deps, auth)
	base.Println("Server is initialized")

	base.Println("build ended")
	return &App{
		config: cfg,
		server: server,
		log:    base,
		repo:   pgRepo,
		cache:  rc,
		bus:    bus,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.log.Println("start application...")
	go a.server.Run()
	<-ctx.Done()
	a.log.Println("stop application...")

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	a.server.Close(stopCtx)
	a.bus.Close()
	a.cache.Close()
	a.repo.Close()

	return nil
}
