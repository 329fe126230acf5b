package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/avelasq/taskhub/internal/accounts"
	"github.com/avelasq/taskhub/internal/auth"
	"github.com/avelasq/taskhub/internal/config"
	"github.com/avelasq/taskhub/internal/http/handlers"
	"github.com/avelasq/taskhub/internal/http/middlewares"
	"github.com/avelasq/taskhub/internal/observability"
	"github.com/avelasq/taskhub/internal/repo/memory"
	"github.com/avelasq/taskhub/internal/repo/postgres"
	"github.com/avelasq/taskhub/internal/session"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// NewRouter wires the whole HTTP surface. A nil pool or redis client
// selects the in-memory equivalents, which is what the tests use.
func NewRouter(log *slog.Logger, pool *pgxpool.Pool, rdb *redis.Client, cfg config.Config) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	// middleware
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))
	r.Use(middlewares.RequireJSON())
	r.Use(prom.GinHandleMiddleware())
	r.Use(otelgin.Middleware("taskhub"))

	// session plumbing
	tokens := auth.NewManager(cfg.SessionSecret, cfg.SessionTTL())

	var store session.Store = session.NewMemoryStore()

	if rdb != nil {
		store = session.NewRedisStore(rdb)
	}

	sessions := session.NewManager(tokens, store, prom)

	// repositories
	var (
		usersRepo accounts.UserStore
		tasksRepo handlers.TaskStore
	)

	if pool != nil {
		usersRepo = postgres.NewUsersRepo(pool, prom)
		tasksRepo = postgres.NewTasksRepo(pool, prom)
	} else {
		memTasks := memory.NewTasksRepo()
		usersRepo = memory.NewUsersRepo().WithTasks(memTasks)
		tasksRepo = memTasks
	}

	accountsSvc := accounts.NewService(usersRepo, sessions)

	// handlers
	authHandler := handlers.NewAuthHandler(accountsSvc, sessions, prom)
	accountsHandler := handlers.NewAccountsHandler(accountsSvc)
	tasksHandler := handlers.NewTasksHandler(tasksRepo)

	authRequired := middlewares.NewAuthMiddleware(sessions).RequireAuth()

	// health + metrics
	pingDB := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	pingRedis := func() error {
		if rdb == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return rdb.Ping(ctx).Err()
	}

	health := handlers.NewHealthHandler(pingDB, pingRedis)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// auth
	r.POST("/auth/signup", accountsHandler.SignUp)
	r.POST("/auth/login", authHandler.Login)
	r.POST("/auth/logout", authRequired, authHandler.Logout)

	// accounts (self-only; the service enforces ownership)
	users := r.Group("/users", authRequired)
	users.GET("/me", accountsHandler.Me)
	users.PUT("/:id", accountsHandler.Update)
	users.DELETE("/:id", accountsHandler.Delete)

	// tasks, always scoped to the session owner
	tasks := r.Group("/tasks", authRequired)
	tasks.GET("", tasksHandler.ListTasks)
	tasks.POST("", tasksHandler.CreateTask)
	tasks.GET("/:id", tasksHandler.GetTaskByID)
	tasks.PUT("/:id", tasksHandler.UpdateTask)
	tasks.DELETE("/:id", tasksHandler.DeleteTask)

	return r
}
