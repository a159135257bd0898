package router

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "project-share-manager/docs"
	mem "project-share-manager/internal/adapters/storage/memory"
	pg "project-share-manager/internal/adapters/storage/postgres"
	"project-share-manager/internal/domain/activity"
	"project-share-manager/internal/domain/projects"
	"project-share-manager/internal/domain/shares"
	"project-share-manager/internal/middleware"
	"project-share-manager/internal/platform/logger"
	"project-share-manager/internal/ports/auth"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	Logger             logger.Logger
	CORSAllowedOrigins []string

	ShareKeyLength      int
	ShareKeyMaxAttempts int
	OwnerCacheSize      int
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(opts.CORSAllowedOrigins))

	r.Use(middleware.AuthContext(opts.AuthVerifier))
	r.Use(middleware.RequestLog(log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	var (
		projectRepo  projects.Repository
		shareRepo    shares.Repository
		activityRepo activity.Repository
	)

	if opts.DB != nil {
		projectRepo = pg.NewProjectsRepo(opts.DB)
		shareRepo = pg.NewSharesRepo(opts.DB)
		activityRepo = pg.NewActivityRepo(opts.DB)
	} else {
		projectRepo = mem.NewProjectRepo()
		shareRepo = mem.NewShareRepo()
		activityRepo = mem.NewActivityRepo()
	}

	// Services por módulo
	activitySvc := activity.NewService(activityRepo)
	sharesSvc := shares.NewService(shareRepo, shares.Options{
		KeyLength:      opts.ShareKeyLength,
		MaxKeyAttempts: opts.ShareKeyMaxAttempts,
		Activity:       activitySvc,
		Logger:         log.With(map[string]any{"module": "shares"}),
	})
	resolver := shares.NewResolver(shareRepo)
	projectsSvc := projects.NewService(projectRepo, opts.OwnerCacheSize)

	// Rutas por módulo. projectsSvc resuelve el dueño de cada proyecto.
	projects.RegisterRoutes(r, projectsSvc, resolver)
	shares.RegisterRoutes(r, sharesSvc, resolver, projectsSvc)
	activity.RegisterRoutes(r, activitySvc, projectsSvc)

	return r
}
