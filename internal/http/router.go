package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/gearguard/api/internal/config"
	"github.com/gearguard/api/internal/equipment"
	"github.com/gearguard/api/internal/events"
	httpmiddleware "github.com/gearguard/api/internal/http/middleware"
	"github.com/gearguard/api/internal/request"
	"github.com/gearguard/api/internal/service"
	"github.com/gearguard/api/internal/session"
	"github.com/gearguard/api/internal/team"
	"github.com/gearguard/api/internal/user"
)

type Handler struct {
	cfg           *config.Config
	pool          *pgxpool.Pool
	redis         *redis.Client
	authService   *service.AuthService
	users         *user.Service
	teams         *team.Service
	equipment     *equipment.Service
	requests      *request.Service
	publicLimiter *httpmiddleware.RateLimiter
	authLimiter   *httpmiddleware.RateLimiter
	devCookies    bool
}

// NewRouter devolve roteador configurado.
func NewRouter(cfg *config.Config, pool *pgxpool.Pool, redisClient *redis.Client, authService *service.AuthService, publisher events.Publisher) (http.Handler, error) {
	devCookies := false
	for _, origin := range cfg.AllowOrigins {
		if strings.Contains(origin, "localhost") {
			devCookies = true
			break
		}
	}

	userRepo := user.NewRepository(pool)
	teamRepo := team.NewRepository(pool)
	equipRepo := equipment.NewRepository(pool)
	requestRepo := request.NewRepository(pool)

	h := &Handler{
		cfg:           cfg,
		pool:          pool,
		redis:         redisClient,
		authService:   authService,
		users:         user.NewService(userRepo),
		teams:         team.NewService(teamRepo),
		equipment:     equipment.NewService(equipRepo, requestRepo, pool),
		requests:      request.NewService(requestRepo, equipRepo, pool, redisClient, publisher),
		publicLimiter: httpmiddleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst),
		authLimiter:   httpmiddleware.NewRateLimiter(cfg.RateLimitAuth.RequestsPerSecond, cfg.RateLimitAuth.Burst),
		devCookies:    devCookies,
	}

	httpmiddleware.InitMetrics()

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.Metrics)
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))

	r.Group(func(public chi.Router) {
		public.Use(httpmiddleware.IPRateLimit(h.publicLimiter))

		public.Get("/health", h.Health)
		public.Get("/ready", h.Ready)
		public.Method(http.MethodGet, "/metrics", httpmiddleware.MetricsHandler())

		public.Route("/auth", func(auth chi.Router) {
			auth.Post("/login", h.Login)
			auth.Post("/refresh", h.Refresh)
			auth.Post("/logout", h.Logout)
		})
	})

	r.Group(func(private chi.Router) {
		private.Use(httpmiddleware.Auth(authService.JWT()))
		private.Use(httpmiddleware.UserRateLimit(h.authLimiter))

		private.Get("/auth/me", h.Me)

		private.Route("/requests", func(req chi.Router) {
			req.Get("/", h.ListRequests)
			req.Post("/", h.CreateRequest)
			req.Get("/calendar", h.RequestCalendar)
			req.Get("/{id}", h.GetRequest)
			req.Patch("/{id}", h.UpdateRequest)
		})

		private.Route("/equipment", func(eq chi.Router) {
			eq.Get("/", h.ListEquipment)
			eq.Get("/{id}", h.GetEquipment)
			eq.Get("/{id}/requests", h.ListEquipmentRequests)

			eq.Group(func(managed chi.Router) {
				managed.Use(httpmiddleware.RequireRoles(session.RoleAdmin, session.RoleManager))
				managed.Post("/", h.CreateEquipment)
				managed.Patch("/{id}", h.UpdateEquipment)
			})
		})

		private.Route("/teams", func(tm chi.Router) {
			tm.Get("/", h.ListTeams)
			tm.Get("/{id}", h.GetTeam)
			tm.Get("/{id}/members", h.ListTeamMembers)

			tm.Group(func(admin chi.Router) {
				admin.Use(httpmiddleware.RequireRoles(session.RoleAdmin))
				admin.Post("/", h.CreateTeam)
			})
		})

		private.Route("/users", func(us chi.Router) {
			us.Use(httpmiddleware.RequireRoles(session.RoleAdmin))
			us.Get("/", h.ListUsers)
			us.Post("/", h.CreateUser)
			us.Get("/{id}", h.GetUser)
		})

		private.Get("/dashboard/stats", h.DashboardStats)
	})

	return r, nil
}

// Health responde status simples.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready valida conexões com Postgres e Redis.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	dbErr := h.pool.Ping(ctx)
	redisErr := h.redis.Ping(ctx).Err()

	if dbErr != nil || redisErr != nil {
		WriteError(w, http.StatusServiceUnavailable, "INTERNAL", "dependências indisponíveis", map[string]any{
			"db":    errorString(dbErr),
			"redis": errorString(redisErr),
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"ready": true})
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
