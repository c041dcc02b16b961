package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/hugh/rally/internal/api/handlers"
	"github.com/hugh/rally/internal/api/middleware"
	"github.com/hugh/rally/internal/auth"
	"github.com/hugh/rally/internal/channels"
	"github.com/hugh/rally/internal/questions"
	"github.com/hugh/rally/internal/slug"
	"github.com/hugh/rally/internal/validation"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Router struct {
	chi.Router
}

type RouterConfig struct {
	DB             *gorm.DB
	Redis          *redis.Client
	Logger         *slog.Logger
	JWTService     auth.TokenService
	AuthService    *auth.Service
	Events         handlers.EventEmitter
	AllowedOrigins []string // CORS allowed origins
	RateLimitReqs  int      // Rate limit requests per window
	RateLimitSecs  int      // Rate limit window in seconds
}

func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	var limiter middleware.Limiter
	if cfg.RateLimitReqs > 0 {
		limiter = middleware.NewLimiter(cfg.Redis, cfg.RateLimitReqs, cfg.RateLimitSecs)
		r.Use(middleware.RateLimit(limiter, middleware.ByIP, cfg.Logger))
	}

	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize services
	validator := validation.NewValidator(cfg.DB)
	slugs := slug.NewGenerator(slug.NewGormLookup(cfg.DB, "questions", "slug"))
	questionService := questions.NewService(cfg.DB, slugs, cfg.Logger)
	channelService := channels.NewService(cfg.DB)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Redis)
	authHandler := handlers.NewAuthHandler(cfg.AuthService, cfg.Events, cfg.Logger)
	channelHandler := handlers.NewChannelHandler(channelService, cfg.Logger)
	questionHandler := handlers.NewQuestionHandler(questionService, channelService, cfg.AuthService, validator, cfg.Logger)
	answerHandler := handlers.NewAnswerHandler(questionService, cfg.AuthService, validator, cfg.Logger)

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Get("/auth/verify/{token}", authHandler.Verify)

		r.Get("/channels", channelHandler.List)
		r.Get("/questions", questionHandler.List)
		r.Get("/questions/{slug}", questionHandler.Show)
		r.Get("/questions/{id}/answers", answerHandler.List)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTService))
			if limiter != nil {
				r.Use(middleware.RateLimit(limiter, middleware.ByUser, cfg.Logger))
			}

			r.Get("/me", authHandler.Me)

			r.Post("/questions", questionHandler.Create)
			r.Put("/questions/{id}", questionHandler.Replace)
			r.Patch("/questions/{id}", questionHandler.Patch)
			r.Delete("/questions/{id}", questionHandler.Delete)
			r.Post("/questions/{id}/answers", answerHandler.Create)

			r.Route("/answers/{id}", func(r chi.Router) {
				r.Put("/", answerHandler.Update)
				r.Delete("/", answerHandler.Delete)
				r.Post("/best", answerHandler.MarkBest)
			})
		})
	})

	return &Router{r}
}
