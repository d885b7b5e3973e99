// Package server contains the HTTP and WebSocket handlers for the API.
package server

import (
	"context"
	"fmt"
	"time"

	_ "vidtube/docs" // swagger docs
	"vidtube/internal/bootstrap"
	"vidtube/internal/cache"
	"vidtube/internal/config"
	"vidtube/internal/featureflags"
	"vidtube/internal/mailer"
	"vidtube/internal/middleware"
	"vidtube/internal/models"
	"vidtube/internal/notifications"
	"vidtube/internal/repository"
	"vidtube/internal/service"
	"vidtube/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const janitorInterval = time.Minute

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	tokens       *middleware.TokenManager
	blacklist    *cache.TokenBlacklist
	notifier     *notifications.Notifier
	hub          *notifications.Hub
	featureFlags *featureflags.Manager

	userService          *service.UserService
	accountService       *service.AccountService
	passwordResetService *service.PasswordResetService
	channelService       *service.ChannelService
	videoService         *service.VideoService
	commentService       *service.CommentService
	likeService          *service.LikeService
	subscriptionService  *service.SubscriptionService
	tweetService         *service.TweetService
	playlistService      *service.PlaylistService
}

// NewServer connects to the database and Redis and builds a server around
// them with request metrics enabled.
func NewServer(cfg *config.Config) (*Server, error) {
	db, rdb, err := bootstrap.InitRuntime(cfg, bootstrap.Options{SeedDemo: cfg.SeedDemo})
	if err != nil {
		return nil, err
	}

	server, err := NewServerWithDeps(cfg, db, rdb)
	if err != nil {
		return nil, err
	}
	server.promMiddleware = middleware.InitMetrics("vidtube-api")
	return server, nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// A nil Redis client disables the websocket feed, token revocation and the
// shared rate limit store.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	store, err := storage.New(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("object storage init failed: %w", err)
	}

	userRepo := repository.NewUserRepository(db)
	videoRepo := repository.NewVideoRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	tweetRepo := repository.NewTweetRepository(db)
	playlistRepo := repository.NewPlaylistRepository(db)
	resetRepo := repository.NewPasswordResetRepository(db)

	server := &Server{
		config:       cfg,
		db:           db,
		redis:        redisClient,
		tokens:       middleware.NewTokenManager(cfg),
		blacklist:    cache.NewTokenBlacklist(redisClient),
		notifier:     notifications.NewNotifier(redisClient),
		featureFlags: featureflags.NewManager(cfg.FeatureFlags),
	}
	if redisClient != nil {
		server.hub = notifications.NewHub()
	}

	server.videoService = service.NewVideoService(videoRepo, userRepo, likeRepo, commentRepo, playlistRepo, store)
	server.userService = service.NewUserService(userRepo, store)
	server.accountService = service.NewAccountService(service.AccountRepositories{
		Users:         userRepo,
		Videos:        videoRepo,
		Comments:      commentRepo,
		Likes:         likeRepo,
		Subscriptions: subRepo,
		Tweets:        tweetRepo,
		Playlists:     playlistRepo,
		Resets:        resetRepo,
	}, server.videoService, store)
	server.passwordResetService = service.NewPasswordResetService(userRepo, resetRepo, mailer.New(cfg), cfg.OTPTTL())
	server.channelService = service.NewChannelService(userRepo, videoRepo)
	server.commentService = service.NewCommentService(commentRepo, videoRepo, likeRepo, server.notifier)
	server.likeService = service.NewLikeService(likeRepo, videoRepo, commentRepo, tweetRepo, server.notifier)
	server.subscriptionService = service.NewSubscriptionService(subRepo, userRepo, server.notifier)
	server.tweetService = service.NewTweetService(tweetRepo, userRepo, likeRepo)
	server.playlistService = service.NewPlaylistService(playlistRepo, videoRepo, userRepo)

	return server, nil
}

// FiberConfig returns the app settings every entry point should use.
func (s *Server) FiberConfig() fiber.Config {
	bodyLimit := s.config.BodyLimitMB
	if bodyLimit <= 0 {
		bodyLimit = 10
	}
	return fiber.Config{
		AppName:      "VidTube API",
		BodyLimit:    bodyLimit * 1024 * 1024,
		ErrorHandler: errorHandler,
	}
}

// errorHandler renders anything a handler returned instead of writing a
// response itself.
func errorHandler(c *fiber.Ctx, err error) error {
	status := models.StatusFor(err)
	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "path", c.Path(), "error", err)
	}
	return models.RespondWithError(c, status, err)
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())

	// Request ID, trace ID and user ID flow into the context for logging.
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected browser requests still carry
	// CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return models.RespondWithError(c, fiber.StatusTooManyRequests,
				fiber.NewError(fiber.StatusTooManyRequests, "Too many requests, please try again later"))
		},
	}))

	app.Use(queryTimeout(s.config.QueryTimeout()))
}

// queryTimeout bounds every store call a request makes.
func queryTimeout(d time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if d <= 0 {
			return c.Next()
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), d)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	app.Get("/api/swagger/*", swagger.HandlerDefault)

	api := app.Group("/api/v1")
	api.Get("/healthcheck", s.HealthCheck)
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "VidTube Backend Metrics Dashboard",
	}))

	requireAuth := middleware.AuthRequired(s.tokens, s.blacklist)
	optionalAuth := middleware.OptionalAuth(s.tokens, s.blacklist)

	// Users and sessions
	users := api.Group("/users")
	users.Post("/register", middleware.RateLimit(s.redis, 3, 10*time.Minute, "register"), s.Register)
	users.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	users.Post("/refresh-token", s.RefreshToken)
	users.Post("/logout", requireAuth, s.Logout)
	users.Post("/change-password", requireAuth, s.ChangePassword)
	users.Get("/me", requireAuth, s.GetCurrentUser)
	users.Patch("/account", requireAuth, s.UpdateAccount)
	users.Delete("/account", requireAuth, s.DeleteAccount)
	users.Get("/history", requireAuth, s.GetWatchHistory)
	users.Get("/features", requireAuth, s.GetFeatureFlags)

	password := api.Group("/password")
	password.Post("/forgot", middleware.RateLimit(s.redis, 3, 10*time.Minute, "forgot_password"), s.ForgotPassword)
	password.Post("/reset", s.ResetPassword)

	// Channels
	api.Get("/channels/:username/about", optionalAuth, s.GetChannelAbout)

	// Videos: literal segments before /:videoId.
	videos := api.Group("/videos")
	videos.Get("/", optionalAuth, s.ListVideos)
	videos.Get("/search", optionalAuth, s.SearchVideos)
	videos.Get("/user/:username", optionalAuth, s.ListChannelVideos)
	videos.Post("/", requireAuth, s.PublishVideo)
	videos.Patch("/:videoId/toggle-publish", requireAuth, s.TogglePublish)
	videos.Get("/:videoId", optionalAuth, s.GetVideo)
	videos.Patch("/:videoId", requireAuth, s.UpdateVideo)
	videos.Delete("/:videoId", requireAuth, s.DeleteVideo)

	// Comments
	comments := api.Group("/comments", requireAuth)
	comments.Get("/video/:videoId", s.GetVideoComments)
	comments.Post("/:videoId", middleware.RateLimit(s.redis, 10, time.Minute, "comment"), s.AddComment)
	comments.Patch("/:commentId", s.UpdateComment)
	comments.Delete("/:commentId", s.DeleteComment)

	// Likes
	likes := api.Group("/likes", requireAuth)
	likes.Post("/video/:videoId", s.ToggleVideoLike)
	likes.Post("/comment/:commentId", s.ToggleCommentLike)
	likes.Post("/tweet/:tweetId", s.ToggleTweetLike)
	likes.Get("/liked-videos", s.GetLikedVideos)

	// Subscriptions
	subscriptions := api.Group("/subscriptions", requireAuth)
	subscriptions.Get("/subscribed-channels", s.GetSubscribedChannels)
	subscriptions.Get("/user/:subscriberId", s.GetUserSubscriptions)
	subscriptions.Post("/channel/:channelId", s.ToggleSubscription)
	subscriptions.Get("/channel/:channelId", s.GetChannelSubscribers)

	// Tweets
	tweets := api.Group("/tweets", requireAuth)
	tweets.Post("/", middleware.RateLimit(s.redis, 10, time.Minute, "tweet"), s.CreateTweet)
	tweets.Get("/user/:userId", s.GetUserTweets)
	tweets.Patch("/:tweetId", s.UpdateTweet)
	tweets.Delete("/:tweetId", s.DeleteTweet)

	// Playlists: literal segments before /:playlistId.
	playlists := api.Group("/playlists", requireAuth)
	playlists.Post("/", s.CreatePlaylist)
	playlists.Get("/user/:userId", s.GetUserPlaylists)
	playlists.Patch("/add/:videoId/:playlistId", s.AddVideoToPlaylist)
	playlists.Patch("/remove/:videoId/:playlistId", s.RemoveVideoFromPlaylist)
	playlists.Get("/:playlistId", s.GetPlaylist)
	playlists.Patch("/:playlistId", s.UpdatePlaylist)
	playlists.Delete("/:playlistId", s.DeletePlaylist)

	// Dashboard
	dashboard := api.Group("/dashboard", requireAuth)
	dashboard.Get("/stats", s.GetChannelStats)
	dashboard.Get("/videos", s.GetChannelVideos)

	// Notification feed
	api.Get("/ws", middleware.WebSocketAuthRequired(s.tokens, s.blacklist), s.WebsocketHandler())
}

// HealthCheck handles GET /api/v1/healthcheck
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} models.APIResponse
// @Router /healthcheck [get]
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	return models.Respond(c, fiber.StatusOK, "OK", "Health check passed")
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports whether the database and Redis answer.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// StartBackground launches the notification wiring and the reset ticket
// janitor. Both stop when Shutdown is called.
func (s *Server) StartBackground() {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	go s.passwordResetService.RunJanitor(ctx, janitorInterval)

	if s.hub != nil {
		go func() {
			if err := s.hub.StartWiring(ctx, s.notifier); err != nil {
				middleware.Logger.Error("failed to start notification wiring", "error", err)
			}
		}()
	}
}

// Start builds the app and serves it until the listener fails.
func (s *Server) Start() error {
	app := fiber.New(s.FiberConfig())
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.StartBackground()

	middleware.Logger.Info("server starting", "port", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err)
		}
	}

	if s.hub != nil {
		if err := s.hub.Shutdown(ctx); err != nil {
			middleware.Logger.Error("error shutting down notification hub", "error", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", "error", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", "error", rerr)
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
