package pkg

import (
	"context"
	"errors"
	"net/http"
	"time"

	"PlacementHub/internal/auth"
	"PlacementHub/internal/config"
	"PlacementHub/internal/httpio"
	"PlacementHub/internal/jobs"
	"PlacementHub/internal/logger"
	"PlacementHub/internal/messages"
	"PlacementHub/internal/metrics"
	"PlacementHub/internal/notification"
	"PlacementHub/internal/reviews"
	"PlacementHub/pkg/middleware"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

var EchoModules = fx.Module("echo",
	fx.Provide(config.Load),
	fx.Provide(NewLogger),
	fx.Provide(config.NewMongoDBClient),
	fx.Provide(metrics.New),
	fx.Provide(notification.NewSender),
	fx.Provide(auth.NewReplayGuard),
	fx.Provide(NewTokenService),
	fx.Provide(auth.NewAccountRepository),
	fx.Provide(auth.NewPendingRegistrationRepository),
	fx.Provide(auth.NewPasswordResetRepository),
	fx.Provide(NewUserService),
	fx.Provide(auth.NewAuthHandler),
	fx.Provide(jobs.NewJobRepository),
	fx.Provide(NewJobService),
	fx.Provide(jobs.NewJobHandler),
	fx.Provide(reviews.NewReviewRepository),
	fx.Provide(NewReviewService),
	fx.Provide(reviews.NewReviewHandler),
	fx.Provide(messages.NewMessageRepository),
	fx.Provide(NewMessageService),
	fx.Provide(messages.NewMessageHandler),
	fx.Provide(middleware.NewRoleGate),
	fx.Provide(NewEchoServer),
	fx.Invoke(EnsureIndexes),
	fx.Invoke(RegisterRoutes))

// FxLogger routes fx lifecycle events through zap.
func FxLogger(log *zap.Logger) fxevent.Logger {
	return &fxevent.ZapLogger{Logger: log.Named("fx")}
}

func NewLogger(cfg *config.Config) *zap.Logger {
	return logger.New(cfg.Log)
}

func NewTokenService(cfg *config.Config) (*auth.TokenService, error) {
	return auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL, cfg.Auth.ResetTTL)
}

func NewUserService(
	cfg *config.Config,
	accounts *auth.AccountRepository,
	pending *auth.PendingRegistrationRepository,
	resets *auth.PasswordResetRepository,
	tokens *auth.TokenService,
	sender notification.Sender,
	guard auth.ReplayGuard,
	m *metrics.Metrics,
	log *zap.Logger,
) *auth.UserService {
	settings := auth.Settings{
		StudentEmailDomain: cfg.Auth.StudentEmailDomain,
		OTPTTL:             cfg.Auth.OTPTTL,
	}
	return auth.NewUserService(settings, accounts, pending, resets, tokens, sender, guard, m, log.Named("auth"))
}

func NewJobService(repo *jobs.JobRepository, log *zap.Logger) *jobs.JobService {
	return jobs.NewJobService(repo, log.Named("jobs"))
}

func NewReviewService(repo *reviews.ReviewRepository, accounts *auth.AccountRepository, log *zap.Logger) *reviews.ReviewService {
	return reviews.NewReviewService(repo, accounts, log.Named("reviews"))
}

func NewMessageService(repo *messages.MessageRepository, accounts *auth.AccountRepository, log *zap.Logger) *messages.MessageService {
	return messages.NewMessageService(repo, accounts, log.Named("messages"))
}

type indexed interface {
	EnsureIndexes(ctx context.Context) error
}

// EnsureIndexes creates every collection index before the server starts
// accepting requests.
func EnsureIndexes(
	lc fx.Lifecycle,
	log *zap.Logger,
	accounts *auth.AccountRepository,
	pending *auth.PendingRegistrationRepository,
	resets *auth.PasswordResetRepository,
	jobRepo *jobs.JobRepository,
	reviewRepo *reviews.ReviewRepository,
	messageRepo *messages.MessageRepository,
) {
	repos := map[string]indexed{
		"users":                 accounts,
		"pending_registrations": pending,
		"password_resets":       resets,
		"jobs":                  jobRepo,
		"reviews":               reviewRepo,
		"messages":              messageRepo,
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			for name, repo := range repos {
				if err := repo.EnsureIndexes(ctx); err != nil {
					return err
				}
				log.Debug("indexes ensured", zap.String("collection", name))
			}
			return nil
		},
	})
}

func NewEchoServer(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger, m *metrics.Metrics) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = httpio.NewValidator()
	e.HTTPErrorHandler = httpio.ErrorHandler(log)
	middleware.SetupMiddleware(e, cfg.CORS, log.Named("http"), m)

	addr := ":" + cfg.Port
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("failed to start the server", zap.Error(err))
				}
			}()
			log.Info("server running", zap.String("addr", addr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down the server")
			return e.Shutdown(ctx)
		},
	})
	return e
}

func RegisterRoutes(
	e *echo.Echo,
	db *config.MongoDBClient,
	m *metrics.Metrics,
	gate *middleware.RoleGate,
	users *auth.UserService,
	authHandler *auth.AuthHandler,
	jobHandler *jobs.JobHandler,
	reviewHandler *reviews.ReviewHandler,
	messageHandler *messages.MessageHandler,
) {
	session := middleware.RequireSession(users)

	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "Backend running")
	})
	e.GET("/healthz", healthz(db))
	e.GET("/metrics", echo.WrapHandler(m.Handler()))

	authGroup := e.Group("/api/auth")
	authGroup.POST("/signup", authHandler.Signup)
	authGroup.POST("/verify-otp", authHandler.VerifyOtp)
	authGroup.POST("/verify-signup-otp", authHandler.VerifyOtp)
	authGroup.POST("/resend-otp", authHandler.ResendOtp)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/forgot-password", authHandler.ForgotPassword)
	authGroup.POST("/verify-reset-otp", authHandler.VerifyResetOtp)
	authGroup.POST("/reset-password", authHandler.ResetPassword)
	authGroup.GET("/me", authHandler.Me, session)

	manageJobs := gate.Require(middleware.PermManageJobs)
	jobGroup := e.Group("/api/jobs", session)
	jobGroup.POST("", jobHandler.Create, manageJobs)
	jobGroup.GET("/my-jobs", jobHandler.MyJobs, manageJobs)
	jobGroup.PUT("/:id", jobHandler.Update, manageJobs)
	jobGroup.DELETE("/:id", jobHandler.Delete, manageJobs)
	jobGroup.GET("", jobHandler.List)
	jobGroup.GET("/:id", jobHandler.Get)

	reviewGroup := e.Group("/api/reviews")
	reviewGroup.GET("/company/:companyId", reviewHandler.Company)
	reviewGroup.POST("", reviewHandler.Create, session)
	reviewGroup.GET("/my-reviews", reviewHandler.Mine, session)
	reviewGroup.PUT("/:id", reviewHandler.Update, session)
	reviewGroup.DELETE("/:id", reviewHandler.Delete, session)

	messageGroup := e.Group("/api/messages", session)
	messageGroup.POST("", messageHandler.Send)
	messageGroup.GET("/conversations", messageHandler.Conversations)
	messageGroup.GET("/unread-count", messageHandler.UnreadCount)
	messageGroup.GET("/:userId", messageHandler.Conversation)
	messageGroup.PATCH("/:messageId/read", messageHandler.MarkRead)
	messageGroup.DELETE("/:messageId", messageHandler.Delete)
}

// Pinger is the database liveness probe used by /healthz.
type Pinger interface {
	Ping(ctx context.Context) error
}

func healthz(db Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"msg": "Database unavailable"})
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	}
}
