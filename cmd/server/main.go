package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iliyamo/auth-rbac/internal/config"
	"github.com/iliyamo/auth-rbac/internal/database"
	"github.com/iliyamo/auth-rbac/internal/handler"
	"github.com/iliyamo/auth-rbac/internal/logging"
	"github.com/iliyamo/auth-rbac/internal/middleware"
	"github.com/iliyamo/auth-rbac/internal/queue"
	"github.com/iliyamo/auth-rbac/internal/repository"
	"github.com/iliyamo/auth-rbac/internal/router"
	"github.com/iliyamo/auth-rbac/internal/service"
	"github.com/iliyamo/auth-rbac/internal/token"
)

func main() {
	cfg := config.MustLoad()
	log := logging.New(cfg.Env, cfg.Log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", slog.Any("err", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return err
	}
	if err := db.Seed(ctx); err != nil {
		return err
	}

	codec, err := token.NewCodec(cfg.Token.SecretKey, cfg.Token.Algorithm)
	if err != nil {
		return err
	}

	mailer, worker, closeMail := buildMailer(cfg, log)
	defer closeMail()
	if worker != nil {
		go func() {
			if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("email consumer stopped", slog.Any("err", err))
			}
		}()
	}

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil {
		log.Warn("redis unreachable, rate limiting disabled")
	} else {
		defer rdb.Close()
	}

	store := repository.NewStore(db)
	auth := service.NewAuthService(store, codec, mailer, log, cfg.Token, cfg.BcryptCost)
	users := service.NewUserService(store, log)
	access := service.NewAccessService(store, log)

	e := router.New(router.Deps{
		Auth:    handler.NewAuthHandler(auth, cfg, log),
		Users:   handler.NewUserHandler(users, auth, log),
		Access:  handler.NewAccessHandler(access, log),
		Authn:   auth,
		Gate:    service.NewPermissionGate(store),
		Limiter: middleware.NewTokenBucket(cfg.RateLimit, rdb, log),
		Log:     log,
	}, cfg.CORSOrigins)

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", slog.String("addr", addr), slog.String("driver", cfg.DB.Driver))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// buildMailer picks SMTP or log-only delivery, and the broker when
// AMQP_URL is set.  The returned consumer is nil unless this process
// should also drain the queue.
func buildMailer(cfg *config.Config, log *slog.Logger) (service.Mailer, *queue.Consumer, func()) {
	var sender queue.Sender = queue.LogSender{Log: log}
	if cfg.SMTP.Server != "" {
		sender = queue.NewSMTPSender(cfg.SMTP)
	} else {
		log.Warn("SMTP_SERVER not set, emails are only logged")
	}

	deliverer := &queue.Deliverer{
		Renderer: queue.Renderer{
			BaseURL: cfg.BaseURL,
			ValidFor: map[queue.EmailKind]time.Duration{
				queue.KindVerifyEmail:   cfg.Token.VerifyEmailTTL(),
				queue.KindPasswordReset: cfg.Token.ResetPasswordTTL(),
			},
		},
		Sender: sender,
		Log:    log,
	}
	direct := &queue.DirectMailer{Deliverer: deliverer, Log: log}
	if cfg.Mail.AMQPURL == "" {
		return direct, nil, func() {}
	}

	pub := queue.NewPublisher(cfg.Mail.AMQPURL, cfg.Mail.Queue)
	mailer := &queue.QueueMailer{Publisher: pub, Fallback: direct, Log: log}
	var worker *queue.Consumer
	if cfg.Mail.WorkerEnabled {
		worker = queue.NewConsumer(cfg.Mail.AMQPURL, cfg.Mail.Queue, deliverer, log)
	}
	return mailer, worker, pub.Close
}
