// README: Entry point; loads config, wires services, starts the HTTP server and the outbox worker.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"transfers/internal/config"
	"transfers/internal/document"
	httptransport "transfers/internal/http"
	"transfers/internal/infra"
	"transfers/internal/logger"
	"transfers/internal/maps"
	"transfers/internal/modules/catalog"
	"transfers/internal/modules/client"
	"transfers/internal/modules/draft"
	"transfers/internal/modules/notification"
	"transfers/internal/modules/pricing"
	"transfers/internal/modules/reservation"
	"transfers/internal/outbox"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	lg := logger.New(cfg.ServiceName, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	verifier, err := newVerifier(ctx, cfg)
	if err != nil {
		log.Fatalf("auth init: %v", err)
	}

	changed, err := infra.RunMigrations(cfg.DB.MigrationsDir, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err)
	}
	lg.Info("migrations checked", logger.Bool("applied", changed))

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err)
	}
	defer dbPool.Close()

	redisClient, err := infra.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password)
	if err != nil {
		log.Fatal(err)
	}
	defer redisClient.Close()

	queue := newQueue(cfg, redisClient, lg)

	catalogSvc := catalog.NewService(catalog.NewStore(dbPool))
	clientSvc := client.NewService(client.NewStore(dbPool))
	pricingSvc := pricing.NewService(pricing.NewStore(dbPool), cfg.Currency)
	reservationSvc := reservation.NewService(
		reservation.NewStore(dbPool),
		catalogSvc,
		clientSvc,
		pricingSvc,
		queue,
		lg.With(logger.String("module", "reservation")),
		reservation.Options{
			NotifyClientOnSubmit: cfg.Email.NotifyClientOnSubmit,
			Currency:             cfg.Currency,
		},
	)
	draftSvc := draft.NewService(draft.NewStore(redisClient, ""), cfg.Drafts.TTL)

	places, err := maps.NewPlacesService(cfg.Maps.APIKey, cfg.Maps.Language)
	if err != nil {
		log.Fatalf("maps init: %v", err)
	}
	if places == nil {
		lg.Warning("address autocomplete disabled: no maps api key")
	}

	voucher := document.NewRenderer(cfg.Email.SenderName)
	dispatcher, err := newDispatcher(cfg, reservationSvc, voucher, lg)
	if err != nil {
		log.Fatalf("notification init: %v", err)
	}

	handler := httptransport.NewServer(httptransport.ServerDeps{
		Catalog:      catalogSvc,
		Pricing:      pricingSvc,
		Reservations: reservationSvc,
		Drafts:       draftSvc,
		Places:       places,
		Voucher:      voucher,
		Verifier:     verifier,
		Log:          lg.With(logger.String("module", "http")),
		CORSOrigins:  cfg.HTTP.CORSOrigins,
		Language:     cfg.Maps.Language,
	})

	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := queue.Run(ctx, dispatcher); err != nil {
			lg.Error("outbox worker stopped", logger.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	lg.Info("http server listening", logger.String("addr", cfg.HTTP.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

func newVerifier(ctx context.Context, cfg config.Config) (infra.TokenVerifier, error) {
	if cfg.Auth.Mode == config.AuthModeFirebase {
		return infra.NewFirebaseVerifier(ctx, cfg.Auth.FirebaseProject, cfg.Auth.CredentialsFile)
	}
	return infra.NewJWTVerifier(cfg.Auth.JWTSecret)
}

func newQueue(cfg config.Config, rdb *redis.Client, lg logger.Logger) outbox.Queue {
	qlog := lg.With(logger.String("module", "outbox"))
	if cfg.Outbox.Driver == config.OutboxRedis {
		return outbox.NewRedisQueue(rdb, cfg.Outbox.Key, cfg.Outbox.PollEvery, qlog)
	}
	return outbox.NewMemoryQueue(cfg.Outbox.Buffer, qlog)
}

func newDispatcher(cfg config.Config, snapshots notification.SnapshotLoader, voucher *document.Renderer, lg logger.Logger) (*notification.Dispatcher, error) {
	templates, err := notification.LoadTemplates()
	if err != nil {
		return nil, err
	}
	email := notification.NewEmailSender(cfg.Email, &http.Client{Timeout: 15 * time.Second})

	admins := notification.FanoutAdmin{email}
	tg, err := notification.NewTelegramAdminSender(cfg.Telegram.Token, cfg.Telegram.AdminChatID, "")
	if err != nil {
		return nil, err
	}
	if tg != nil {
		admins = append(admins, tg)
	}

	return notification.NewDispatcher(snapshots, templates, email, admins, voucher, lg.With(logger.String("module", "notification")), notification.Options{
		Company:   cfg.Email.SenderName,
		ReviewURL: cfg.Email.ReviewURL,
		Language:  cfg.Maps.Language,
	}), nil
}
