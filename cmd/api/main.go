package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"foodcourt/internal/config"
	"foodcourt/internal/handler"
	"foodcourt/internal/infra/db"
	"foodcourt/internal/infra/relay"
	infraRepo "foodcourt/internal/infra/repository"
	"foodcourt/internal/lock"
	"foodcourt/internal/logging"
	"foodcourt/internal/notify"
	"foodcourt/internal/server"
	"foodcourt/internal/usecase"

	"github.com/google/uuid"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now().UTC()
}

func main() {
	config.LoadDotEnv(".env", "../.env")
	cfg, err := config.Load()
	if err != nil {
		logging.New("error").Error("config load failed", "error", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()
	if err := db.Migrate(gormDB); err != nil {
		return err
	}

	//Repository（GORM実装）生成
	tx := infraRepo.NewTxManagerGorm(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	itemRepo := infraRepo.NewOrderItemGormRepository(gormDB)
	qrRepo := infraRepo.NewQRTokenGormRepository(gormDB)
	counterRepo := infraRepo.NewCounterGormRepository(gormDB)
	sessionRepo := infraRepo.NewCashierSessionGormRepository(gormDB)
	paymentRepo := infraRepo.NewPaymentGormRepository(gormDB)
	shareRepo := infraRepo.NewRevenueShareGormRepository(gormDB)
	settingRepo := infraRepo.NewSettingGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}
	hub := notify.NewHub(cfg.SubscriberBuffer)
	locks := lock.New(cfg.OpTimeout)

	settings := usecase.NewSettingsStore(settingRepo, auditRepo, clock)
	if err := settings.Seed(ctx); err != nil {
		return err
	}
	splitter := usecase.NewSplitUsecase(settings)

	//Usecase生成
	orderUC := usecase.NewOrderUsecase(tx, orderRepo, itemRepo, locks, hub, clock, idGen)
	qrUC := usecase.NewQRUsecase(tx, qrRepo, settings, locks, hub, clock, idGen)
	counterUC := usecase.NewCounterUsecase(tx, counterRepo, sessionRepo, locks, hub, clock)
	paymentUC := usecase.NewPaymentUsecase(tx, orderRepo, paymentRepo, shareRepo, settings, splitter, locks, hub, clock)

	//外部ブローカーへの転送
	if err := startRelay(ctx, cfg, hub, logger); err != nil {
		return err
	}

	//Handler生成
	events := handler.NewEventHandler(hub, 15*time.Second)
	e := server.NewRouter(server.Deps{
		Logger:         logger,
		JWTSecret:      cfg.JWTSecret,
		RequestTimeout: cfg.OpTimeout * 2,
		Orders:         handler.NewOrderHandler(orderUC, qrUC, paymentUC),
		Counters:       handler.NewCounterHandler(counterUC),
		Payments:       handler.NewPaymentHandler(paymentUC),
		Settings:       handler.NewSettingsHandler(settings, splitter),
		Events:         events,
		Audits:         handler.NewAuditHandler(usecase.NewAuditUsecase(auditRepo)),
	})

	//Server起動
	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}
	return server.Start(ctx, addr, e, logger, events.Close)
}

func startRelay(ctx context.Context, cfg config.Config, hub *notify.Hub, logger *slog.Logger) error {
	var sink relay.Sink
	switch cfg.EventRelay {
	case "rabbitmq":
		s, err := relay.DialRabbit(cfg.RabbitMQURL, cfg.RabbitMQExchange)
		if err != nil {
			return err
		}
		sink = s
	case "kafka":
		sink = relay.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic)
	default:
		return nil
	}

	sub := hub.SubscribeAll()
	go func() {
		defer sub.Close()
		defer func() {
			if err := sink.Close(); err != nil {
				logger.Warn("relay close failed", "error", err)
			}
		}()
		relay.Run(ctx, sub, sink, logger.With("relay", cfg.EventRelay))
		if n := sub.Dropped(); n > 0 {
			logger.Warn("relay dropped events", "count", n)
		}
	}()
	logger.Info("event relay started", "relay", cfg.EventRelay)
	return nil
}
