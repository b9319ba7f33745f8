package db

import (
	"fmt"
	"log"
	"os"
	"time"

	"foodcourt/internal/config"
	"foodcourt/internal/domain/model"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func gormConfig() *gorm.Config {
	// 見つからないのは正常系なのでログに出さない
	l := logger.New(log.New(os.Stderr, "", log.LstdFlags), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})
	return &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
		Logger:         l,
	}
}

// Connect はDBに接続して *gorm.DB を返す。
func Connect(cfg config.Config) (*gorm.DB, error) {
	switch cfg.DBDriver {
	case "sqlite":
		return OpenSQLite(cfg.SQLitePath)
	case "postgres":
		return gorm.Open(postgres.Open(cfg.PostgresDSN()), gormConfig())
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

// OpenSQLite は開発・テスト用。書き込みは1本の接続に直列化する。
func OpenSQLite(path string) (*gorm.DB, error) {
	g, err := gorm.Open(sqlite.Open(path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"), gormConfig())
	if err != nil {
		return nil, err
	}
	sqlDB, err := g.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return g, nil
}

func Migrate(g *gorm.DB) error {
	return g.AutoMigrate(
		&model.Order{},
		&model.OrderItem{},
		&model.QRToken{},
		&model.CheckoutCounter{},
		&model.CashierSession{},
		&model.Payment{},
		&model.RevenueShare{},
		&model.Setting{},
		&model.AuditLog{},
	)
}
