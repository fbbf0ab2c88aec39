package db

import (
	"fmt"
	"time"

	"shop/internal/config"
	"shop/internal/domain/model"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect はDBに接続して *gorm.DB を返す。
func Connect(cfg config.Database) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	return gormDB, nil
}

// DB_DRIVERに応じたdialectorを返す
func Dialector(cfg config.Database) (gorm.Dialector, error) {
	switch cfg.Driver {
	case config.DriverMySQL:
		dsn := cfg.MySQLDSN
		// DATABASE_URL があれば最優先で使う
		if cfg.URL != "" {
			dsn = cfg.URL
		}
		return mysql.Open(dsn), nil
	case config.DriverPostgres, "":
		if cfg.URL != "" {
			return postgres.Open(cfg.URL), nil
		}
		return postgres.Open(PostgresDSN(cfg)), nil
	default:
		return nil, fmt.Errorf("unsupported db driver: %s", cfg.Driver)
	}
}

func PostgresDSN(cfg config.Database) string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDB, cfg.PostgresSSLMode,
	)
}

func MigrateOrders(gormDB *gorm.DB) error {
	return gormDB.AutoMigrate(&model.Order{}, &model.OrderLineItem{})
}

func MigrateInventory(gormDB *gorm.DB) error {
	return gormDB.AutoMigrate(&model.Inventory{}, &model.InventoryAdjustment{}, &model.ProcessedOrder{})
}
