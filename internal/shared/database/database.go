package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB holds the gorm handle of store-api and the pool underneath it
type DB struct {
	*sql.DB
	GORM *gorm.DB
}

// PoolConfig sizes the connection pool
type PoolConfig struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
}

var defaultPool = PoolConfig{MaxOpen: 25, MaxIdle: 5, MaxLifetime: time.Hour}

// NewDB opens postgres through gorm and pings it. SQL statements are logged
// at Info outside production, errors only in production.
func NewDB(connStr string, production bool) *DB {
	if connStr == "" {
		log.Fatal().Msg("❌ DATABASE_URL is empty")
	}

	level := logger.Info
	if production {
		level = logger.Error
	}

	gormDB, err := gorm.Open(postgres.Open(connStr), &gorm.Config{
		Logger:  logger.Default.LogMode(level),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		log.Fatal().Err(err).Msg("❌ failed to open database")
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("❌ failed to get sql.DB")
	}
	sqlDB.SetMaxOpenConns(defaultPool.MaxOpen)
	sqlDB.SetMaxIdleConns(defaultPool.MaxIdle)
	sqlDB.SetConnMaxLifetime(defaultPool.MaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("❌ failed to ping database")
	}

	log.Info().Int("max_open", defaultPool.MaxOpen).Msg("✅ chat store database connected")
	return &DB{DB: sqlDB, GORM: gormDB}
}

func (db *DB) Close() error {
	log.Info().Msg("🔌 closing chat store database")
	return db.DB.Close()
}
