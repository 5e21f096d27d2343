package cgbdb

import (
	"context"
	"database/sql"
	"sync"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/nk-nigeria/vip-module/entity"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	mapDbMu sync.Mutex
	mapDb   = make(map[*sql.DB]*gorm.DB)
)

func AutoMigrate(ctx context.Context, nkLogger runtime.Logger, db *sql.DB) {
	gDb, err := NewGormContext(ctx, db)
	if err != nil {
		nkLogger.Error("Open gorm error %s", err.Error())
		return
	}
	if err := gDb.AutoMigrate(new(entity.Wager)); err != nil {
		nkLogger.Error("Auto migrate wager error %s", err.Error())
	}
}

func NewGorm(db *sql.DB) (*gorm.DB, error) {
	mapDbMu.Lock()
	defer mapDbMu.Unlock()
	gormDb, found := mapDb[db]
	if found {
		return gormDb, nil
	}
	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	mapDb[db] = gormDB
	return gormDB, nil
}

func NewGormContext(ctx context.Context, db *sql.DB) (*gorm.DB, error) {
	gormDB, err := NewGorm(db)
	if err != nil {
		return nil, err
	}
	return gormDB.WithContext(ctx), nil
}
