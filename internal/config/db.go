package config

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"travelcheckout/internal/utils"

	"github.com/go-sql-driver/mysql"
)

var (
	DB   *sql.DB
	dbMu sync.Mutex
)

// DSN renders the MySQL connection string for the configured database.
func (e Env) DSN() string {
	cfg := mysql.NewConfig()
	cfg.User = e.DBUser
	cfg.Passwd = e.DBPassword
	cfg.Net = "tcp"
	cfg.Addr = e.DBHost
	cfg.DBName = e.DBName
	cfg.ParseTime = true
	cfg.Loc = time.Local
	cfg.Timeout = 5 * time.Second
	cfg.ReadTimeout = 30 * time.Second
	cfg.WriteTimeout = 30 * time.Second
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}

// ConnectDB opens the shared pool once; later calls return it.
func ConnectDB(e Env) (*sql.DB, error) {
	dbMu.Lock()
	defer dbMu.Unlock()
	if DB != nil {
		return DB, nil
	}

	pool, err := sql.Open("mysql", e.DSN())
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	pool.SetMaxOpenConns(25)
	pool.SetMaxIdleConns(25)
	pool.SetConnMaxLifetime(10 * time.Minute)
	pool.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("ping db %s/%s: %w", e.DBHost, e.DBName, err)
	}

	DB = pool
	utils.LogEvent("", "db", "connect", "bookings database "+e.DBHost+"/"+e.DBName+" ready")
	return DB, nil
}

func CloseDB() {
	dbMu.Lock()
	defer dbMu.Unlock()
	if DB == nil {
		return
	}
	_ = DB.Close()
	DB = nil
}
