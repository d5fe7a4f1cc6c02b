package db

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"resto-pos/internal/config"

	_ "github.com/lib/pq"
)

func buildDSN(cfg *config.Config) string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort,
	)
}

func InitDB(cfg *config.Config) *sql.DB {
	db, err := sql.Open("postgres", buildDSN(cfg))
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}

	// One logical operation holds one connection; keep the pool bounded.
	db.SetMaxOpenConns(cfg.DBPoolSize)
	db.SetMaxIdleConns(cfg.DBPoolSize / 2)
	db.SetConnMaxLifetime(time.Hour)

	if err = db.Ping(); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	log.Println("Database connection established")
	return db
}
