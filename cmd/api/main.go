package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Jaypeeeee6/Asset-Tracking-System/internal"
	"github.com/Jaypeeeee6/Asset-Tracking-System/internal/config"
)

func main() {
	cfg, err := config.LoadAndValidate()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	db, err := sql.Open("sqlite", cfg.DSN())
	if err != nil {
		log.Fatal("Failed to open database:", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		log.Fatal("Database ping failed:", err)
	}

	if err := internal.Migrate(ctx, db); err != nil {
		log.Fatal("Migration failed:", err)
	}

	srv := internal.NewServer(db, cfg)

	log.Println("Starting Asset Tracking System API...")
	log.Printf("Database: %s", cfg.DBPath)
	log.Printf("JWT Issuer: %s", cfg.JWTIssuer)
	log.Printf("JWT Expiry: %v", cfg.JWTExpiry)
	log.Printf("Listening on %s", cfg.ListenAddr)

	log.Fatal(http.ListenAndServe(cfg.ListenAddr, srv.Router))
}
