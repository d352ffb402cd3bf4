// Command seeduser creates or updates a login account directly in the
// database. Use it to bootstrap the first admin before the API has any
// accounts to authenticate with.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"github.com/Jaypeeeee6/Asset-Tracking-System/internal"
	"github.com/Jaypeeeee6/Asset-Tracking-System/internal/config"
	"github.com/Jaypeeeee6/Asset-Tracking-System/internal/models"
)

func main() {
	username := flag.String("username", "", "account username")
	password := flag.String("password", "", "account password")
	role := flag.String("role", models.RolePurchasing, "account role: admin or purchasing")
	flag.Parse()

	if *username == "" || *password == "" {
		fmt.Println("Usage: seeduser -username=admin -password=... [-role=admin]")
		os.Exit(1)
	}
	if !models.ValidRole(*role) {
		log.Fatalf("Invalid role %q: must be admin or purchasing", *role)
	}
	if len(*password) < 8 {
		log.Fatal("Password must be at least 8 characters")
	}

	cfg := config.Load()
	db, err := sql.Open("sqlite", cfg.DSN())
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := internal.Migrate(ctx, db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	res, err := db.ExecContext(ctx,
		`INSERT INTO users_auth (username, password_hash, role) VALUES (?, ?, ?)
		 ON CONFLICT(username) DO UPDATE SET password_hash = excluded.password_hash,
			role = excluded.role`,
		*username, string(hash), *role)
	if err != nil {
		log.Fatalf("Failed to upsert account: %v", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		fmt.Printf("Account %q ready (role=%s)\n", *username, *role)
	}
}
