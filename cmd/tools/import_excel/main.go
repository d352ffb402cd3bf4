// Command import_excel loads assets from a workbook without going through
// the HTTP API.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	_ "modernc.org/sqlite"

	"github.com/Jaypeeeee6/Asset-Tracking-System/internal"
	"github.com/Jaypeeeee6/Asset-Tracking-System/internal/config"
	"github.com/Jaypeeeee6/Asset-Tracking-System/pkg/importer"
)

func main() {
	filePath := flag.String("file", "", "workbook to import (.xlsx)")
	mapping := flag.String("mapping", "", "optional YAML column mapping")
	dryRun := flag.Bool("dry-run", false, "report what would change without writing")
	flag.Parse()

	if *filePath == "" {
		fmt.Println("Usage: import_excel -file=assets.xlsx [-mapping=mapping.yaml] [-dry-run]")
		os.Exit(1)
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

	f, err := os.Open(*filePath)
	if err != nil {
		log.Fatalf("Failed to open workbook: %v", err)
	}
	defer f.Close()

	sum, err := importer.ImportExcel(ctx, db, f, importer.Options{
		MappingPath: *mapping,
		DryRun:      *dryRun,
	})
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	fmt.Printf("created=%d merged=%d skipped=%d errors=%d dry_run=%v\n",
		sum.Created, sum.Merged, sum.Skipped, sum.Errors, sum.DryRun)
	for _, e := range sum.Samples {
		fmt.Printf("  %s row %d: %s\n", e.Sheet, e.Row, e.Message)
	}
}
