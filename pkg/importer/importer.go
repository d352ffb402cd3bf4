// Package importer loads assets from Excel workbooks. Rows merge into
// existing assets by name, building and department the same way the create
// endpoint does, so an import can be re-run safely.
package importer

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/tealeg/xlsx/v3"
	"gopkg.in/yaml.v3"

	"github.com/Jaypeeeee6/Asset-Tracking-System/internal/assetcode"
)

// Options defines the configuration for an Excel import run.
type Options struct {
	MappingPath string // optional YAML column mapping; defaults are built in
	DryRun      bool
	MaxErrors   int // default 50
}

// RowError describes one rejected row.
type RowError struct {
	Sheet   string `json:"sheet"`
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// Summary contains the overall import statistics. In a dry run the counts
// reflect what a real run would have done; nothing is committed.
type Summary struct {
	Created int        `json:"created"`
	Merged  int        `json:"merged"`
	Skipped int        `json:"skipped"`
	Errors  int        `json:"errors"`
	Samples []RowError `json:"error_samples,omitempty"`
	DryRun  bool       `json:"dry_run"`
}

// MappingConfig maps workbook columns onto asset fields.
type MappingConfig struct {
	Version   int               `yaml:"version"`
	Sheet     string            `yaml:"sheet"`      // empty means every sheet
	HeaderRow int               `yaml:"header_row"` // zero-based, default 0
	Columns   map[string]string `yaml:"columns"`    // header text -> asset field
	Defaults  map[string]string `yaml:"defaults"`   // asset field -> value
}

// assetFields is the closed set of importable fields.
var assetFields = map[string]bool{
	"name":        true,
	"quantity":    true,
	"price":       true,
	"owner":       true,
	"building":    true,
	"department":  true,
	"used_status": true,
	"asset_type":  true,
}

func defaultMapping() *MappingConfig {
	return &MappingConfig{
		Version:   1,
		HeaderRow: 0,
		Columns: map[string]string{
			"Name":       "name",
			"Quantity":   "quantity",
			"Price":      "price",
			"Owner":      "owner",
			"Building":   "building",
			"Department": "department",
			"Status":     "used_status",
			"Type":       "asset_type",
		},
		Defaults: map[string]string{
			"owner":       "No Owner",
			"used_status": "Not Used",
			"asset_type":  "Others",
		},
	}
}

func loadMapping(path string) (*MappingConfig, error) {
	if path == "" {
		return defaultMapping(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mapping: %w", err)
	}
	cfg := defaultMapping()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse mapping: %w", err)
	}
	for _, field := range cfg.Columns {
		if !assetFields[field] {
			return nil, fmt.Errorf("mapping references unknown field %q", field)
		}
	}
	return cfg, nil
}

// ImportExcel reads a workbook and applies every mapped row inside one
// transaction. A dry run rolls the transaction back instead of committing,
// so the summary is accurate but the store is untouched.
func ImportExcel(ctx context.Context, db *sql.DB, r io.Reader, opts Options) (Summary, error) {
	summary := Summary{DryRun: opts.DryRun}
	if opts.MaxErrors == 0 {
		opts.MaxErrors = 50
	}

	mapping, err := loadMapping(opts.MappingPath)
	if err != nil {
		return summary, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return summary, fmt.Errorf("read workbook: %w", err)
	}
	wb, err := xlsx.OpenBinary(data)
	if err != nil {
		return summary, fmt.Errorf("open workbook: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return summary, err
	}
	defer tx.Rollback()

	for _, sheet := range wb.Sheets {
		if mapping.Sheet != "" && sheet.Name != mapping.Sheet {
			continue
		}
		if err := importSheet(ctx, tx, sheet, mapping, &summary); err != nil {
			return summary, err
		}
		if summary.Errors > opts.MaxErrors {
			return summary, fmt.Errorf("too many errors (%d), stopping import", summary.Errors)
		}
	}

	if opts.DryRun {
		return summary, nil
	}
	return summary, tx.Commit()
}

func importSheet(ctx context.Context, tx *sql.Tx, sheet *xlsx.Sheet, mapping *MappingConfig, summary *Summary) error {
	headerRow, err := sheet.Row(mapping.HeaderRow)
	if err != nil {
		return nil // empty sheet
	}

	// column index -> asset field
	fields := map[int]string{}
	for colIdx := 0; ; colIdx++ {
		cell := headerRow.GetCell(colIdx)
		if cell == nil {
			break
		}
		header := strings.TrimSpace(cell.String())
		if header == "" {
			break
		}
		for mapped, field := range mapping.Columns {
			if strings.EqualFold(mapped, header) {
				fields[colIdx] = field
				break
			}
		}
	}
	if len(fields) == 0 {
		return nil
	}

	for rowIdx := mapping.HeaderRow + 1; rowIdx < sheet.MaxRow; rowIdx++ {
		row, err := sheet.Row(rowIdx)
		if err != nil {
			break
		}

		values := map[string]string{}
		empty := true
		for colIdx, field := range fields {
			cell := row.GetCell(colIdx)
			if cell == nil {
				continue
			}
			v := strings.TrimSpace(cell.String())
			if v != "" {
				values[field] = v
				empty = false
			}
		}
		if empty {
			summary.Skipped++
			continue
		}

		for field, v := range mapping.Defaults {
			if values[field] == "" {
				values[field] = v
			}
		}

		if err := importRow(ctx, tx, values, summary); err != nil {
			summary.Errors++
			if len(summary.Samples) < 10 {
				summary.Samples = append(summary.Samples, RowError{
					Sheet:   sheet.Name,
					Row:     rowIdx + 1,
					Message: err.Error(),
				})
			}
		}
	}
	return nil
}

func importRow(ctx context.Context, tx *sql.Tx, values map[string]string, summary *Summary) error {
	name := values["name"]
	building := values["building"]
	department := values["department"]
	if name == "" || building == "" || department == "" {
		return fmt.Errorf("name, building and department are required")
	}

	quantity := 1
	if v := values["quantity"]; v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid quantity %q", v)
		}
		quantity = n
	}
	price := 0.0
	if v := values["price"]; v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("invalid price %q", v)
		}
		price = f
	}

	var existingID int64
	var existingQty int
	err := tx.QueryRowContext(ctx,
		`SELECT id, quantity FROM assets WHERE name = ? AND building = ? AND department = ?`,
		name, building, department).Scan(&existingID, &existingQty)
	switch {
	case err == nil:
		// Merge never touches the stored price.
		if _, err := tx.ExecContext(ctx,
			`UPDATE assets SET quantity = ?, owner = ?, used_status = ?, asset_type = ?
			 WHERE id = ?`,
			existingQty+quantity, values["owner"], values["used_status"],
			values["asset_type"], existingID); err != nil {
			return err
		}
		summary.Merged++
	case err == sql.ErrNoRows:
		code, err := assetcode.Next(ctx, tx, building, department)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO assets (name, quantity, price, owner, building, department,
				asset_code, qr_random_code, used_status, asset_type)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			name, quantity, price, values["owner"], building, department,
			code, uuid.NewString(), values["used_status"], values["asset_type"]); err != nil {
			return err
		}
		summary.Created++
	default:
		return err
	}
	return nil
}
