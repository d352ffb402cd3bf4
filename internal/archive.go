package internal

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Jaypeeeee6/Asset-Tracking-System/internal/assetcode"
	"github.com/Jaypeeeee6/Asset-Tracking-System/internal/models"
)

var archiveSortColumns = map[string]string{
	"id":          "id",
	"name":        "name",
	"quantity":    "quantity",
	"owner":       "owner",
	"building":    "building",
	"department":  "department",
	"asset_code":  "asset_code",
	"archived_at": "archived_at",
	"archived_by": "archived_by",
}

const archivedColumns = `id, COALESCE(original_id, 0), name, quantity, price, owner,
	building, department, COALESCE(asset_code, ''), COALESCE(qr_random_code, ''),
	used_status, asset_type, archived_at, COALESCE(archived_by, ''), COALESCE(archive_reason, '')`

func scanArchived(s interface{ Scan(...any) error }) (models.ArchivedAsset, error) {
	var a models.ArchivedAsset
	err := s.Scan(&a.ID, &a.OriginalID, &a.Name, &a.Quantity, &a.Price, &a.Owner,
		&a.Building, &a.Department, &a.AssetCode, &a.QRRandomCode, &a.UsedStatus,
		&a.AssetType, &a.ArchivedAt, &a.ArchivedBy, &a.ArchiveReason)
	return a, err
}

// listArchivedAssets serves the archive view, paginated and searchable.
func (s *Server) listArchivedAssets(w http.ResponseWriter, r *http.Request) {
	p := parseListParams(r)

	where := ""
	var args []any
	if p.search != "" {
		like := "%" + p.search + "%"
		where = ` WHERE (name LIKE ? OR owner LIKE ? OR building LIKE ?
			OR department LIKE ? OR asset_code LIKE ? OR archived_by LIKE ?)`
		args = append(args, like, like, like, like, like, like)
	}

	var total int
	if err := s.DB.QueryRowContext(r.Context(),
		`SELECT COUNT(*) FROM archived_assets`+where, args...).Scan(&total); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to count archived assets")
		return
	}

	rows, err := s.DB.QueryContext(r.Context(),
		`SELECT `+archivedColumns+` FROM archived_assets`+where+
			buildOrderBy(p, archiveSortColumns)+` LIMIT ? OFFSET ?`,
		append(args, p.perPage, p.offset())...)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list archived assets")
		return
	}
	defer rows.Close()

	archived := []models.ArchivedAsset{}
	for rows.Next() {
		a, err := scanArchived(rows)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to scan archived asset")
			return
		}
		archived = append(archived, a)
	}
	if err := rows.Err(); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list archived assets")
		return
	}

	sendListResponse(w, "archived_assets", archived, total, p, nil)
}

// restoreAssetTx moves one archived row back to the live table. If a live
// asset with the same name, building and department already exists the
// quantities merge and status and type are overwritten; the live owner is
// kept as-is. Otherwise a new live row is inserted under a freshly
// allocated code, so a restored asset never reuses its retired number.
func restoreAssetTx(ctx context.Context, tx *sql.Tx, archiveID int64) error {
	a, err := scanArchived(tx.QueryRowContext(ctx,
		`SELECT `+archivedColumns+` FROM archived_assets WHERE id = ?`, archiveID))
	if err != nil {
		return err
	}

	var liveID int64
	var liveQty int
	err = tx.QueryRowContext(ctx,
		`SELECT id, quantity FROM assets WHERE name = ? AND building = ? AND department = ?`,
		a.Name, a.Building, a.Department).Scan(&liveID, &liveQty)
	switch {
	case err == nil:
		if _, err := tx.ExecContext(ctx,
			`UPDATE assets SET quantity = ?, used_status = ?, asset_type = ? WHERE id = ?`,
			liveQty+a.Quantity, a.UsedStatus, a.AssetType, liveID); err != nil {
			return err
		}
	case err == sql.ErrNoRows:
		code, err := assetcode.Next(ctx, tx, a.Building, a.Department)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO assets (name, quantity, price, owner, building, department,
				asset_code, qr_random_code, used_status, asset_type)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.Name, a.Quantity, a.Price, a.Owner, a.Building, a.Department,
			code, a.QRRandomCode, a.UsedStatus, a.AssetType); err != nil {
			return err
		}
	default:
		return err
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM archived_assets WHERE id = ?`, archiveID)
	return err
}

// restoreAsset brings a single archived asset back into service.
func (s *Server) restoreAsset(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid archive id")
		return
	}

	ctx := r.Context()
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to begin transaction")
		return
	}
	defer tx.Rollback()

	if err := restoreAssetTx(ctx, tx, id); err != nil {
		if err == sql.ErrNoRows {
			writeError(w, http.StatusNotFound, "archived asset not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to restore asset")
		return
	}
	if err := tx.Commit(); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to commit")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"restored": 1})
}

// bulkRestoreAssets restores several archived assets in one transaction.
func (s *Server) bulkRestoreAssets(w http.ResponseWriter, r *http.Request) {
	var req models.BulkIDsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.AssetIDs) == 0 {
		writeError(w, http.StatusBadRequest, "asset_ids must not be empty")
		return
	}

	ctx := r.Context()
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to begin transaction")
		return
	}
	defer tx.Rollback()

	restored := 0
	skipped := []int64{}
	for _, id := range req.AssetIDs {
		switch err := restoreAssetTx(ctx, tx, id); err {
		case nil:
			restored++
		case sql.ErrNoRows:
			skipped = append(skipped, id)
		default:
			writeError(w, http.StatusInternalServerError, "failed to restore assets")
			return
		}
	}
	if err := tx.Commit(); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to commit")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"restored": restored, "skipped": skipped})
}

// purgeArchivedAsset permanently deletes an archived row. Purging removes
// the row from the allocator's view, so its number can be issued again; it
// is an explicit admin action, not part of the normal archive flow.
func (s *Server) purgeArchivedAsset(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid archive id")
		return
	}

	res, err := s.DB.ExecContext(r.Context(),
		`DELETE FROM archived_assets WHERE id = ?`, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete archived asset")
		return
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		writeError(w, http.StatusNotFound, "archived asset not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"deleted": 1})
}

// bulkPurgeArchivedAssets permanently deletes several archived rows.
func (s *Server) bulkPurgeArchivedAssets(w http.ResponseWriter, r *http.Request) {
	var req models.BulkIDsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.AssetIDs) == 0 {
		writeError(w, http.StatusBadRequest, "asset_ids must not be empty")
		return
	}

	placeholders := strings.Repeat("?,", len(req.AssetIDs))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, 0, len(req.AssetIDs))
	for _, id := range req.AssetIDs {
		args = append(args, id)
	}

	res, err := s.DB.ExecContext(r.Context(),
		`DELETE FROM archived_assets WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete archived assets")
		return
	}
	deleted, _ := res.RowsAffected()
	writeJSON(w, http.StatusOK, map[string]interface{}{"deleted": deleted})
}
