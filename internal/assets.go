package internal

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Jaypeeeee6/Asset-Tracking-System/internal/assetcode"
	"github.com/Jaypeeeee6/Asset-Tracking-System/internal/auth"
	"github.com/Jaypeeeee6/Asset-Tracking-System/internal/models"
)

// assetSortColumns whitelists the sortable columns of the asset list.
var assetSortColumns = map[string]string{
	"id":          "id",
	"name":        "name",
	"quantity":    "quantity",
	"price":       "price",
	"owner":       "owner",
	"building":    "building",
	"department":  "department",
	"asset_code":  "asset_code",
	"used_status": "used_status",
	"asset_type":  "asset_type",
}

const assetColumns = `id, name, quantity, price, owner, building, department,
	COALESCE(asset_code, ''), COALESCE(qr_random_code, ''), used_status, asset_type`

func scanAsset(s interface{ Scan(...any) error }) (models.Asset, error) {
	var a models.Asset
	err := s.Scan(&a.ID, &a.Name, &a.Quantity, &a.Price, &a.Owner, &a.Building,
		&a.Department, &a.AssetCode, &a.QRRandomCode, &a.UsedStatus, &a.AssetType)
	return a, err
}

// assetFilters builds the WHERE clause for the dashboard from the query
// string. Search matches any of the six visible text columns.
func assetFilters(r *http.Request, p listParams) (string, []any) {
	var conds []string
	var args []any

	for param, col := range map[string]string{
		"building":   "building",
		"department": "department",
		"status":     "used_status",
		"asset_type": "asset_type",
	} {
		if v := strings.TrimSpace(r.URL.Query().Get(param)); v != "" {
			conds = append(conds, col+" = ?")
			args = append(args, v)
		}
	}

	if p.search != "" {
		like := "%" + p.search + "%"
		conds = append(conds, `(name LIKE ? OR owner LIKE ? OR building LIKE ?
			OR department LIKE ? OR asset_code LIKE ? OR asset_type LIKE ?)`)
		args = append(args, like, like, like, like, like, like)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// dashboardAssets serves the main filtered, sorted, paginated asset list
// together with the aggregate chart counts for the same filter.
func (s *Server) dashboardAssets(w http.ResponseWriter, r *http.Request) {
	p := parseListParams(r)
	where, args := assetFilters(r, p)

	var total int
	if err := s.DB.QueryRowContext(r.Context(),
		`SELECT COUNT(*) FROM assets`+where, args...).Scan(&total); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to count assets")
		return
	}

	query := `SELECT ` + assetColumns + ` FROM assets` + where +
		buildOrderBy(p, assetSortColumns) + ` LIMIT ? OFFSET ?`
	rows, err := s.DB.QueryContext(r.Context(), query, append(args, p.perPage, p.offset())...)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list assets")
		return
	}
	defer rows.Close()

	assets := []models.Asset{}
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to scan asset")
			return
		}
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list assets")
		return
	}

	charts, err := s.assetCharts(r.Context(), where, args)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to aggregate assets")
		return
	}

	sendListResponse(w, "assets", assets, total, p, map[string]interface{}{"charts": charts})
}

// assetCharts aggregates quantities for the dashboard charts under the same
// filter as the list itself.
func (s *Server) assetCharts(ctx context.Context, where string, args []any) (*models.DashboardCharts, error) {
	charts := &models.DashboardCharts{
		ByBuilding: map[string]int{},
		ByStatus:   map[string]int{},
		ByType:     map[string]int{},
	}
	for col, dst := range map[string]map[string]int{
		"building":    charts.ByBuilding,
		"used_status": charts.ByStatus,
		"asset_type":  charts.ByType,
	} {
		rows, err := s.DB.QueryContext(ctx,
			`SELECT `+col+`, SUM(quantity) FROM assets`+where+` GROUP BY `+col, args...)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var key string
			var n int
			if err := rows.Scan(&key, &n); err != nil {
				rows.Close()
				return nil, err
			}
			dst[key] = n
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	return charts, nil
}

// listAssets returns a plain paginated list without charts.
func (s *Server) listAssets(w http.ResponseWriter, r *http.Request) {
	p := parseListParams(r)
	where, args := assetFilters(r, p)

	var total int
	if err := s.DB.QueryRowContext(r.Context(),
		`SELECT COUNT(*) FROM assets`+where, args...).Scan(&total); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to count assets")
		return
	}

	rows, err := s.DB.QueryContext(r.Context(),
		`SELECT `+assetColumns+` FROM assets`+where+
			buildOrderBy(p, assetSortColumns)+` LIMIT ? OFFSET ?`,
		append(args, p.perPage, p.offset())...)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list assets")
		return
	}
	defer rows.Close()

	assets := []models.Asset{}
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to scan asset")
			return
		}
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list assets")
		return
	}

	sendListResponse(w, "assets", assets, total, p, nil)
}

// createAsset adds an asset. When a live row already exists with the same
// name, building and department, the request merges into it: quantity is
// added and owner, status and type are overwritten. Otherwise a new row is
// inserted with a freshly allocated asset code. Both paths run inside one
// write transaction so the code allocator never races a concurrent insert.
func (s *Server) createAsset(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Building = strings.TrimSpace(req.Building)
	req.Department = strings.TrimSpace(req.Department)
	if req.Name == "" || req.Building == "" || req.Department == "" {
		writeError(w, http.StatusBadRequest, "name, building and department are required")
		return
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}
	if req.NoOwner || strings.TrimSpace(req.Owner) == "" {
		req.Owner = models.NoOwnerSentinel
	}
	if req.UsedStatus == "" {
		req.UsedStatus = models.StatusNotUsed
	}
	if !models.ValidStatus(req.UsedStatus) {
		writeError(w, http.StatusBadRequest, "invalid used_status")
		return
	}
	price := 0.0
	if req.Price != nil {
		if *req.Price < 0 {
			writeError(w, http.StatusBadRequest, "price must not be negative")
			return
		}
		price = *req.Price
	}

	ctx := r.Context()
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to begin transaction")
		return
	}
	defer tx.Rollback()

	var existingID int64
	var existingQty int
	err = tx.QueryRowContext(ctx,
		`SELECT id, quantity FROM assets WHERE name = ? AND building = ? AND department = ?`,
		req.Name, req.Building, req.Department).Scan(&existingID, &existingQty)
	switch {
	case err == nil:
		// Merging leaves the stored price alone; only a full update may
		// change it.
		_, err = tx.ExecContext(ctx,
			`UPDATE assets SET quantity = ?, owner = ?, used_status = ?, asset_type = ?
			 WHERE id = ?`,
			existingQty+req.Quantity, req.Owner, req.UsedStatus, req.AssetType, existingID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to merge asset")
			return
		}
		if err := tx.Commit(); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to commit")
			return
		}
		a, err := s.getAssetByID(ctx, existingID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load asset")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"asset": a, "merged": true})
	case err == sql.ErrNoRows:
		code, err := assetcode.Next(ctx, tx, req.Building, req.Department)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to allocate asset code")
			return
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO assets (name, quantity, price, owner, building, department,
				asset_code, qr_random_code, used_status, asset_type)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			req.Name, req.Quantity, price, req.Owner, req.Building, req.Department,
			code, uuid.NewString(), req.UsedStatus, req.AssetType)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to insert asset")
			return
		}
		id, err := res.LastInsertId()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to read insert id")
			return
		}
		if err := tx.Commit(); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to commit")
			return
		}
		a, err := s.getAssetByID(ctx, id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load asset")
			return
		}
		writeJSON(w, http.StatusCreated, map[string]interface{}{"asset": a, "merged": false})
	default:
		writeError(w, http.StatusInternalServerError, "failed to look up asset")
	}
}

func (s *Server) getAssetByID(ctx context.Context, id int64) (models.Asset, error) {
	return scanAsset(s.DB.QueryRowContext(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE id = ?`, id))
}

// updateAsset overwrites every editable field of an asset. The asset code
// and qr_random_code are immutable after creation.
func (s *Server) updateAsset(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid asset id")
		return
	}

	var req models.UpdateAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Building = strings.TrimSpace(req.Building)
	req.Department = strings.TrimSpace(req.Department)
	if req.Name == "" || req.Building == "" || req.Department == "" {
		writeError(w, http.StatusBadRequest, "name, building and department are required")
		return
	}
	if req.Quantity <= 0 {
		writeError(w, http.StatusBadRequest, "quantity must be positive")
		return
	}
	if req.NoOwner || strings.TrimSpace(req.Owner) == "" {
		req.Owner = models.NoOwnerSentinel
	}
	if !models.ValidStatus(req.UsedStatus) {
		writeError(w, http.StatusBadRequest, "invalid used_status")
		return
	}
	price := 0.0
	if req.Price != nil {
		if *req.Price < 0 {
			writeError(w, http.StatusBadRequest, "price must not be negative")
			return
		}
		price = *req.Price
	}

	res, err := s.DB.ExecContext(r.Context(),
		`UPDATE assets SET name = ?, quantity = ?, price = ?, owner = ?, building = ?,
			department = ?, used_status = ?, asset_type = ? WHERE id = ?`,
		req.Name, req.Quantity, price, req.Owner, req.Building, req.Department,
		req.UsedStatus, req.AssetType, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update asset")
		return
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		writeError(w, http.StatusNotFound, "asset not found")
		return
	}

	a, err := s.getAssetByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load asset")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"asset": a})
}

// archiveAssetTx copies one live row into archived_assets with the actor and
// reason, then deletes the live row. Callers own the transaction.
func archiveAssetTx(ctx context.Context, tx *sql.Tx, id int64, actor, reason string) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO archived_assets (original_id, name, quantity, price, owner,
			building, department, asset_code, qr_random_code, used_status, asset_type,
			archived_by, archive_reason)
		 SELECT id, name, quantity, price, owner, building, department, asset_code,
			qr_random_code, used_status, asset_type, ?, ?
		 FROM assets WHERE id = ?`,
		actor, reason, id)
	if err != nil {
		return err
	}
	copied, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if copied == 0 {
		return sql.ErrNoRows
	}
	_, err = tx.ExecContext(ctx, `DELETE FROM assets WHERE id = ?`, id)
	return err
}

// deleteAsset archives an asset: the row is copied to the archive with the
// acting username and a reason, then removed from the live table.
func (s *Server) deleteAsset(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid asset id")
		return
	}

	var req models.DeleteAssetRequest
	if r.Body != nil {
		// body is optional; ignore decode errors from an empty body
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = models.DefaultArchiveReason
	}
	actor := auth.UsernameFromContext(r.Context())

	ctx := r.Context()
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to begin transaction")
		return
	}
	defer tx.Rollback()

	if err := archiveAssetTx(ctx, tx, id, actor, reason); err != nil {
		if err == sql.ErrNoRows {
			writeError(w, http.StatusNotFound, "asset not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to archive asset")
		return
	}
	if err := tx.Commit(); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to commit")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"archived": 1})
}

// bulkDeleteAssets archives several assets in one transaction. Unknown ids
// are skipped and reported.
func (s *Server) bulkDeleteAssets(w http.ResponseWriter, r *http.Request) {
	var req models.BulkIDsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.AssetIDs) == 0 {
		writeError(w, http.StatusBadRequest, "asset_ids must not be empty")
		return
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = models.DefaultArchiveReason
	}
	actor := auth.UsernameFromContext(r.Context())

	ctx := r.Context()
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to begin transaction")
		return
	}
	defer tx.Rollback()

	archived := 0
	skipped := []int64{}
	for _, id := range req.AssetIDs {
		switch err := archiveAssetTx(ctx, tx, id, actor, reason); err {
		case nil:
			archived++
		case sql.ErrNoRows:
			skipped = append(skipped, id)
		default:
			writeError(w, http.StatusInternalServerError, "failed to archive assets")
			return
		}
	}
	if err := tx.Commit(); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to commit")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"archived": archived, "skipped": skipped})
}

// updateAssetStatus changes used_status on a single asset.
func (s *Server) updateAssetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid asset id")
		return
	}
	var req struct {
		UsedStatus string `json:"used_status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !models.ValidStatus(req.UsedStatus) {
		writeError(w, http.StatusBadRequest, "invalid used_status")
		return
	}

	res, err := s.DB.ExecContext(r.Context(),
		`UPDATE assets SET used_status = ? WHERE id = ?`, req.UsedStatus, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update status")
		return
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		writeError(w, http.StatusNotFound, "asset not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"updated": 1})
}

// bulkUpdateStatus applies one status to a list of assets and reports how
// many rows actually changed.
func (s *Server) bulkUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req models.BulkStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.AssetIDs) == 0 {
		writeError(w, http.StatusBadRequest, "asset_ids must not be empty")
		return
	}
	if !models.ValidStatus(req.UsedStatus) {
		writeError(w, http.StatusBadRequest, "invalid used_status")
		return
	}

	placeholders := strings.Repeat("?,", len(req.AssetIDs))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, 0, len(req.AssetIDs)+1)
	args = append(args, req.UsedStatus)
	for _, id := range req.AssetIDs {
		args = append(args, id)
	}

	res, err := s.DB.ExecContext(r.Context(),
		`UPDATE assets SET used_status = ? WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update status")
		return
	}
	updated, _ := res.RowsAffected()
	writeJSON(w, http.StatusOK, map[string]interface{}{"updated": updated})
}

// assetQRData returns the payload encoded into an asset's QR label, for
// clients that render their own codes.
func (s *Server) assetQRData(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid asset id")
		return
	}
	a, err := s.getAssetByID(r.Context(), id)
	if err == sql.ErrNoRows {
		writeError(w, http.StatusNotFound, "asset not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load asset")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"asset_code": a.AssetCode,
		"url":        s.lookupURL(r, a.AssetCode),
	})
}
