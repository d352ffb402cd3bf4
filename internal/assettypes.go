package internal

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Jaypeeeee6/Asset-Tracking-System/internal/models"
)

// Asset types categorize assets; asset names are a per-type suggestion
// catalog used by clients to autocomplete the name field.

func (s *Server) listAssetTypes(w http.ResponseWriter, r *http.Request) {
	rows, err := s.DB.QueryContext(r.Context(),
		`SELECT id, name FROM asset_types ORDER BY name ASC`)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list asset types")
		return
	}
	defer rows.Close()

	types := []models.AssetTypeRef{}
	for rows.Next() {
		var t models.AssetTypeRef
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to scan asset type")
			return
		}
		types = append(types, t)
	}
	if err := rows.Err(); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list asset types")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"asset_types": types})
}

func (s *Server) createAssetType(w http.ResponseWriter, r *http.Request) {
	var req models.NameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	res, err := s.DB.ExecContext(r.Context(),
		`INSERT INTO asset_types (name) VALUES (?)`, req.Name)
	if isUniqueViolation(err) {
		writeError(w, http.StatusConflict, "asset type already exists")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create asset type")
		return
	}
	id, _ := res.LastInsertId()
	writeJSON(w, http.StatusCreated, models.AssetTypeRef{ID: id, Name: req.Name})
}

// renameAssetType renames a type and cascades onto asset rows, live and
// archived. The asset_names catalog references types by id and follows
// automatically.
func (s *Server) renameAssetType(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid asset type id")
		return
	}
	var req models.NameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	ctx := r.Context()
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to begin transaction")
		return
	}
	defer tx.Rollback()

	var oldName string
	if err := tx.QueryRowContext(ctx,
		`SELECT name FROM asset_types WHERE id = ?`, id).Scan(&oldName); err != nil {
		if err == sql.ErrNoRows {
			writeError(w, http.StatusNotFound, "asset type not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load asset type")
		return
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE asset_types SET name = ? WHERE id = ?`, req.Name, id); err != nil {
		if isUniqueViolation(err) {
			writeError(w, http.StatusConflict, "asset type already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to rename asset type")
		return
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE assets SET asset_type = ? WHERE asset_type = ?`, req.Name, oldName); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to cascade rename")
		return
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE archived_assets SET asset_type = ? WHERE asset_type = ?`, req.Name, oldName); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to cascade rename")
		return
	}
	if err := tx.Commit(); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to commit")
		return
	}
	writeJSON(w, http.StatusOK, models.AssetTypeRef{ID: id, Name: req.Name})
}

// deleteAssetType removes a type and its catalog names. Deletion is
// blocked while assets still carry the type.
func (s *Server) deleteAssetType(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid asset type id")
		return
	}

	ctx := r.Context()
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to begin transaction")
		return
	}
	defer tx.Rollback()

	var name string
	if err := tx.QueryRowContext(ctx,
		`SELECT name FROM asset_types WHERE id = ?`, id).Scan(&name); err != nil {
		if err == sql.ErrNoRows {
			writeError(w, http.StatusNotFound, "asset type not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load asset type")
		return
	}

	var assets int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM assets WHERE asset_type = ?`, name).Scan(&assets); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to check references")
		return
	}
	if assets > 0 {
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"error":  "asset type is still referenced",
			"assets": assets,
		})
		return
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM asset_names WHERE asset_type_id = ?`, id); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete asset type")
		return
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM asset_types WHERE id = ?`, id); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete asset type")
		return
	}
	if err := tx.Commit(); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to commit")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"deleted": 1})
}

func (s *Server) listAssetNames(w http.ResponseWriter, r *http.Request) {
	query := `SELECT n.id, n.name, n.asset_type_id, t.name
		FROM asset_names n JOIN asset_types t ON t.id = n.asset_type_id`
	var args []any
	if v := strings.TrimSpace(r.URL.Query().Get("asset_type_id")); v != "" {
		query += ` WHERE n.asset_type_id = ?`
		args = append(args, v)
	}
	query += ` ORDER BY t.name ASC, n.name ASC`

	rows, err := s.DB.QueryContext(r.Context(), query, args...)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list asset names")
		return
	}
	defer rows.Close()

	names := []models.AssetNameRef{}
	for rows.Next() {
		var n models.AssetNameRef
		if err := rows.Scan(&n.ID, &n.Name, &n.AssetTypeID, &n.AssetTypeName); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to scan asset name")
			return
		}
		names = append(names, n)
	}
	if err := rows.Err(); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list asset names")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"asset_names": names})
}

func (s *Server) createAssetName(w http.ResponseWriter, r *http.Request) {
	var req models.NameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.AssetTypeID == 0 {
		writeError(w, http.StatusBadRequest, "name and asset_type_id are required")
		return
	}

	var exists int
	if err := s.DB.QueryRowContext(r.Context(),
		`SELECT COUNT(*) FROM asset_types WHERE id = ?`, req.AssetTypeID).Scan(&exists); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to check asset type")
		return
	}
	if exists == 0 {
		writeError(w, http.StatusBadRequest, "asset type does not exist")
		return
	}

	res, err := s.DB.ExecContext(r.Context(),
		`INSERT INTO asset_names (name, asset_type_id) VALUES (?, ?)`, req.Name, req.AssetTypeID)
	if isUniqueViolation(err) {
		writeError(w, http.StatusConflict, "asset name already exists for this type")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create asset name")
		return
	}
	id, _ := res.LastInsertId()
	writeJSON(w, http.StatusCreated, models.AssetNameRef{ID: id, Name: req.Name, AssetTypeID: req.AssetTypeID})
}

// renameAssetName renames a catalog entry and cascades onto live assets
// that carry the old name under the same type.
func (s *Server) renameAssetName(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid asset name id")
		return
	}
	var req models.NameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	ctx := r.Context()
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to begin transaction")
		return
	}
	defer tx.Rollback()

	var oldName, typeName string
	if err := tx.QueryRowContext(ctx,
		`SELECT n.name, t.name FROM asset_names n
			JOIN asset_types t ON t.id = n.asset_type_id
			WHERE n.id = ?`, id).Scan(&oldName, &typeName); err != nil {
		if err == sql.ErrNoRows {
			writeError(w, http.StatusNotFound, "asset name not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load asset name")
		return
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE asset_names SET name = ? WHERE id = ?`, req.Name, id); err != nil {
		if isUniqueViolation(err) {
			writeError(w, http.StatusConflict, "asset name already exists for this type")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to rename asset name")
		return
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE assets SET name = ? WHERE name = ? AND asset_type = ?`,
		req.Name, oldName, typeName); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to cascade rename")
		return
	}
	if err := tx.Commit(); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to commit")
		return
	}
	writeJSON(w, http.StatusOK, models.AssetNameRef{ID: id, Name: req.Name})
}

func (s *Server) deleteAssetName(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid asset name id")
		return
	}

	res, err := s.DB.ExecContext(r.Context(),
		`DELETE FROM asset_names WHERE id = ?`, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete asset name")
		return
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		writeError(w, http.StatusNotFound, "asset name not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"deleted": 1})
}
