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

func (s *Server) listBuildings(w http.ResponseWriter, r *http.Request) {
	rows, err := s.DB.QueryContext(r.Context(),
		`SELECT id, name, created_at FROM buildings ORDER BY name ASC`)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list buildings")
		return
	}
	defer rows.Close()

	buildings := []models.Building{}
	for rows.Next() {
		var b models.Building
		if err := rows.Scan(&b.ID, &b.Name, &b.CreatedAt); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to scan building")
			return
		}
		buildings = append(buildings, b)
	}
	if err := rows.Err(); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list buildings")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"buildings": buildings})
}

func (s *Server) createBuilding(w http.ResponseWriter, r *http.Request) {
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
		`INSERT INTO buildings (name) VALUES (?)`, req.Name)
	if isUniqueViolation(err) {
		writeError(w, http.StatusConflict, "building already exists")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create building")
		return
	}
	id, _ := res.LastInsertId()
	writeJSON(w, http.StatusCreated, models.Building{ID: id, Name: req.Name})
}

// renameBuilding renames a building and cascades the new name onto every
// live and archived asset row that carries the old one. The archive is
// included so code allocation keyed on the pair keeps seeing retired
// numbers after a rename.
func (s *Server) renameBuilding(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid building id")
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
		`SELECT name FROM buildings WHERE id = ?`, id).Scan(&oldName); err != nil {
		if err == sql.ErrNoRows {
			writeError(w, http.StatusNotFound, "building not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load building")
		return
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE buildings SET name = ? WHERE id = ?`, req.Name, id); err != nil {
		if isUniqueViolation(err) {
			writeError(w, http.StatusConflict, "building already exists")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to rename building")
		return
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE assets SET building = ? WHERE building = ?`, req.Name, oldName); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to cascade rename")
		return
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE archived_assets SET building = ? WHERE building = ?`, req.Name, oldName); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to cascade rename")
		return
	}
	if err := tx.Commit(); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to commit")
		return
	}
	writeJSON(w, http.StatusOK, models.Building{ID: id, Name: req.Name})
}

// deleteBuilding removes a building together with its departments and
// their directory users. Deletion is blocked while live assets still
// reference the building; the response carries the count so the client can
// explain the refusal.
func (s *Server) deleteBuilding(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid building id")
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
		`SELECT name FROM buildings WHERE id = ?`, id).Scan(&name); err != nil {
		if err == sql.ErrNoRows {
			writeError(w, http.StatusNotFound, "building not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load building")
		return
	}

	var assets int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM assets WHERE building = ?`, name).Scan(&assets); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to check references")
		return
	}
	if assets > 0 {
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"error":  "building is still referenced",
			"assets": assets,
		})
		return
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM users WHERE department_id IN
			(SELECT id FROM departments WHERE building_id = ?)`, id); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete building")
		return
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM departments WHERE building_id = ?`, id); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete building")
		return
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM buildings WHERE id = ?`, id); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete building")
		return
	}
	if err := tx.Commit(); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to commit")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"deleted": 1})
}
