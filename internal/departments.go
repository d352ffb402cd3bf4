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

func (s *Server) listDepartments(w http.ResponseWriter, r *http.Request) {
	query := `SELECT d.id, d.name, d.building_id, b.name
		FROM departments d JOIN buildings b ON b.id = d.building_id`
	var args []any
	if v := strings.TrimSpace(r.URL.Query().Get("building_id")); v != "" {
		query += ` WHERE d.building_id = ?`
		args = append(args, v)
	}
	query += ` ORDER BY b.name ASC, d.name ASC`

	rows, err := s.DB.QueryContext(r.Context(), query, args...)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list departments")
		return
	}
	defer rows.Close()

	departments := []models.Department{}
	for rows.Next() {
		var d models.Department
		if err := rows.Scan(&d.ID, &d.Name, &d.BuildingID, &d.BuildingName); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to scan department")
			return
		}
		departments = append(departments, d)
	}
	if err := rows.Err(); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list departments")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"departments": departments})
}

func (s *Server) createDepartment(w http.ResponseWriter, r *http.Request) {
	var req models.NameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.BuildingID == 0 {
		writeError(w, http.StatusBadRequest, "name and building_id are required")
		return
	}

	var exists int
	if err := s.DB.QueryRowContext(r.Context(),
		`SELECT COUNT(*) FROM buildings WHERE id = ?`, req.BuildingID).Scan(&exists); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to check building")
		return
	}
	if exists == 0 {
		writeError(w, http.StatusBadRequest, "building does not exist")
		return
	}

	res, err := s.DB.ExecContext(r.Context(),
		`INSERT INTO departments (name, building_id) VALUES (?, ?)`, req.Name, req.BuildingID)
	if isUniqueViolation(err) {
		writeError(w, http.StatusConflict, "department already exists in this building")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create department")
		return
	}
	id, _ := res.LastInsertId()
	writeJSON(w, http.StatusCreated, models.Department{ID: id, Name: req.Name, BuildingID: req.BuildingID})
}

// renameDepartment renames a department and cascades onto asset rows,
// scoped to the department's building so a same-named department elsewhere
// is untouched. The archive is included for the same reason as buildings.
func (s *Server) renameDepartment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid department id")
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

	var oldName, buildingName string
	err = tx.QueryRowContext(ctx,
		`SELECT d.name, b.name FROM departments d JOIN buildings b ON b.id = d.building_id
		 WHERE d.id = ?`, id).Scan(&oldName, &buildingName)
	if err != nil {
		if err == sql.ErrNoRows {
			writeError(w, http.StatusNotFound, "department not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load department")
		return
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE departments SET name = ? WHERE id = ?`, req.Name, id); err != nil {
		if isUniqueViolation(err) {
			writeError(w, http.StatusConflict, "department already exists in this building")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to rename department")
		return
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE assets SET department = ? WHERE department = ? AND building = ?`,
		req.Name, oldName, buildingName); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to cascade rename")
		return
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE archived_assets SET department = ? WHERE department = ? AND building = ?`,
		req.Name, oldName, buildingName); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to cascade rename")
		return
	}
	if err := tx.Commit(); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to commit")
		return
	}
	writeJSON(w, http.StatusOK, models.Department{ID: id, Name: req.Name, BuildingName: buildingName})
}

// deleteDepartment removes a department unless directory users or live
// assets still reference it.
func (s *Server) deleteDepartment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid department id")
		return
	}

	ctx := r.Context()
	var name, buildingName string
	err = s.DB.QueryRowContext(ctx,
		`SELECT d.name, b.name FROM departments d JOIN buildings b ON b.id = d.building_id
		 WHERE d.id = ?`, id).Scan(&name, &buildingName)
	if err != nil {
		if err == sql.ErrNoRows {
			writeError(w, http.StatusNotFound, "department not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load department")
		return
	}

	var users, assets int
	if err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE department_id = ?`, id).Scan(&users); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to check references")
		return
	}
	if err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM assets WHERE department = ? AND building = ?`,
		name, buildingName).Scan(&assets); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to check references")
		return
	}
	if users > 0 || assets > 0 {
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"error":  "department is still referenced",
			"users":  users,
			"assets": assets,
		})
		return
	}

	if _, err := s.DB.ExecContext(ctx,
		`DELETE FROM departments WHERE id = ?`, id); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete department")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"deleted": 1})
}
