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

// Directory users are the people assets are assigned to. They have no
// credentials; login accounts live in users_auth (see authusers.go).

func (s *Server) listDirectoryUsers(w http.ResponseWriter, r *http.Request) {
	query := `SELECT u.id, u.name, u.department_id, d.name, b.name
		FROM users u
		JOIN departments d ON d.id = u.department_id
		JOIN buildings b ON b.id = d.building_id`
	var args []any
	if v := strings.TrimSpace(r.URL.Query().Get("department_id")); v != "" {
		query += ` WHERE u.department_id = ?`
		args = append(args, v)
	}
	query += ` ORDER BY b.name ASC, d.name ASC, u.name ASC`

	rows, err := s.DB.QueryContext(r.Context(), query, args...)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	defer rows.Close()

	users := []models.DirectoryUser{}
	for rows.Next() {
		var u models.DirectoryUser
		if err := rows.Scan(&u.ID, &u.Name, &u.DepartmentID, &u.DepartmentName, &u.BuildingName); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to scan user")
			return
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

func (s *Server) createDirectoryUser(w http.ResponseWriter, r *http.Request) {
	var req models.NameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.DepartmentID == 0 {
		writeError(w, http.StatusBadRequest, "name and department_id are required")
		return
	}

	var exists int
	if err := s.DB.QueryRowContext(r.Context(),
		`SELECT COUNT(*) FROM departments WHERE id = ?`, req.DepartmentID).Scan(&exists); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to check department")
		return
	}
	if exists == 0 {
		writeError(w, http.StatusBadRequest, "department does not exist")
		return
	}

	res, err := s.DB.ExecContext(r.Context(),
		`INSERT INTO users (name, department_id) VALUES (?, ?)`, req.Name, req.DepartmentID)
	if isUniqueViolation(err) {
		writeError(w, http.StatusConflict, "user already exists in this department")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}
	id, _ := res.LastInsertId()
	writeJSON(w, http.StatusCreated, models.DirectoryUser{ID: id, Name: req.Name, DepartmentID: req.DepartmentID})
}

// bulkCreateDirectoryUsers adds several users to one department, reporting
// per-name failures instead of aborting the batch.
func (s *Server) bulkCreateDirectoryUsers(w http.ResponseWriter, r *http.Request) {
	var req models.BulkUsersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Users) == 0 || req.DepartmentID == 0 {
		writeError(w, http.StatusBadRequest, "users and department_id are required")
		return
	}

	ctx := r.Context()
	var exists int
	if err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM departments WHERE id = ?`, req.DepartmentID).Scan(&exists); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to check department")
		return
	}
	if exists == 0 {
		writeError(w, http.StatusBadRequest, "department does not exist")
		return
	}

	created := 0
	failed := map[string]string{}
	for _, name := range req.Users {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		_, err := s.DB.ExecContext(ctx,
			`INSERT INTO users (name, department_id) VALUES (?, ?)`, name, req.DepartmentID)
		switch {
		case isUniqueViolation(err):
			failed[name] = "already exists"
		case err != nil:
			failed[name] = "insert failed"
		default:
			created++
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"created": created, "failed": failed})
}

// renameDirectoryUser renames a user and cascades the new name onto the
// owner column of their department's assets.
func (s *Server) renameDirectoryUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
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

	var oldName, deptName, buildingName string
	err = tx.QueryRowContext(ctx,
		`SELECT u.name, d.name, b.name FROM users u
		 JOIN departments d ON d.id = u.department_id
		 JOIN buildings b ON b.id = d.building_id
		 WHERE u.id = ?`, id).Scan(&oldName, &deptName, &buildingName)
	if err != nil {
		if err == sql.ErrNoRows {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET name = ? WHERE id = ?`, req.Name, id); err != nil {
		if isUniqueViolation(err) {
			writeError(w, http.StatusConflict, "user already exists in this department")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to rename user")
		return
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE assets SET owner = ? WHERE owner = ? AND department = ? AND building = ?`,
		req.Name, oldName, deptName, buildingName); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to cascade rename")
		return
	}
	if err := tx.Commit(); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to commit")
		return
	}
	writeJSON(w, http.StatusOK, models.DirectoryUser{ID: id, Name: req.Name, DepartmentName: deptName})
}

// deleteDirectoryUser removes a user unless live assets are still assigned
// to them.
func (s *Server) deleteDirectoryUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	ctx := r.Context()
	var name, deptName, buildingName string
	err = s.DB.QueryRowContext(ctx,
		`SELECT u.name, d.name, b.name FROM users u
		 JOIN departments d ON d.id = u.department_id
		 JOIN buildings b ON b.id = d.building_id
		 WHERE u.id = ?`, id).Scan(&name, &deptName, &buildingName)
	if err != nil {
		if err == sql.ErrNoRows {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}

	var assets int
	if err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM assets WHERE owner = ? AND department = ? AND building = ?`,
		name, deptName, buildingName).Scan(&assets); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to check references")
		return
	}
	if assets > 0 {
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"error":  "user still owns assets",
			"assets": assets,
		})
		return
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"deleted": 1})
}
