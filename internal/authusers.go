package internal

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/Jaypeeeee6/Asset-Tracking-System/internal/models"
)

// protectedUsernames are the bootstrap accounts; they cannot be deleted
// through the API so an admin can never lock everyone out.
var protectedUsernames = map[string]bool{
	"admin":      true,
	"purchasing": true,
}

// loginUser verifies credentials against users_auth and issues a token.
func (s *Server) loginUser(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	var u models.AuthUser
	err := s.DB.QueryRowContext(r.Context(),
		`SELECT id, username, password_hash, role, created_at FROM users_auth WHERE username = ?`,
		req.Username).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err == sql.ErrNoRows {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load account")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := s.JWTManager.GenerateToken(u.ID, u.Username, u.Role)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	writeJSON(w, http.StatusOK, models.LoginResponse{Token: token, User: u})
}

// logoutUser exists for client symmetry; tokens are stateless and expire on
// their own.
func (s *Server) logoutUser(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (s *Server) listAuthUsers(w http.ResponseWriter, r *http.Request) {
	rows, err := s.DB.QueryContext(r.Context(),
		`SELECT id, username, role, created_at FROM users_auth ORDER BY username ASC`)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list accounts")
		return
	}
	defer rows.Close()

	users := []models.AuthUser{}
	for rows.Next() {
		var u models.AuthUser
		if err := rows.Scan(&u.ID, &u.Username, &u.Role, &u.CreatedAt); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to scan account")
			return
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list accounts")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

func (s *Server) createAuthUser(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAuthUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}
	if len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}
	if !models.ValidRole(req.Role) {
		writeError(w, http.StatusBadRequest, "role must be admin or purchasing")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	res, err := s.DB.ExecContext(r.Context(),
		`INSERT INTO users_auth (username, password_hash, role) VALUES (?, ?, ?)`,
		req.Username, string(hash), req.Role)
	if isUniqueViolation(err) {
		writeError(w, http.StatusConflict, "username already exists")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create account")
		return
	}
	id, _ := res.LastInsertId()
	writeJSON(w, http.StatusCreated, models.AuthUser{ID: id, Username: req.Username, Role: req.Role})
}

func (s *Server) deleteAuthUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	var username string
	err = s.DB.QueryRowContext(r.Context(),
		`SELECT username FROM users_auth WHERE id = ?`, id).Scan(&username)
	if err == sql.ErrNoRows {
		writeError(w, http.StatusNotFound, "account not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load account")
		return
	}
	if protectedUsernames[username] {
		writeError(w, http.StatusForbidden, "this account cannot be deleted")
		return
	}

	if _, err := s.DB.ExecContext(r.Context(),
		`DELETE FROM users_auth WHERE id = ?`, id); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete account")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"deleted": 1})
}
