package internal

import (
	"database/sql"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/Jaypeeeee6/Asset-Tracking-System/internal/models"
)

// baseURL is the prefix for absolute URLs encoded into QR labels. The
// configured base URL wins; without one the request's host is used so a
// default deployment still prints scannable labels.
func (s *Server) baseURL(r *http.Request) string {
	if s.Cfg.BaseURL != "" {
		return s.Cfg.BaseURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

func (s *Server) lookupURL(r *http.Request, code string) string {
	return s.baseURL(r) + "/asset/" + url.PathEscape(code)
}

func writePNG(w http.ResponseWriter, content string) {
	png, err := qrcode.Encode(content, qrcode.High, 256)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to render qr code")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if _, err := w.Write(png); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// assetQRCode renders the printable QR label for one asset as a PNG.
func (s *Server) assetQRCode(w http.ResponseWriter, r *http.Request) {
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
	writePNG(w, s.lookupURL(r, a.AssetCode))
}

// departmentQRCode renders a QR label pointing at a department's full item
// list, for posting at the department itself.
func (s *Server) departmentQRCode(w http.ResponseWriter, r *http.Request) {
	building := chi.URLParam(r, "building")
	department := chi.URLParam(r, "department")
	if building == "" || department == "" {
		writeError(w, http.StatusBadRequest, "building and department are required")
		return
	}

	target := s.baseURL(r) + "/assets/department_items/" +
		url.PathEscape(building) + "/" + url.PathEscape(department)
	writePNG(w, target)
}

// departmentItems lists every live asset of one department, the page a
// department QR label resolves to.
func (s *Server) departmentItems(w http.ResponseWriter, r *http.Request) {
	building := chi.URLParam(r, "building")
	department := chi.URLParam(r, "department")
	if building == "" || department == "" {
		writeError(w, http.StatusBadRequest, "building and department are required")
		return
	}

	rows, err := s.DB.QueryContext(r.Context(),
		`SELECT `+assetColumns+` FROM assets WHERE building = ? AND department = ?
		 ORDER BY asset_code ASC`, building, department)
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

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"building":   building,
		"department": department,
		"assets":     assets,
		"total":      len(assets),
	})
}
