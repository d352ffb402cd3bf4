package internal

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Jaypeeeee6/Asset-Tracking-System/internal/models"
)

// lookupAsset resolves an asset code to its current record. The live table
// is checked first; a code found only in the archive is returned with
// is_archived set so a scanned label on a retired asset still resolves.
func (s *Server) lookupAsset(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "asset code is required")
		return
	}

	a, err := scanAsset(s.DB.QueryRowContext(r.Context(),
		`SELECT `+assetColumns+` FROM assets WHERE asset_code = ?`, code))
	if err == nil {
		writeJSON(w, http.StatusOK, models.LookupResult{Asset: a, IsArchived: false})
		return
	}
	if err != sql.ErrNoRows {
		writeError(w, http.StatusInternalServerError, "failed to look up asset")
		return
	}

	arch, err := scanArchived(s.DB.QueryRowContext(r.Context(),
		`SELECT `+archivedColumns+` FROM archived_assets WHERE asset_code = ?`, code))
	if err == sql.ErrNoRows {
		writeError(w, http.StatusNotFound, "asset not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to look up asset")
		return
	}

	writeJSON(w, http.StatusOK, models.LookupResult{
		Asset: models.Asset{
			ID:           arch.ID,
			Name:         arch.Name,
			Quantity:     arch.Quantity,
			Price:        arch.Price,
			Owner:        arch.Owner,
			Building:     arch.Building,
			Department:   arch.Department,
			AssetCode:    arch.AssetCode,
			QRRandomCode: arch.QRRandomCode,
			UsedStatus:   arch.UsedStatus,
			AssetType:    arch.AssetType,
		},
		IsArchived: true,
	})
}
