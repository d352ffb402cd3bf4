package models

// Asset statuses form a closed set; anything else is rejected at the API
// boundary before it reaches the store.
const (
	StatusUsed         = "Used"
	StatusNotUsed      = "Not Used"
	StatusOutOfService = "Out of Service"
)

// NoOwnerSentinel is stored in the owner column when an asset has no
// assigned directory user.
const NoOwnerSentinel = "No Owner"

// ValidStatus reports whether s is one of the allowed used_status values.
func ValidStatus(s string) bool {
	switch s {
	case StatusUsed, StatusNotUsed, StatusOutOfService:
		return true
	}
	return false
}

// Asset is a live asset row. Building, department and owner are
// denormalized string copies of the directory entities; renames cascade by
// bulk update, not by foreign key.
type Asset struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Quantity     int     `json:"quantity"`
	Price        float64 `json:"price"`
	Owner        string  `json:"owner"`
	Building     string  `json:"building"`
	Department   string  `json:"department"`
	AssetCode    string  `json:"asset_code"`
	QRRandomCode string  `json:"qr_random_code,omitempty"`
	UsedStatus   string  `json:"used_status"`
	AssetType    string  `json:"asset_type"`
}

// CreateAssetRequest is the body for POST /assets/add.
type CreateAssetRequest struct {
	Name       string   `json:"name"`
	AssetType  string   `json:"asset_type"`
	Owner      string   `json:"owner"`
	NoOwner    bool     `json:"no_owner"`
	Building   string   `json:"building"`
	Department string   `json:"department"`
	Quantity   int      `json:"quantity"`
	Price      *float64 `json:"price,omitempty"`
	UsedStatus string   `json:"used_status"`
}

// UpdateAssetRequest is the body for POST /assets/update/{id}. Updates are
// full-field overwrites; the last writer wins.
type UpdateAssetRequest struct {
	Name       string   `json:"name"`
	AssetType  string   `json:"asset_type"`
	Owner      string   `json:"owner"`
	NoOwner    bool     `json:"no_owner"`
	Building   string   `json:"building"`
	Department string   `json:"department"`
	Quantity   int      `json:"quantity"`
	Price      *float64 `json:"price,omitempty"`
	UsedStatus string   `json:"used_status"`
}

// BulkIDsRequest carries the id list for bulk delete/restore/purge.
type BulkIDsRequest struct {
	AssetIDs []int64 `json:"asset_ids"`
	Reason   string  `json:"reason,omitempty"`
}

// BulkStatusRequest carries a status applied to an arbitrary id list.
type BulkStatusRequest struct {
	AssetIDs   []int64 `json:"asset_ids"`
	UsedStatus string  `json:"used_status"`
}

// DeleteAssetRequest is the optional body for POST /assets/delete/{id}.
type DeleteAssetRequest struct {
	Reason string `json:"reason"`
}

// LookupResult is the public per-code view, tagged with where the asset
// was found.
type LookupResult struct {
	Asset
	IsArchived bool `json:"is_archived"`
}

// DashboardCharts holds the aggregate counts rendered alongside the list.
type DashboardCharts struct {
	ByBuilding map[string]int `json:"by_building"`
	ByStatus   map[string]int `json:"by_status"`
	ByType     map[string]int `json:"by_type"`
}
