package models

import "time"

// DefaultArchiveReason is recorded when a delete request omits a reason.
const DefaultArchiveReason = "Archived by user"

// ArchivedAsset is a soft-deleted asset row. OriginalID points at the live
// id the row was copied from; it is historical only and is never reused
// when the asset is restored.
type ArchivedAsset struct {
	ID            int64     `json:"id"`
	OriginalID    int64     `json:"original_id"`
	Name          string    `json:"name"`
	Quantity      int       `json:"quantity"`
	Price         float64   `json:"price"`
	Owner         string    `json:"owner"`
	Building      string    `json:"building"`
	Department    string    `json:"department"`
	AssetCode     string    `json:"asset_code"`
	QRRandomCode  string    `json:"qr_random_code,omitempty"`
	UsedStatus    string    `json:"used_status"`
	AssetType     string    `json:"asset_type"`
	ArchivedAt    time.Time `json:"archived_at"`
	ArchivedBy    string    `json:"archived_by"`
	ArchiveReason string    `json:"archive_reason"`
}
