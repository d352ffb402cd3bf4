package models

import "time"

// Directory entities: small reference tables whose names are copied onto
// asset rows. Distinct from auth users (see user.go).

type Building struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

type Department struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	BuildingID   int64  `json:"building_id,omitempty"`
	BuildingName string `json:"building_name,omitempty"`
}

// DirectoryUser is an asset owner, unique by name within a department.
type DirectoryUser struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	DepartmentID   int64  `json:"department_id"`
	DepartmentName string `json:"department_name,omitempty"`
	BuildingName   string `json:"building_name,omitempty"`
}

type AssetTypeRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// AssetNameRef is a catalog entry, unique by name within an asset type.
type AssetNameRef struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	AssetTypeID   int64  `json:"asset_type_id,omitempty"`
	AssetTypeName string `json:"asset_type_name,omitempty"`
}

// NameRequest is the shared body for directory create/rename endpoints.
type NameRequest struct {
	Name         string `json:"name"`
	BuildingID   int64  `json:"building_id,omitempty"`
	DepartmentID int64  `json:"department_id,omitempty"`
	AssetTypeID  int64  `json:"asset_type_id,omitempty"`
}

// BulkUsersRequest adds several directory users to one department.
type BulkUsersRequest struct {
	Users        []string `json:"users"`
	DepartmentID int64    `json:"department_id"`
}
