package internal

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBuildingRejectsDuplicates(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/buildings/add", "admin",
		map[string]interface{}{"name": "HQ"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/buildings/add", "admin",
		map[string]interface{}{"name": "HQ"}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestDirectoryRoutesRequireAdmin(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/buildings/add", "purchasing",
		map[string]interface{}{"name": "HQ"}, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// reads stay open to both roles
	rec = doJSON(t, s, http.MethodGet, "/buildings", "purchasing", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRenameBuildingCascadesToAssets(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/buildings/add", "admin",
		map[string]interface{}{"name": "HQ"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	addAsset(t, s, "Printer", "HQ", "IT", 1, http.StatusCreated)
	rec = doJSON(t, s, http.MethodPost, "/assets/delete/1", "admin", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	addAsset(t, s, "Scanner", "HQ", "IT", 1, http.StatusCreated)

	rec = doJSON(t, s, http.MethodPost, "/buildings/update/1", "admin",
		map[string]interface{}{"name": "Head Office"}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var live, archived string
	require.NoError(t, s.DB.QueryRow(`SELECT building FROM assets`).Scan(&live))
	require.NoError(t, s.DB.QueryRow(`SELECT building FROM archived_assets`).Scan(&archived))
	assert.Equal(t, "Head Office", live)
	assert.Equal(t, "Head Office", archived, "archived rows follow so retired codes stay visible")
}

func TestDeleteBuildingBlockedWhileReferenced(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/buildings/add", "admin",
		map[string]interface{}{"name": "HQ"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	addAsset(t, s, "Printer", "HQ", "IT", 1, http.StatusCreated)

	var out map[string]interface{}
	rec = doJSON(t, s, http.MethodPost, "/buildings/delete/1", "admin", nil, &out)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, float64(1), out["assets"])

	rec = doJSON(t, s, http.MethodPost, "/assets/delete/1", "admin", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/buildings/delete/1", "admin", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code, "archived references do not block deletion")
}

func TestDeleteBuildingRemovesDepartmentsAndUsers(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/buildings/add", "admin",
		map[string]interface{}{"name": "HQ"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doJSON(t, s, http.MethodPost, "/departments/add", "admin",
		map[string]interface{}{"name": "IT", "building_id": 1}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doJSON(t, s, http.MethodPost, "/users/add", "admin",
		map[string]interface{}{"name": "Alice", "department_id": 1}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/buildings/delete/1", "admin", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var departments, users int
	require.NoError(t, s.DB.QueryRow(`SELECT COUNT(*) FROM departments`).Scan(&departments))
	require.NoError(t, s.DB.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&users))
	assert.Equal(t, 0, departments)
	assert.Equal(t, 0, users)
}

func TestDepartmentUniquePerBuilding(t *testing.T) {
	s := newTestServer(t)

	for _, name := range []string{"HQ", "Annex"} {
		rec := doJSON(t, s, http.MethodPost, "/buildings/add", "admin",
			map[string]interface{}{"name": name}, nil)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doJSON(t, s, http.MethodPost, "/departments/add", "admin",
		map[string]interface{}{"name": "IT", "building_id": 1}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/departments/add", "admin",
		map[string]interface{}{"name": "IT", "building_id": 1}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// the same name in a different building is fine
	rec = doJSON(t, s, http.MethodPost, "/departments/add", "admin",
		map[string]interface{}{"name": "IT", "building_id": 2}, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestRenameDepartmentScopedToBuilding(t *testing.T) {
	s := newTestServer(t)

	for _, name := range []string{"HQ", "Annex"} {
		rec := doJSON(t, s, http.MethodPost, "/buildings/add", "admin",
			map[string]interface{}{"name": name}, nil)
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	rec := doJSON(t, s, http.MethodPost, "/departments/add", "admin",
		map[string]interface{}{"name": "IT", "building_id": 1}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	addAsset(t, s, "Printer", "HQ", "IT", 1, http.StatusCreated)
	addAsset(t, s, "Printer", "Annex", "IT", 1, http.StatusCreated)

	rec = doJSON(t, s, http.MethodPost, "/departments/update/1", "admin",
		map[string]interface{}{"name": "Tech"}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var hq, annex string
	require.NoError(t, s.DB.QueryRow(
		`SELECT department FROM assets WHERE building = 'HQ'`).Scan(&hq))
	require.NoError(t, s.DB.QueryRow(
		`SELECT department FROM assets WHERE building = 'Annex'`).Scan(&annex))
	assert.Equal(t, "Tech", hq)
	assert.Equal(t, "IT", annex, "the rename must not leak into other buildings")
}

func TestBulkAddDirectoryUsers(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/buildings/add", "admin",
		map[string]interface{}{"name": "HQ"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doJSON(t, s, http.MethodPost, "/departments/add", "admin",
		map[string]interface{}{"name": "IT", "building_id": 1}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var out map[string]interface{}
	rec = doJSON(t, s, http.MethodPost, "/users/bulk_add", "admin",
		map[string]interface{}{"users": []string{"Alice", "Bob", "Alice", ""}, "department_id": 1}, &out)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, float64(2), out["created"])

	failed := out["failed"].(map[string]interface{})
	assert.Equal(t, "already exists", failed["Alice"])
}

func TestDeleteDirectoryUserBlockedWhileOwningAssets(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/buildings/add", "admin",
		map[string]interface{}{"name": "HQ"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doJSON(t, s, http.MethodPost, "/departments/add", "admin",
		map[string]interface{}{"name": "IT", "building_id": 1}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doJSON(t, s, http.MethodPost, "/users/add", "admin",
		map[string]interface{}{"name": "Alice", "department_id": 1}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	addAsset(t, s, "Printer", "HQ", "IT", 1, http.StatusCreated)
	_, err := s.DB.Exec(`UPDATE assets SET owner = 'Alice'`)
	require.NoError(t, err)

	rec = doJSON(t, s, http.MethodPost, "/users/delete/1", "admin", nil, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	_, err = s.DB.Exec(`UPDATE assets SET owner = 'No Owner'`)
	require.NoError(t, err)
	rec = doJSON(t, s, http.MethodPost, "/users/delete/1", "admin", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRenameDirectoryUserCascadesToOwner(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/buildings/add", "admin",
		map[string]interface{}{"name": "HQ"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doJSON(t, s, http.MethodPost, "/departments/add", "admin",
		map[string]interface{}{"name": "IT", "building_id": 1}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doJSON(t, s, http.MethodPost, "/users/add", "admin",
		map[string]interface{}{"name": "Alice", "department_id": 1}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	addAsset(t, s, "Printer", "HQ", "IT", 1, http.StatusCreated)
	_, err := s.DB.Exec(`UPDATE assets SET owner = 'Alice'`)
	require.NoError(t, err)

	rec = doJSON(t, s, http.MethodPost, "/users/update/1", "admin",
		map[string]interface{}{"name": "Alice Smith"}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var owner string
	require.NoError(t, s.DB.QueryRow(`SELECT owner FROM assets`).Scan(&owner))
	assert.Equal(t, "Alice Smith", owner)
}

func TestAssetTypeDeleteBlockedBySeedUsage(t *testing.T) {
	s := newTestServer(t)

	// Electronics is seeded with id 1 and the created asset uses it
	addAsset(t, s, "Printer", "HQ", "IT", 1, http.StatusCreated)

	rec := doJSON(t, s, http.MethodPost, "/asset_types/delete/1", "admin", nil, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAssetTypeDeleteRemovesCatalogNames(t *testing.T) {
	s := newTestServer(t)

	// Vehicles is seeded with id 4 and no asset uses it
	rec := doJSON(t, s, http.MethodPost, "/asset_names/add", "admin",
		map[string]interface{}{"name": "Van", "asset_type_id": 4}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, s, http.MethodPost, "/asset_types/delete/4", "admin", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var names int
	require.NoError(t, s.DB.QueryRow(`SELECT COUNT(*) FROM asset_names`).Scan(&names))
	assert.Equal(t, 0, names)
}

func TestRenameAssetNameCascadesWithinType(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/asset_names/add", "admin",
		map[string]interface{}{"name": "Printer", "asset_type_id": 1}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	addAsset(t, s, "Printer", "HQ", "IT", 1, http.StatusCreated)
	// same name under a different type must not be touched
	_, err := s.DB.Exec(`INSERT INTO assets
		(name, quantity, owner, building, department, used_status, asset_type, asset_code, qr_random_code)
		VALUES ('Printer', 1, 'No Owner', 'HQ', 'HR', 'Not Used', 'Furniture', 'MAA-HQ-HR-001', 'x')`)
	require.NoError(t, err)

	rec = doJSON(t, s, http.MethodPost, "/asset_names/update/1", "admin",
		map[string]interface{}{"name": "Laser Printer"}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var electronics, furniture string
	require.NoError(t, s.DB.QueryRow(
		`SELECT name FROM assets WHERE asset_type = 'Electronics'`).Scan(&electronics))
	require.NoError(t, s.DB.QueryRow(
		`SELECT name FROM assets WHERE asset_type = 'Furniture'`).Scan(&furniture))
	assert.Equal(t, "Laser Printer", electronics)
	assert.Equal(t, "Printer", furniture)
}

func TestAssetNamesCatalog(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/asset_names/add", "admin",
		map[string]interface{}{"name": "Laptop", "asset_type_id": 1}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, s, http.MethodPost, "/asset_names/add", "admin",
		map[string]interface{}{"name": "Laptop", "asset_type_id": 1}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	var out map[string]interface{}
	rec = doJSON(t, s, http.MethodGet, "/asset_names?asset_type_id=1", "admin", nil, &out)
	require.Equal(t, http.StatusOK, rec.Code)
	names := out["asset_names"].([]interface{})
	require.Len(t, names, 1)
	first := names[0].(map[string]interface{})
	assert.Equal(t, "Electronics", first["asset_type_name"])
}
