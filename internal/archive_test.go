package internal

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestoreArchivedAssetGetsFreshCode(t *testing.T) {
	s := newTestServer(t)

	addAsset(t, s, "Printer", "HQ", "IT", 2, http.StatusCreated)
	rec := doJSON(t, s, http.MethodPost, "/assets/delete/1", "admin", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var archiveID int64
	var random string
	require.NoError(t, s.DB.QueryRow(
		`SELECT id, qr_random_code FROM archived_assets`).Scan(&archiveID, &random))

	rec = doJSON(t, s, http.MethodPost, "/archive/restore/1", "admin", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var archived int
	require.NoError(t, s.DB.QueryRow(`SELECT COUNT(*) FROM archived_assets`).Scan(&archived))
	assert.Equal(t, 0, archived)

	var code, gotRandom string
	var qty int
	require.NoError(t, s.DB.QueryRow(
		`SELECT asset_code, qr_random_code, quantity FROM assets`).Scan(&code, &gotRandom, &qty))
	assert.Equal(t, "MAA-HQ-IT-002", code, "the retired -001 must not come back")
	assert.Equal(t, random, gotRandom, "the opaque label id survives the round trip")
	assert.Equal(t, 2, qty)
}

func TestRestoreMergesIntoExistingAsset(t *testing.T) {
	s := newTestServer(t)

	addAsset(t, s, "Printer", "HQ", "IT", 2, http.StatusCreated)
	rec := doJSON(t, s, http.MethodPost, "/assets/delete/1", "admin", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// a new live asset under the same identity appears before the restore
	addAsset(t, s, "Printer", "HQ", "IT", 3, http.StatusCreated)

	rec = doJSON(t, s, http.MethodPost, "/archive/restore/1", "admin", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var count, qty int
	require.NoError(t, s.DB.QueryRow(`SELECT COUNT(*) FROM assets`).Scan(&count))
	require.NoError(t, s.DB.QueryRow(`SELECT quantity FROM assets`).Scan(&qty))
	assert.Equal(t, 1, count, "restore must not duplicate the live row")
	assert.Equal(t, 5, qty)
}

func TestRestoreKeepsLiveOwnerOnMerge(t *testing.T) {
	s := newTestServer(t)

	addAsset(t, s, "Printer", "HQ", "IT", 1, http.StatusCreated)
	_, err := s.DB.Exec(`UPDATE assets SET owner = 'Alice'`)
	require.NoError(t, err)
	rec := doJSON(t, s, http.MethodPost, "/assets/delete/1", "admin", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	addAsset(t, s, "Printer", "HQ", "IT", 1, http.StatusCreated)
	_, err = s.DB.Exec(`UPDATE assets SET owner = 'Bob'`)
	require.NoError(t, err)

	rec = doJSON(t, s, http.MethodPost, "/archive/restore/1", "admin", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var owner string
	require.NoError(t, s.DB.QueryRow(`SELECT owner FROM assets`).Scan(&owner))
	assert.Equal(t, "Bob", owner, "merging a restore keeps the current assignment")
}

func TestBulkRestore(t *testing.T) {
	s := newTestServer(t)

	addAsset(t, s, "Printer", "HQ", "IT", 1, http.StatusCreated)
	addAsset(t, s, "Scanner", "HQ", "IT", 1, http.StatusCreated)
	rec := doJSON(t, s, http.MethodPost, "/assets/bulk_delete", "admin",
		map[string]interface{}{"asset_ids": []int64{1, 2}}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var out map[string]interface{}
	rec = doJSON(t, s, http.MethodPost, "/archive/bulk_restore", "admin",
		map[string]interface{}{"asset_ids": []int64{1, 2, 99}}, &out)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, float64(2), out["restored"])
	assert.Equal(t, []interface{}{float64(99)}, out["skipped"])

	var live int
	require.NoError(t, s.DB.QueryRow(`SELECT COUNT(*) FROM assets`).Scan(&live))
	assert.Equal(t, 2, live)
}

func TestPurgeArchivedAssetFreesCode(t *testing.T) {
	s := newTestServer(t)

	addAsset(t, s, "Printer", "HQ", "IT", 1, http.StatusCreated)
	addAsset(t, s, "Scanner", "HQ", "IT", 1, http.StatusCreated)
	rec := doJSON(t, s, http.MethodPost, "/assets/delete/2", "admin", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/archive/delete/1", "admin", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var archived int
	require.NoError(t, s.DB.QueryRow(`SELECT COUNT(*) FROM archived_assets`).Scan(&archived))
	assert.Equal(t, 0, archived)

	// purging removed -002 from the allocator's view, so the number is
	// available again; only -001 still counts toward the maximum
	out := addAsset(t, s, "Shredder", "HQ", "IT", 1, http.StatusCreated)
	asset := out["asset"].(map[string]interface{})
	assert.Equal(t, "MAA-HQ-IT-002", asset["asset_code"])
}

func TestListArchivedAssets(t *testing.T) {
	s := newTestServer(t)

	addAsset(t, s, "Printer", "HQ", "IT", 1, http.StatusCreated)
	rec := doJSON(t, s, http.MethodPost, "/assets/delete/1", "admin",
		map[string]interface{}{"reason": "obsolete"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var out map[string]interface{}
	rec = doJSON(t, s, http.MethodGet, "/archive?search=Printer", "admin", nil, &out)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), out["total"])

	archived := out["archived_assets"].([]interface{})
	first := archived[0].(map[string]interface{})
	assert.Equal(t, "obsolete", first["archive_reason"])
	assert.Equal(t, "tester", first["archived_by"])
}
