package internal

import (
	"net/http"
	"strconv"
	"strings"
)

// listParams holds common query parameters for paginated list endpoints.
type listParams struct {
	page    int
	perPage int
	search  string
	sortBy  string
	sortDir string
}

// parseListParams parses page, per_page, search, sort_by and sort_dir.
// Defaults: page=1, per_page=10 (max 100), sort ascending.
func parseListParams(r *http.Request) listParams {
	values := r.URL.Query()

	page := 1
	if s := strings.TrimSpace(values.Get("page")); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			page = v
		}
	}

	perPage := 10
	if s := strings.TrimSpace(values.Get("per_page")); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			if v > 100 {
				v = 100
			}
			perPage = v
		}
	}

	sortDir := "asc"
	if values.Get("sort_dir") == "desc" {
		sortDir = "desc"
	}

	return listParams{
		page:    page,
		perPage: perPage,
		search:  strings.TrimSpace(values.Get("search")),
		sortBy:  strings.TrimSpace(values.Get("sort_by")),
		sortDir: sortDir,
	}
}

func (p listParams) offset() int {
	return (p.page - 1) * p.perPage
}

// buildOrderBy builds a safe ORDER BY clause using a whitelist of allowed
// sort keys. Unknown keys fall back to id. Returns a string starting with
// " ORDER BY ...".
func buildOrderBy(p listParams, allowed map[string]string) string {
	col, ok := allowed[p.sortBy]
	if !ok {
		col = allowed["id"]
		if col == "" {
			col = "id"
		}
	}
	dir := "ASC"
	if p.sortDir == "desc" {
		dir = "DESC"
	}
	return " ORDER BY " + col + " " + dir
}

// sendListResponse wraps a page of rows with pagination metadata.
func sendListResponse(w http.ResponseWriter, key string, rows interface{}, total int, p listParams, extra map[string]interface{}) {
	totalPages := (total + p.perPage - 1) / p.perPage
	body := map[string]interface{}{
		key:           rows,
		"total":       total,
		"page":        p.page,
		"per_page":    p.perPage,
		"total_pages": totalPages,
	}
	for k, v := range extra {
		body[k] = v
	}
	writeJSON(w, http.StatusOK, body)
}
