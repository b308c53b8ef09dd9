package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pageBody struct {
	Data       []string `json:"data"`
	Pagination struct {
		Page       int `json:"page"`
		PerPage    int `json:"per_page"`
		Total      int `json:"total"`
		TotalPages int `json:"total_pages"`
	} `json:"pagination"`
}

func TestPageCarriesPaginationMetadata(t *testing.T) {
	rec := httptest.NewRecorder()
	Page(rec, http.StatusOK, []string{"a", "b"}, 10, 20, 45)

	var body pageBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"a", "b"}, body.Data)
	assert.Equal(t, 3, body.Pagination.Page)
	assert.Equal(t, 10, body.Pagination.PerPage)
	assert.Equal(t, 45, body.Pagination.Total)
	assert.Equal(t, 5, body.Pagination.TotalPages)
}

func TestPageDefaultsTheWindow(t *testing.T) {
	rec := httptest.NewRecorder()
	Page(rec, http.StatusOK, []string{}, 0, 0, 7)

	var body pageBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Pagination.Page)
	assert.Equal(t, 50, body.Pagination.PerPage)
	assert.Equal(t, 1, body.Pagination.TotalPages)
}
