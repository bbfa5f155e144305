package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/diewo77/go-rentals/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_MapsKinds(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{apperr.NotFound("payment 4 not found"), http.StatusNotFound, "not_found"},
		{apperr.Conflict("already distributed"), http.StatusBadRequest, "conflict"},
		{apperr.Validation(map[string]string{"mes": "out_of_range"}, "bad"), http.StatusBadRequest, "validation_failed"},
		{apperr.Unauthorized("no"), http.StatusUnauthorized, "unauthorized"},
		{apperr.Forbidden("no"), http.StatusForbidden, "forbidden"},
		{errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		Error(rec, tt.err)
		assert.Equal(t, tt.status, rec.Code, tt.code)
		var body ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, tt.code, body.Error)
	}
}

func TestError_ValidationDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, apperr.Validation(map[string]string{"mes": "out_of_range"}, "invalid tax input"))
	assert.JSONEq(t, `{"error":"validation_failed","message":"invalid tax input","details":{"mes":"out_of_range"}}`, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Rent string `json:"rent"`
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"rent":"3000"}`))
	require.NoError(t, DecodeJSON(r, &dst))
	assert.Equal(t, "3000", dst.Rent)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"other":1}`))
	assert.True(t, apperr.IsValidation(DecodeJSON(r, &dst)))
}

func TestPathIDAndQueryInt(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/x?year=2026&bad=x", nil)
	r.SetPathValue("id", "12")
	id, err := PathID(r, "id")
	require.NoError(t, err)
	assert.Equal(t, uint(12), id)

	r.SetPathValue("id", "0")
	_, err = PathID(r, "id")
	assert.True(t, apperr.IsValidation(err))

	year, err := QueryInt(r, "year", 0)
	require.NoError(t, err)
	assert.Equal(t, 2026, year)
	def, err := QueryInt(r, "missing", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, def)
	_, err = QueryInt(r, "bad", 0)
	assert.Error(t, err)
}
