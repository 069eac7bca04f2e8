package common

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON(t *testing.T) {
	type body struct {
		Name string `json:"name"`
	}
	tests := []struct {
		name    string
		input   string
		want    string
		details []string
	}{
		{"valid", `{"name":"ok"}`, "ok", nil},
		{"empty body", ``, "", nil},
		{"malformed", `{bad`, "", []string{"body must be a JSON object"}},
		{"wrong type", `{"name":5}`, "", []string{"name has the wrong type"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var dst body
			err := DecodeJSON(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.input)), &dst)
			if tc.details == nil {
				require.NoError(t, err)
				assert.Equal(t, tc.want, dst.Name)
				return
			}
			var e *Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, KindValidation, e.Kind)
			assert.Equal(t, "invalid request body", e.Message)
			assert.Equal(t, tc.details, e.Errors)
		})
	}
}

func TestOwnerFirst(t *testing.T) {
	bodyErr := ValidationError("invalid request body")
	denied := AuthorizationError("not yours")

	assert.Equal(t, denied, OwnerFirst(bodyErr, func() error { return denied }))
	assert.Equal(t, bodyErr, OwnerFirst(bodyErr, func() error { return nil }))
}

func TestWriteError_HidesInternalCause(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, nil, StorageError("failed to load video", errors.New("connection refused at 10.0.0.3")))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.3")
	assert.Contains(t, rec.Body.String(), "failed to load video")
}
