package dataset

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallbackRouter(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantCode   string
		wantErr    string
	}{
		{
			name:       "code delivered",
			query:      "?state=abc&code=xyz",
			wantStatus: http.StatusOK,
			wantCode:   "xyz",
		},
		{
			name:       "state mismatch ignored",
			query:      "?state=other&code=xyz",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "consent denied",
			query:      "?state=abc&error=access_denied",
			wantStatus: http.StatusForbidden,
			wantErr:    "authorization denied: access_denied",
		},
		{
			name:       "missing code",
			query:      "?state=abc",
			wantStatus: http.StatusBadRequest,
			wantErr:    "no authorization code received",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codes := make(chan string, 1)
			errs := make(chan error, 1)
			h := callbackRouter("abc", codes, errs)

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, callbackPath+tt.query, nil))
			assert.Equal(t, tt.wantStatus, rec.Code)

			select {
			case code := <-codes:
				assert.Equal(t, tt.wantCode, code)
			default:
				assert.Empty(t, tt.wantCode, "expected a code")
			}

			select {
			case err := <-errs:
				require.NotEmpty(t, tt.wantErr, "unexpected error %v", err)
				assert.EqualError(t, err, tt.wantErr)
			default:
				assert.Empty(t, tt.wantErr, "expected an error")
			}
		})
	}
}

func TestAuthorizeSheets_RequiresCredentials(t *testing.T) {
	_, err := AuthorizeSheets(context.Background(), SheetsAuthConfig{}, func(string) {})
	require.Error(t, err)
}
