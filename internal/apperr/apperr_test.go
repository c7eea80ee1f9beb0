package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorsSetCode(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		kind Kind
		code int
	}{
		{"validation", Validation("bad"), KindValidation, http.StatusBadRequest},
		{"auth", Unauthorized("no"), KindAuth, http.StatusUnauthorized},
		{"forbidden", Forbidden("no"), KindForbidden, http.StatusForbidden},
		{"not found", NotFound("gone"), KindNotFound, http.StatusNotFound},
		{"conflict", Conflict("dup"), KindConflict, http.StatusBadRequest},
		{"upstream", Upstream(http.StatusUnauthorized, "auth0"), KindUpstream, http.StatusUnauthorized},
		{"internal", Internal("boom"), KindInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.err.Kind)
			assert.Equal(t, tt.code, tt.err.Code)
		})
	}
}

func TestAsUnwrapsChain(t *testing.T) {
	cause := errors.New("connection reset")
	wrapped := fmt.Errorf("verify: %w", Upstream(http.StatusUnauthorized, "userinfo failed", cause))

	e, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, "userinfo failed", e.Message)
	assert.ErrorIs(t, wrapped, cause)
	assert.True(t, IsKind(wrapped, KindUpstream))
	assert.False(t, IsKind(errors.New("plain"), KindUpstream))
}

func TestIsDuplicateKey(t *testing.T) {
	assert.True(t, IsDuplicateKey(errors.New(`ERROR: duplicate key value violates unique constraint "idx_accounts_sub_app" (SQLSTATE 23505)`)))
	assert.True(t, IsDuplicateKey(errors.New("UNIQUE constraint failed: accounts.auth0_sub, accounts.app_id")))
	assert.False(t, IsDuplicateKey(errors.New("record not found")))
	assert.False(t, IsDuplicateKey(nil))
}
