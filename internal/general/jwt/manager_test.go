package jwt

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"courier-track/internal/domain/courier"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndValidateRoundTrip(t *testing.T) {
	mgr := NewManager("test-secret", time.Hour)

	token, claims, err := mgr.IssueUserToken("user-1", courier.RoleAdmin)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, "user-1", claims.Subject)

	_, parsed, err := mgr.ParseAndValidate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", parsed.Subject)
	assert.Equal(t, courier.RoleAdmin, parsed.Role)
}

func TestIssueRejectsInvalidRole(t *testing.T) {
	mgr := NewManager("test-secret", time.Hour)

	_, _, err := mgr.IssueUserToken("user-1", courier.Role("superuser"))
	assert.Error(t, err)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	mgr := NewManager("test-secret", time.Hour)
	other := NewManager("other-secret", time.Hour)

	token, _, err := mgr.IssueUserToken("user-1", courier.RoleCourier)
	require.NoError(t, err)

	_, _, err = other.ParseAndValidate(token)
	assert.Error(t, err)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	mgr := NewManager("test-secret", -time.Minute)

	token, _, err := mgr.IssueUserToken("user-1", courier.RoleCourier)
	require.NoError(t, err)

	_, _, err = mgr.ParseAndValidate(token)
	assert.Error(t, err)
}

func TestNewManagerPanicsOnEmptySecret(t *testing.T) {
	assert.Panics(t, func() { NewManager("  ", time.Hour) })
}

func TestRoleAllowed(t *testing.T) {
	claims := NewUserClaims("user-1", courier.RoleCourier, time.Hour)

	assert.NoError(t, RoleAllowed(claims, courier.RoleCourier))
	assert.NoError(t, RoleAllowed(claims, courier.RoleAdmin, courier.RoleCourier))
	assert.ErrorIs(t, RoleAllowed(claims, courier.RoleAdmin), ErrRoleForbidden)
}

func TestFromAuthorization(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer abc")

	token, err := FromAuthorization(r)
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	// query parameter fallback
	r = httptest.NewRequest(http.MethodGet, "/?Authorization=xyz", nil)
	token, err = FromAuthorization(r)
	require.NoError(t, err)
	assert.Equal(t, "xyz", token)

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	_, err = FromAuthorization(r)
	assert.ErrorIs(t, err, ErrNoAuthHeader)
}

func TestAuthMiddleware(t *testing.T) {
	mgr := NewManager("test-secret", time.Hour)
	mw := AuthMiddlewareFunc(mgr, courier.RoleAdmin)

	var gotClaims *Claims
	protected := mw(func(w http.ResponseWriter, r *http.Request) {
		gotClaims = RequireClaims(r)
		w.WriteHeader(http.StatusOK)
	})

	// no token
	rec := httptest.NewRecorder()
	protected(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// wrong role
	courierToken, _, err := mgr.IssueUserToken("user-1", courier.RoleCourier)
	require.NoError(t, err)
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+courierToken)
	rec = httptest.NewRecorder()
	protected(rec, r)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// admin passes and claims land in the context
	adminToken, _, err := mgr.IssueUserToken("admin-1", courier.RoleAdmin)
	require.NoError(t, err)
	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+adminToken)
	rec = httptest.NewRecorder()
	protected(rec, r)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, gotClaims)
	assert.Equal(t, "admin-1", gotClaims.Subject)
}
