package service

import (
	"context"
	"testing"
	"time"

	"courier-track/internal/domain/courier"
	"courier-track/internal/general/jwt"
	"courier-track/internal/ports"
	"courier-track/internal/tracking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginIssuesToken(t *testing.T) {
	couriers := newFakeCourierRepo()
	couriers.byCredentials["admin:secret"] = courier.Courier{
		ID: "u-1", Username: "admin", Name: "Admin", Role: courier.RoleAdmin, Status: courier.StatusOffline,
	}

	svc := newTestService(couriers, newFakeParcelRepo(), &fakeLocationStore{}, tracking.NewProjector())

	result, err := svc.Login(context.Background(), "admin", "secret")
	require.NoError(t, err)
	assert.Equal(t, "u-1", result.User.ID)
	assert.Equal(t, "admin", result.User.Role)

	// the token must verify against the same secret
	mgr := jwt.NewManager("test-secret", time.Hour)
	_, claims, err := mgr.ParseAndValidate(result.Token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.Subject)
	assert.Equal(t, courier.RoleAdmin, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	couriers := newFakeCourierRepo()
	couriers.byCredentials["admin:secret"] = courier.Courier{ID: "u-1", Username: "admin", Name: "Admin", Role: courier.RoleAdmin}

	svc := newTestService(couriers, newFakeParcelRepo(), &fakeLocationStore{}, tracking.NewProjector())

	_, err := svc.Login(context.Background(), "admin", "wrong")
	assert.ErrorIs(t, err, ports.ErrInvalidCredentials)
}

func TestLoginUnknownAccount(t *testing.T) {
	svc := newTestService(newFakeCourierRepo(), newFakeParcelRepo(), &fakeLocationStore{}, tracking.NewProjector())

	_, err := svc.Login(context.Background(), "ghost", "secret")
	assert.ErrorIs(t, err, ports.ErrInvalidCredentials)
}

func TestLoginRepoFailureIsNotCredentialError(t *testing.T) {
	couriers := newFakeCourierRepo()
	couriers.err = errRepoDown

	svc := newTestService(couriers, newFakeParcelRepo(), &fakeLocationStore{}, tracking.NewProjector())

	_, err := svc.Login(context.Background(), "admin", "secret")
	assert.ErrorIs(t, err, errRepoDown)
	assert.NotErrorIs(t, err, ports.ErrInvalidCredentials)
}
