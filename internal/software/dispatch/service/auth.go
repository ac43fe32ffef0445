package service

import (
	"context"
	"errors"

	"courier-track/internal/domain/courier"
	"courier-track/internal/ports"
)

// Login verifies credentials and issues an access token. A missing
// account and a wrong password are indistinguishable to the caller.
func (service *dispatchService) Login(ctx context.Context, username, password string) (ports.LoginResult, error) {
	var account *courier.Courier

	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		c, err := service.couriers.GetByCredentials(txCtx, username, password)
		if err != nil {
			return err
		}
		account = c
		return nil
	})
	if errors.Is(err, courier.ErrNotFound) {
		service.logger.Info(ctx, "login_rejected", "Login attempt with invalid credentials",
			map[string]any{"username": username})
		return ports.LoginResult{}, ports.ErrInvalidCredentials
	}
	if err != nil {
		service.logger.Error(ctx, "login_failed", "Credential lookup failed", err,
			map[string]any{"username": username})
		return ports.LoginResult{}, err
	}

	token, _, err := service.auth.IssueUserToken(account.ID, account.Role)
	if err != nil {
		service.logger.Error(ctx, "token_issue_failed", "Failed to sign access token", err,
			map[string]any{"user_id": account.ID})
		return ports.LoginResult{}, err
	}

	service.logger.Info(ctx, "login_succeeded", "Account logged in", map[string]any{
		"user_id": account.ID,
		"role":    account.Role.String(),
	})

	return ports.LoginResult{
		User:  courierView(*account),
		Token: token,
	}, nil
}
