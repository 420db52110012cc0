package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"signet/internal/flows"
	"signet/internal/platform/config"
	"signet/internal/users"
	"signet/pkg/platform/sentinel"
	txcontext "signet/pkg/platform/tx"
)

// seed creates the rows the system assumes exist: the anonymous sentinel
// user, the default flows, and (debug only) a superuser to log in with.
// The user rows land in one transaction so a crashed boot never leaves a
// partially seeded account set.
func seed(ctx context.Context, cfg config.Config, db *sql.DB, userStore users.Store, flowStore flows.Store, log *slog.Logger) error {
	err := txcontext.RunInTx(ctx, db, func(tx *sql.Tx) error {
		txCtx := txcontext.WithTx(ctx, tx)
		return seedUsers(txCtx, cfg, userStore, log)
	})
	if err != nil {
		return err
	}
	return seedFlows(ctx, flowStore)
}

func seedUsers(ctx context.Context, cfg config.Config, userStore users.Store, log *slog.Logger) error {
	if err := userStore.Create(ctx, users.NewAnonymous()); err != nil && !errors.Is(err, sentinel.ErrConflict) {
		return fmt.Errorf("seed anonymous user: %w", err)
	}

	if cfg.Debug {
		admin, err := users.New("akadmin", "signet Default Admin", "admin@localhost", "akadmin")
		if err != nil {
			return fmt.Errorf("seed default admin: %w", err)
		}
		admin.IsSuperuser = true
		err = userStore.Create(ctx, admin)
		switch {
		case errors.Is(err, sentinel.ErrConflict):
			// Already seeded on a previous boot.
		case err != nil:
			return fmt.Errorf("seed default admin: %w", err)
		default:
			log.Info("debug mode: seeded default admin", "username", "akadmin")
		}
	}
	return nil
}

func seedFlows(ctx context.Context, flowStore flows.Store) error {
	defaultFlows := []struct {
		slug        string
		title       string
		designation flows.Designation
		stages      []string
	}{
		{"default-authentication", "Welcome to signet", flows.DesignationAuthentication, []string{"identification", "password"}},
		{"default-authorization", "Authorize application", flows.DesignationAuthorization, []string{"consent"}},
		{"default-enrollment", "Create an account", flows.DesignationEnrollment, []string{"prompt-profile", "prompt-password", "user-write"}},
	}
	for _, seed := range defaultFlows {
		flow, err := flows.New(seed.slug, seed.title, seed.designation, seed.stages)
		if err != nil {
			return fmt.Errorf("seed flow %q: %w", seed.slug, err)
		}
		if err := flowStore.Create(ctx, flow); err != nil && !errors.Is(err, sentinel.ErrConflict) {
			return fmt.Errorf("seed flow %q: %w", seed.slug, err)
		}
	}
	return nil
}
