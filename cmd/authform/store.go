package main

import (
	"database/sql"
	"fmt"

	"github.com/authform/authform/internal/bootstrap"
	"github.com/authform/authform/internal/repository"
	"github.com/authform/authform/internal/service"
)

// openAuthService gives the user commands direct access to the database.
// Lockout is disabled since nothing outlives a single command.
func openAuthService(databasePath string) (*service.AuthService, *sql.DB, error) {
	db, err := bootstrap.SetupDatabase(databasePath)

	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	lockout := service.NewLockoutService(service.LockoutServiceConfig{}, service.NewMemoryAttemptStore())

	return service.NewAuthService(service.AuthServiceConfig{}, lockout, nil, repository.New(db)), db, nil
}
