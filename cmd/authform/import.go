package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/authform/authform/internal/utils"
	"github.com/authform/authform/internal/utils/tlog"

	"github.com/traefik/paerser/cli"
)

type ImportUsersConfig struct {
	File         string `description:"JSON file with the exported users list."`
	DatabasePath string `description:"The path to the database file."`
}

func NewImportUsersConfig() *ImportUsersConfig {
	return &ImportUsersConfig{
		File:         "",
		DatabasePath: "./authform.db",
	}
}

func importUsersCmd() *cli.Command {
	tCfg := NewImportUsersConfig()

	loaders := []cli.ResourceLoader{
		&cli.FlagLoader{},
	}

	return &cli.Command{
		Name:          "import",
		Description:   "Import users exported from the browser store, their hashes are upgraded on first login.",
		Configuration: tCfg,
		Resources:     loaders,
		Run: func(_ []string) error {
			tlog.NewSimpleLogger().Init()
			return importUsers(context.Background(), *tCfg)
		},
	}
}

func importUsers(ctx context.Context, cfg ImportUsersConfig) error {
	if cfg.File == "" {
		return errors.New("file cannot be empty")
	}

	users, err := utils.GetLegacyUsers(cfg.File)

	if err != nil {
		return fmt.Errorf("failed to read users: %w", err)
	}

	auth, db, err := openAuthService(cfg.DatabasePath)

	if err != nil {
		return err
	}

	defer db.Close()

	imported, err := auth.ImportLegacyUsers(ctx, users)

	if err != nil {
		return err
	}

	tlog.App.Info().Int("imported", imported).Int("skipped", len(users)-imported).Msg("Users imported")

	return nil
}
