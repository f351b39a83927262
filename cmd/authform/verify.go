package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/authform/authform/internal/service"
	"github.com/authform/authform/internal/utils/tlog"

	"github.com/charmbracelet/huh"
	"github.com/traefik/paerser/cli"
)

type VerifyUserConfig struct {
	Interactive  bool   `description:"Validate a user interactively."`
	Identifier   string `description:"Username or email."`
	Password     string `description:"Password."`
	DatabasePath string `description:"The path to the database file."`
}

func NewVerifyUserConfig() *VerifyUserConfig {
	return &VerifyUserConfig{
		Interactive:  false,
		Identifier:   "",
		Password:     "",
		DatabasePath: "./authform.db",
	}
}

func verifyUserCmd() *cli.Command {
	tCfg := NewVerifyUserConfig()

	loaders := []cli.ResourceLoader{
		&cli.FlagLoader{},
	}

	return &cli.Command{
		Name:          "verify",
		Description:   "Verify a user can log in with the given password.",
		Configuration: tCfg,
		Resources:     loaders,
		Run: func(_ []string) error {
			tlog.NewSimpleLogger().Init()

			if tCfg.Interactive {
				form := huh.NewForm(
					huh.NewGroup(
						huh.NewInput().Title("Username or email").Value(&tCfg.Identifier).Validate((func(s string) error {
							if s == "" {
								return errors.New("identifier cannot be empty")
							}
							return nil
						})),
						huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&tCfg.Password).Validate((func(s string) error {
							if s == "" {
								return errors.New("password cannot be empty")
							}
							return nil
						})),
					),
				)

				var baseTheme *huh.Theme = huh.ThemeBase()

				err := form.WithTheme(baseTheme).Run()

				if err != nil {
					return fmt.Errorf("failed to run interactive prompt: %w", err)
				}
			}

			return verifyUser(context.Background(), *tCfg)
		},
	}
}

func verifyUser(ctx context.Context, cfg VerifyUserConfig) error {
	auth, db, err := openAuthService(cfg.DatabasePath)

	if err != nil {
		return err
	}

	defer db.Close()

	user, err := auth.Login(ctx, service.LoginRequest{
		Identifier: cfg.Identifier,
		Password:   cfg.Password,
	})

	if err != nil {
		return fmt.Errorf("user could not be verified: %w", err)
	}

	tlog.App.Info().Str("username", user.Username).Str("email", user.Email).Msg("User verified")

	return nil
}
