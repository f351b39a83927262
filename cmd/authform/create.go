package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/authform/authform/internal/utils"
	"github.com/authform/authform/internal/utils/tlog"

	"github.com/charmbracelet/huh"
	"github.com/traefik/paerser/cli"
)

type CreateUserConfig struct {
	Interactive  bool   `description:"Create a user interactively."`
	Username     string `description:"Username."`
	Email        string `description:"Email address."`
	Password     string `description:"Password."`
	DatabasePath string `description:"The path to the database file."`
}

func NewCreateUserConfig() *CreateUserConfig {
	return &CreateUserConfig{
		Interactive:  false,
		Username:     "",
		Email:        "",
		Password:     "",
		DatabasePath: "./authform.db",
	}
}

func createUserCmd() *cli.Command {
	tCfg := NewCreateUserConfig()

	loaders := []cli.ResourceLoader{
		&cli.FlagLoader{},
	}

	return &cli.Command{
		Name:          "create",
		Description:   "Create a user in the database.",
		Configuration: tCfg,
		Resources:     loaders,
		Run: func(_ []string) error {
			tlog.NewSimpleLogger().Init()

			if tCfg.Interactive {
				form := huh.NewForm(
					huh.NewGroup(
						huh.NewInput().Title("Email").Value(&tCfg.Email).Validate((func(s string) error {
							if !utils.IsValidEmail(s) {
								return errors.New("enter a valid email address")
							}
							return nil
						})),
						huh.NewInput().Title("Username (defaults to the email local part)").Value(&tCfg.Username),
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

			return createUser(context.Background(), *tCfg)
		},
	}
}

func createUser(ctx context.Context, cfg CreateUserConfig) error {
	if cfg.Email == "" || cfg.Password == "" {
		return errors.New("email and password cannot be empty")
	}

	username := cfg.Username

	if username == "" {
		username = utils.EmailLocalPart(cfg.Email)
	}

	auth, db, err := openAuthService(cfg.DatabasePath)

	if err != nil {
		return err
	}

	defer db.Close()

	tlog.App.Info().Str("username", username).Str("email", cfg.Email).Msg("Creating user")

	user, err := auth.RegisterUser(ctx, username, cfg.Email, cfg.Password)

	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	tlog.App.Info().Str("username", user.Username).Msg("User created")

	return nil
}
