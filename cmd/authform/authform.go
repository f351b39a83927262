package main

import (
	"fmt"

	"github.com/authform/authform/internal/bootstrap"
	"github.com/authform/authform/internal/config"
	"github.com/authform/authform/internal/utils/loaders"
	"github.com/authform/authform/internal/utils/tlog"

	"github.com/rs/zerolog/log"
	"github.com/traefik/paerser/cli"
)

func main() {
	tConfig := config.NewDefaultConfiguration()

	loaders := []cli.ResourceLoader{
		&loaders.FileLoader{},
		&loaders.FlagLoader{},
		&loaders.EnvLoader{},
	}

	cmdAuthform := &cli.Command{
		Name:          "authform",
		Description:   "A login and sign-up form with lockout and Google sign-in.",
		Configuration: tConfig,
		Resources:     loaders,
		Run: func(_ []string) error {
			return runCmd(*tConfig)
		},
	}

	subcommands := []*cli.Command{
		versionCmd(),
		healthcheckCmd(),
		createUserCmd(),
		verifyUserCmd(),
		importUsersCmd(),
	}

	for _, cmd := range subcommands {
		if err := cmdAuthform.AddCommand(cmd); err != nil {
			log.Fatal().Err(err).Msgf("Failed to add %s command", cmd.Name)
		}
	}

	err := cli.Execute(cmdAuthform)

	if err != nil {
		log.Fatal().Err(err).Msg("Failed to execute command")
	}
}

func runCmd(cfg config.Config) error {
	tlog.NewLogger(cfg.Log).Init()

	tlog.App.Info().Str("version", config.Version).Msg("Starting authform")

	app := bootstrap.NewBootstrapApp(cfg)

	err := app.Setup()

	if err != nil {
		return fmt.Errorf("failed to bootstrap app: %w", err)
	}

	return app.Start()
}
