package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/authform/authform/internal/utils/tlog"

	"github.com/traefik/paerser/cli"
)

type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func healthcheckCmd() *cli.Command {
	return &cli.Command{
		Name:          "healthcheck",
		Description:   "Perform a health check against a running instance.",
		Configuration: nil,
		Resources:     nil,
		AllowArg:      true,
		Run: func(args []string) error {
			tlog.NewSimpleLogger().Init()

			appUrl := os.Getenv("AUTHFORM_APPURL")

			if len(args) > 0 {
				appUrl = args[0]
			}

			if appUrl == "" {
				return errors.New("AUTHFORM_APPURL is not set and no argument was provided")
			}

			return checkHealth(&http.Client{Timeout: 30 * time.Second}, appUrl)
		},
	}
}

func checkHealth(client *http.Client, appUrl string) error {
	tlog.App.Info().Str("app_url", appUrl).Msg("Performing health check")

	resp, err := client.Get(strings.TrimSuffix(appUrl, "/") + "/api/health")

	if err != nil {
		return fmt.Errorf("failed to perform request: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service is not healthy, got: %s", resp.Status)
	}

	var health healthResponse

	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	tlog.App.Info().Interface("response", health).Msg("authform is healthy")

	return nil
}
