package loaders

import (
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/traefik/paerser/cli"
	"github.com/traefik/paerser/file"
	"github.com/traefik/paerser/flag"
)

// paerser prefixes every flag with its default root name
const configFileFlag = "traefik.experimental.configfile"

type FileLoader struct{}

func (f *FileLoader) Load(args []string, cmd *cli.Command) (bool, error) {
	flags, err := flag.Parse(args, cmd.Configuration)

	if err != nil {
		return false, err
	}

	var path string

	for key, value := range flags {
		if strings.EqualFold(key, configFileFlag) {
			path = value
			break
		}
	}

	if path == "" {
		return false, nil
	}

	log.Warn().Str("path", path).Msg("Using experimental file config loader, this feature may change or be removed in future releases")

	err = file.Decode(path, cmd.Configuration)

	if err != nil {
		return false, err
	}

	return true, nil
}
