package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strings"

	"github.com/authform/authform/internal/config"
	"github.com/authform/authform/internal/utils/tlog"
)

// Option is one leaf of the configuration tree.
type Option struct {
	Path        []string
	Yaml        []string
	Description string
	Default     reflect.Value
}

func main() {
	tlog.NewSimpleLogger().Init()

	options := collectOptions(config.NewDefaultConfiguration())

	tlog.App.Info().Int("options", len(options)).Msg("Generating example env file")
	writeFile(".env.example", compileEnv(options))

	tlog.App.Info().Msg("Generating config reference markdown file")
	writeFile("config.gen.md", compileMarkdown(options))
}

func writeFile(path string, contents []byte) {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		tlog.App.Fatal().Err(err).Str("path", path).Msg("Failed to remove generated file")
	}

	err = os.WriteFile(path, contents, 0644)
	if err != nil {
		tlog.App.Fatal().Err(err).Str("path", path).Msg("Failed to write generated file")
	}
}

func collectOptions(cfg *config.Config) []Option {
	options := make([]Option, 0)
	walk(reflect.TypeOf(cfg).Elem(), reflect.ValueOf(cfg).Elem(), nil, nil, &options)
	return options
}

func walk(parent reflect.Type, parentValue reflect.Value, path, yamlPath []string, options *[]Option) {
	for i := 0; i < parent.NumField(); i++ {
		field := parent.Field(i)
		yamlTag := field.Tag.Get("yaml")

		// Fields hidden from yaml are only reachable through the file loader
		if yamlTag == "-" {
			continue
		}

		childPath := append(append([]string{}, path...), field.Name)
		childYaml := append(append([]string{}, yamlPath...), yamlTag)

		switch field.Type.Kind() {
		case reflect.Struct:
			walk(field.Type, parentValue.Field(i), childPath, childYaml, options)
		case reflect.Bool, reflect.String, reflect.Slice, reflect.Int:
			*options = append(*options, Option{
				Path:        childPath,
				Yaml:        childYaml,
				Description: field.Tag.Get("description"),
				Default:     parentValue.Field(i),
			})
		default:
			tlog.App.Warn().Str("field", field.Name).Str("kind", field.Type.Kind().String()).Msg("Skipping unsupported field type")
		}
	}
}

func defaultString(value reflect.Value) string {
	if value.Kind() == reflect.Slice {
		if sl, ok := value.Interface().([]string); ok {
			return strings.Join(sl, ",")
		}
		return ""
	}
	return fmt.Sprintf("%v", value.Interface())
}
