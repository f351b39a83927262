package main

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"

	"github.com/authform/authform/internal/config"
)

func envName(option Option) string {
	return config.DefaultNamePrefix + strings.ToUpper(strings.Join(option.Path, "_"))
}

func compileEnv(options []Option) []byte {
	buffer := bytes.Buffer{}
	buffer.WriteString("# Authform example configuration\n\n")

	for _, option := range options {
		value := defaultString(option.Default)

		if option.Default.Kind() == reflect.String && value != "" {
			value = fmt.Sprintf("%q", value)
		}

		fmt.Fprintf(&buffer, "# %s\n%s=%s\n\n", option.Description, envName(option), value)
	}

	return buffer.Bytes()
}
