package main

import (
	"bytes"
	"fmt"
	"strings"
)

func flagName(option Option) string {
	return "--" + strings.Join(option.Yaml, ".")
}

func compileMarkdown(options []Option) []byte {
	buffer := bytes.Buffer{}

	buffer.WriteString("# Authform configuration reference\n")

	previousSection := "-"

	for _, option := range options {
		section := ""
		if len(option.Yaml) > 1 {
			section = option.Yaml[0]
		}

		if section != previousSection {
			if section != "" {
				buffer.WriteString("\n## " + section + "\n")
			}
			buffer.WriteString("\n| Environment | Flag | Description | Default |\n")
			buffer.WriteString("| - | - | - | - |\n")
			previousSection = section
		}

		fmt.Fprintf(&buffer, "| `%s` | `%s` | %s | `%s` |\n", envName(option), flagName(option), option.Description, defaultString(option.Default))
	}

	return buffer.Bytes()
}
