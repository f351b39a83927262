package tlog

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// newFileWriter appends plain text lines to path, one event per line:
//
//	2026-01-01T12:00:00Z [ WARN ] event=login identifier=alice ip=10.0.0.1 result=failure
//
// The file stays open for the lifetime of the process.
func newFileWriter(path string) (io.Writer, error) {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0640)

	if err != nil {
		return nil, err
	}

	return plainTextWriter(file), nil
}

func plainTextWriter(out io.Writer) zerolog.ConsoleWriter {
	writer := zerolog.ConsoleWriter{
		Out:           out,
		TimeFormat:    time.RFC3339,
		NoColor:       true,
		PartsOrder:    []string{"time", "level", "message"},
		FieldsExclude: []string{zerolog.CallerFieldName, "log_stream"},
	}
	writer.FormatLevel = func(i any) string {
		return strings.ToUpper(fmt.Sprintf("[ %s ]", i))
	}
	writer.FormatMessage = func(i any) string {
		if i == nil {
			return ""
		}
		return fmt.Sprintf("%s", i)
	}
	writer.FormatFieldName = func(i any) string {
		return fmt.Sprintf("%s=", i)
	}
	writer.FormatFieldValue = func(i any) string {
		return fmt.Sprintf("%s", i)
	}
	return writer
}
