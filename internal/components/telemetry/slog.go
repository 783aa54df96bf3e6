package telemetry

import (
	"fmt"
	"log/slog"
)

// SlogAPI writes reports to the default slog logger. Params become the attributes
// param.0, param.1 and so on.
type SlogAPI struct{}

func slogArgs(head []any, params []any) []any {
	args := make([]any, 0, len(head)+2*len(params))
	args = append(args, head...)
	for i, param := range params {
		args = append(args, fmt.Sprintf("param.%d", i), param)
	}
	return args
}

func (SlogAPI) ReportBroken(id string, params ...any) {
	slog.Error("operation failed", slogArgs([]any{"id", id}, params)...)
}

func (SlogAPI) ReportWarning(id string, params ...any) {
	slog.Warn("operation recovered", slogArgs([]any{"id", id}, params)...)
}

func (SlogAPI) ReportDebug(msg string, params ...any) {
	slog.Debug(msg, slogArgs(nil, params)...)
}

func (SlogAPI) ReportCount(id string, count int64) {
	slog.Info("counter", "id", id, "value", count)
}
