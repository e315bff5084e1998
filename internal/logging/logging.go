package logging

import (
	"io"
	"log/slog"
	"strings"
)

const redactedPlaceholder = "[REDACTED]"

// New builds the JSON logger for one pipeline run. Every string that reaches
// the output — the message included — has the configured secrets replaced
// with a placeholder. Redaction happens at emit time only; the attribute
// values held by callers are untouched.
func New(w io.Writer, secrets []string) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       slog.LevelInfo,
		ReplaceAttr: redactAttr(secrets),
	})
	return slog.New(handler)
}

func redactAttr(secrets []string) func(groups []string, a slog.Attr) slog.Attr {
	cleaned := make([]string, 0, len(secrets))
	for _, s := range secrets {
		if s != "" {
			cleaned = append(cleaned, s)
		}
	}
	if len(cleaned) == 0 {
		return nil
	}

	return func(_ []string, a slog.Attr) slog.Attr {
		switch a.Value.Kind() {
		case slog.KindString:
			a.Value = slog.StringValue(redact(a.Value.String(), cleaned))
		case slog.KindAny:
			// Errors carry request URLs, which can embed the webhook secret.
			if err, ok := a.Value.Any().(error); ok {
				a.Value = slog.StringValue(redact(err.Error(), cleaned))
			}
		}
		return a
	}
}

func redact(text string, secrets []string) string {
	for _, secret := range secrets {
		text = strings.ReplaceAll(text, secret, redactedPlaceholder)
	}
	return text
}
