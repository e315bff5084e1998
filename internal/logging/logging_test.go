package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestRedactsSecretsInMessage(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, []string{"sk-supersecret", "bearer-token"})

	log.Info("request failed for key sk-supersecret")

	line := buf.String()
	if strings.Contains(line, "sk-supersecret") {
		t.Fatalf("secret leaked into log output: %s", line)
	}
	if !strings.Contains(line, "[REDACTED]") {
		t.Fatalf("expected placeholder in log output: %s", line)
	}
}

func TestRedactsSecretsInAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, []string{"https://hooks.example.com/secret"})

	log.Error("pipeline_error", "err", errors.New("post https://hooks.example.com/secret: connection refused"))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	errField, _ := record["err"].(string)
	if strings.Contains(errField, "hooks.example.com/secret") {
		t.Fatalf("secret leaked into attr: %s", errField)
	}
	if !strings.Contains(errField, "[REDACTED]") {
		t.Fatalf("expected placeholder in attr: %s", errField)
	}
}

func TestEmptySecretsPassThrough(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, []string{"", ""})

	log.Info("pipeline_start", "term", "apt29")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if record["msg"] != "pipeline_start" {
		t.Fatalf("unexpected message: %v", record["msg"])
	}
	if record["term"] != "apt29" {
		t.Fatalf("unexpected term attr: %v", record["term"])
	}
}
