package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/strrl/intel-brief/internal/collect"
)

const (
	// The serialized bundle is cut to this many bytes before it is sent to
	// the model. Everything past the cut is dropped; the loss is the
	// token-budget control, not an accident.
	maxRawBytes = 2000

	defaultModel       = "gpt-4o-mini"
	defaultTemperature = 0.2
	defaultMaxTokens   = 600
)

// ErrBadModelOutput marks a completion whose content is not valid JSON.
// The run is not retried; the first parse failure is fatal.
var ErrBadModelOutput = errors.New("model output is not valid JSON")

// Result is the enrichment contract: indicator strings, MITRE ATT&CK
// technique IDs, and a short summary. The model is trusted to fill these;
// extra keys in its output are ignored, absent ones stay empty.
type Result struct {
	IoCs    []string `json:"iocs"`
	MITRE   []string `json:"mitre"`
	Summary string   `json:"summary"`
}

type Enricher struct {
	client *Client
	log    *slog.Logger
}

type EnricherConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
}

func NewEnricher(cfg EnricherConfig, log *slog.Logger) (*Enricher, error) {
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	client, err := NewClient(Config{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       model,
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
		HTTPClient:  cfg.HTTPClient,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create completion client: %w", err)
	}

	return &Enricher{client: client, log: log}, nil
}

// Enrich sends the collected bundle to the model and decodes the strict-JSON
// reply. Transport failures and unparsable output are both fatal to the run.
func (e *Enricher) Enrich(ctx context.Context, bundle collect.Bundle) (Result, error) {
	payload, err := json.Marshal(bundle)
	if err != nil {
		return Result{}, fmt.Errorf("failed to serialize bundle: %w", err)
	}

	raw := string(payload)
	if len(raw) > maxRawBytes {
		e.log.Info("bundle truncated", "from", len(raw), "to", maxRawBytes)
		raw = raw[:maxRawBytes]
	}

	systemPrompt, userPrompt := buildPrompt(raw)
	content, err := e.client.Chat(ctx, systemPrompt, userPrompt)
	if err != nil {
		return Result{}, fmt.Errorf("enrichment failed: %w", err)
	}

	var result Result
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrBadModelOutput, err)
	}
	return result, nil
}
