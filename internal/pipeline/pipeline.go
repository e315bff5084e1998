package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/strrl/intel-brief/internal/ai"
	"github.com/strrl/intel-brief/internal/collect"
	"github.com/strrl/intel-brief/internal/config"
	"github.com/strrl/intel-brief/internal/notify"
	"github.com/strrl/intel-brief/internal/report"
)

// One client carries every call of a run; this is the session-wide bound,
// sized for the model call, the slowest stage.
const sessionTimeout = 40 * time.Second

// Sources overrides the outbound endpoints; zero values keep the defaults.
type Sources struct {
	RSSURL       string
	NVDURL       string
	TwitterURL   string
	Model        string
	ModelBaseURL string
}

type Pipeline struct {
	cfg     config.Config
	sources Sources
	log     *slog.Logger
}

func New(cfg config.Config, sources Sources, log *slog.Logger) *Pipeline {
	return &Pipeline{cfg: cfg, sources: sources, log: log}
}

// Run executes collect → enrich → notify → persist for one search term.
// On any stage failure it logs the error, best-effort posts the error text
// to the webhook, and returns the original error untouched.
func (p *Pipeline) Run(ctx context.Context, term string) (ai.Result, error) {
	log := p.log.With("run_id", uuid.NewString())
	log.Info("pipeline_start", "term", term)

	result, err := p.run(ctx, term, log)
	if err != nil {
		log.Error("pipeline_error", "err", err)
		// The failure report must outlive whatever cancelled the run.
		notifyCtx := context.WithoutCancel(ctx)
		if nerr := notify.SendError(notifyCtx, p.cfg.WebhookURL, err.Error()); nerr != nil {
			log.Warn("error notification failed", "err", nerr)
		}
		return ai.Result{}, err
	}

	log.Info("pipeline_complete", "iocs", len(result.IoCs), "mitre", len(result.MITRE))
	return result, nil
}

func (p *Pipeline) run(ctx context.Context, term string, log *slog.Logger) (ai.Result, error) {
	client := &http.Client{Timeout: sessionTimeout}

	collector := collect.New(client, collect.Config{
		RSSURL:     p.sources.RSSURL,
		NVDURL:     p.sources.NVDURL,
		TwitterURL: p.sources.TwitterURL,
		Bearer:     p.cfg.TwitterBearer,
	}, log)

	bundle, err := collector.Collect(ctx, term)
	if err != nil {
		return ai.Result{}, fmt.Errorf("collection failed: %w", err)
	}

	enricher, err := ai.NewEnricher(ai.EnricherConfig{
		APIKey:     p.cfg.OpenAIAPIKey,
		BaseURL:    p.sources.ModelBaseURL,
		Model:      p.sources.Model,
		HTTPClient: client,
	}, log)
	if err != nil {
		return ai.Result{}, err
	}

	result, err := enricher.Enrich(ctx, bundle)
	if err != nil {
		return ai.Result{}, err
	}

	notifier := notify.New(client, p.cfg.WebhookURL)
	if err := notifier.Send(ctx, result.Summary); err != nil {
		return ai.Result{}, fmt.Errorf("notification failed: %w", err)
	}

	jsonPath, mdPath, err := report.NewWriter(p.cfg.OutputDir).Write(result)
	if err != nil {
		return ai.Result{}, err
	}
	log.Info("artifacts written", "json", jsonPath, "md", mdPath)

	return result, nil
}
