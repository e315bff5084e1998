package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/strrl/intel-brief/internal/ai"
)

const timestampLayout = "20060102T150405Z"

// Writer persists one enrichment result per run as a timestamped JSON file
// and a timestamped Markdown report in the output directory.
type Writer struct {
	outputDir string
	now       func() time.Time
}

func NewWriter(outputDir string) *Writer {
	return &Writer{outputDir: outputDir, now: time.Now}
}

// Write produces <ts>.json and <ts>.md and returns both paths.
func (w *Writer) Write(result ai.Result) (string, string, error) {
	ts := w.now().UTC().Format(timestampLayout)

	jsonPath := filepath.Join(w.outputDir, ts+".json")
	raw, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("failed to serialize result: %w", err)
	}
	if err := os.WriteFile(jsonPath, raw, 0644); err != nil {
		return "", "", fmt.Errorf("failed to write JSON artifact: %w", err)
	}

	mdPath := filepath.Join(w.outputDir, ts+".md")
	if err := os.WriteFile(mdPath, []byte(renderMarkdown(result)), 0644); err != nil {
		return "", "", fmt.Errorf("failed to write Markdown artifact: %w", err)
	}

	return jsonPath, mdPath, nil
}

func renderMarkdown(result ai.Result) string {
	var sb strings.Builder
	sb.WriteString("# Summary\n")
	sb.WriteString(result.Summary)
	sb.WriteString("\n\n## IoCs\n")
	for _, ioc := range result.IoCs {
		fmt.Fprintf(&sb, "- %s\n", ioc)
	}
	sb.WriteString("\n## MITRE\n")
	for _, id := range result.MITRE {
		fmt.Fprintf(&sb, "- %s\n", id)
	}
	return sb.String()
}
