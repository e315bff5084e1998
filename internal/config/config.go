package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/term"
)

// Config holds the validated values the pipeline needs for one run.
// It is constructed once by Load and never mutated afterwards.
type Config struct {
	OpenAIAPIKey  string
	TwitterBearer string
	WebhookURL    string
	OutputDir     string
}

func Load() (Config, error) {
	// A missing .env file is fine; the process environment still applies.
	_ = godotenv.Load()

	apiKey, err := requireSecret("OPENAI_API_KEY")
	if err != nil {
		return Config{}, err
	}

	bearer, err := requireSecret("TWITTER_BEARER")
	if err != nil {
		return Config{}, err
	}

	webhookURL, err := requireSecret("TEAMS_WEBHOOK_URL")
	if err != nil {
		return Config{}, err
	}
	if !strings.HasPrefix(webhookURL, "https://") {
		return Config{}, fmt.Errorf("TEAMS_WEBHOOK_URL must start with https://")
	}

	outputDir := os.Getenv("SHARE_PATH")
	if outputDir == "" {
		return Config{}, fmt.Errorf("SHARE_PATH is required")
	}
	outputDir, err = expandDir(outputDir)
	if err != nil {
		return Config{}, err
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return Config{}, fmt.Errorf("failed to create SHARE_PATH: %w", err)
	}
	if err := checkWritable(outputDir); err != nil {
		return Config{}, fmt.Errorf("SHARE_PATH is not writable: %w", err)
	}

	return Config{
		OpenAIAPIKey:  apiKey,
		TwitterBearer: bearer,
		WebhookURL:    webhookURL,
		OutputDir:     outputDir,
	}, nil
}

// Secrets returns the values that must never appear verbatim in log output.
func (c Config) Secrets() []string {
	return []string{c.OpenAIAPIKey, c.TwitterBearer, c.WebhookURL}
}

func requireSecret(name string) (string, error) {
	value := os.Getenv(name)
	if value == "" && term.IsTerminal(int(os.Stdin.Fd())) {
		value = promptSecret(name)
	}
	if value == "" {
		return "", fmt.Errorf("%s is required", name)
	}
	return value, nil
}

func promptSecret(name string) string {
	fmt.Fprintf(os.Stderr, "Enter %s: ", name)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(raw))
}

func expandDir(dir string) (string, error) {
	if dir == "~" || strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		dir = filepath.Join(home, strings.TrimPrefix(dir, "~"))
	}
	return filepath.Abs(dir)
}

func checkWritable(dir string) error {
	probe, err := os.CreateTemp(dir, ".intel-brief-*")
	if err != nil {
		return err
	}
	probe.Close()
	return os.Remove(probe.Name())
}
