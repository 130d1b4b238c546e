package insight

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestBuildSystemPromptEmbedsContextFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "llms.txt")
	content := "## Columns\n\ntransaction_id, customer_segment, total_amount\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	prompt := BuildSystemPrompt(LoadDatasetContext(path), time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC))

	for _, want := range []string{"transaction_id", "customer_segment", "DATASET CONTEXT:"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(prompt, path) {
		t.Error("prompt should embed the file contents, not its path")
	}
	if !strings.Contains(prompt, "CURRENT DATE: 2026-08-31") {
		t.Error("prompt missing the current date")
	}
}

func TestLoadDatasetContextMissingFile(t *testing.T) {
	if got := LoadDatasetContext(filepath.Join(t.TempDir(), "absent.txt")); got != "" {
		t.Errorf("missing file should yield an empty context, got %q", got)
	}
	if got := LoadDatasetContext(""); got != "" {
		t.Errorf("empty path should yield an empty context, got %q", got)
	}
}

func TestBuildSystemPromptWithoutContext(t *testing.T) {
	prompt := BuildSystemPrompt("", time.Now())
	if strings.Contains(prompt, "DATASET CONTEXT:") {
		t.Error("empty context should omit the context section")
	}
	if !strings.Contains(prompt, "OUTPUT CONTRACT:") {
		t.Error("prompt missing the output contract")
	}
}
