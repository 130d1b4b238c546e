package insight

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const specContract = `OUTPUT CONTRACT:
Respond with a single JSON object and nothing else. No prose, no markdown fences.

{
  "intent": "<short restatement of what the user wants>",
  "metric": "revenue | quantity | transactions | customers | avg_order | avg_discount",
  "dimension": "region | product | channel | segment | salesperson | month | \"\" (overall summary)",
  "filter": {
    "regions": [], "products": [], "channels": [], "segments": [],
    "from": "YYYY-MM-DD or omit", "to": "YYYY-MM-DD or omit"
  },
  "limit": 10,
  "chart": "bar | line | pie | table | none",
  "title": "<chart/table title>",
  "reply": "<one-sentence answer preamble for the user>",
  "confidence": 0.0-1.0
}

You are a TRANSLATOR ONLY. Never compute values yourself; the engine runs the
query locally. If the question cannot be answered from this dataset, return the
overall summary with confidence below 0.3 and say so in the reply.`

// LoadDatasetContext reads the assistant context file. A missing or
// unreadable file degrades to an empty context rather than failing the
// translator.
func LoadDatasetContext(path string) string {
	if path == "" {
		return ""
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(content))
}

// BuildSystemPrompt assembles the translator's system prompt from the
// dataset context, the output contract, and the current date for relative
// ranges like "last quarter".
func BuildSystemPrompt(datasetContext string, now time.Time) string {
	var b strings.Builder

	b.WriteString("You translate natural-language questions about a sales dataset into query specs.\n\n")
	fmt.Fprintf(&b, "CURRENT DATE: %s\n\n", now.Format("2006-01-02"))

	if datasetContext != "" {
		b.WriteString("DATASET CONTEXT:\n")
		b.WriteString(datasetContext)
		b.WriteString("\n\n")
	}

	b.WriteString(specContract)
	return b.String()
}

// BuildUserPrompt renders the question preceded by any few-shot examples
// drawn from recent successful asks.
func BuildUserPrompt(question string, examples []Example) string {
	if len(examples) == 0 {
		return question
	}

	var b strings.Builder
	b.WriteString("EXAMPLES of past questions and their specs:\n")
	for _, ex := range examples {
		fmt.Fprintf(&b, "Q: %s\nA: %s\n", ex.Question, ex.SpecJSON)
	}
	b.WriteString("\nQUESTION: ")
	b.WriteString(question)
	return b.String()
}
