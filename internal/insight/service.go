package insight

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"sales-dashboard/internal/history"
)

const fewShotExamples = 3

// Service runs the full ask pipeline: recall examples, translate, execute,
// record. The CLI ask command and POST /api/ask both go through it.
type Service struct {
	translator Translator
	executor   *Executor
	history    *history.Store
	logger     *slog.Logger
}

// NewService wires the pipeline. history may be nil; asks then go unrecorded.
func NewService(translator Translator, executor *Executor, hist *history.Store, logger *slog.Logger) *Service {
	return &Service{
		translator: translator,
		executor:   executor,
		history:    hist,
		logger:     logger,
	}
}

// Ask answers the question. Translation failures degrade to the fallback
// summary spec rather than erroring: the user always gets an answer, with
// the confidence saying how much to trust it.
func (s *Service) Ask(ctx context.Context, question string) Answer {
	start := time.Now()

	spec, usage, err := s.translator.Translate(ctx, question, s.recentExamples())
	if err != nil {
		s.logger.Warn("translate failed, using fallback spec", "error", err, "question", question)
	}

	answer := s.executor.Execute(spec)
	answer.Source = s.translator.Name()

	s.record(question, answer, usage, time.Since(start), err == nil)

	s.logger.Info("ask answered",
		"question", question,
		"metric", answer.Spec.Metric,
		"dimension", answer.Spec.Dimension,
		"confidence", answer.Confidence,
		"source", answer.Source,
		"duration", time.Since(start),
	)
	return answer
}

func (s *Service) recentExamples() []Example {
	if s.history == nil {
		return nil
	}
	asks, err := s.history.RecentGood(fewShotExamples)
	if err != nil {
		s.logger.Warn("load ask examples", "error", err)
		return nil
	}
	examples := make([]Example, 0, len(asks))
	for _, a := range asks {
		examples = append(examples, Example{Question: a.Question, SpecJSON: a.SpecJSON})
	}
	return examples
}

func (s *Service) record(question string, answer Answer, usage Usage, duration time.Duration, ok bool) {
	if s.history == nil {
		return
	}

	specJSON, err := json.Marshal(answer.Spec)
	if err != nil {
		specJSON = nil
	}
	if err := s.history.RecordAsk(history.Ask{
		Question:     question,
		SpecJSON:     string(specJSON),
		Confidence:   answer.Confidence,
		Duration:     duration,
		InputTokens:  usage.InputTokens,
		OutputTokens: usage.OutputTokens,
		OK:           ok,
	}); err != nil {
		s.logger.Warn("record ask", "error", err)
	}
}
