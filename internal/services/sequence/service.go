package sequence

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mcoot/symbolduel/internal/dependencies/judge"
	"github.com/mcoot/symbolduel/internal/dependencies/random"
	"github.com/mcoot/symbolduel/internal/model"
)

// Config controls sequence generation
type Config struct {
	MinLength int
	MaxLength int
	DisplayMs int
}

// DefaultConfig returns the standard difficulty curve
func DefaultConfig() Config {
	return Config{
		MinLength: 3,
		MaxLength: 5,
		DisplayMs: 6000,
	}
}

// Validate checks the lengths stay within what the judge contract allows
func (c Config) Validate() error {
	if c.MinLength < model.MinSequenceLength || c.MaxLength > model.MaxSequenceLength || c.MinLength > c.MaxLength {
		return fmt.Errorf("invalid sequence lengths: min %d, max %d (want %d <= min <= max <= %d)",
			c.MinLength, c.MaxLength, model.MinSequenceLength, model.MaxSequenceLength)
	}
	if c.DisplayMs <= 0 {
		return fmt.Errorf("invalid display duration %dms", c.DisplayMs)
	}
	return nil
}

// Service is the in-process sequence judge: it draws random sequences that
// grow with the round number and grades submitted answers
type Service struct {
	random random.Random
	cfg    Config
	logger *slog.Logger
}

// Ensure Service implements Judge
var _ judge.Judge = (*Service)(nil)

// New creates a new sequence Service
func New(random random.Random, cfg Config, logger *slog.Logger) *Service {
	return &Service{
		random: random,
		cfg:    cfg,
		logger: logger.With(slog.String("component", "sequence")),
	}
}

// Length returns the sequence length for a difficulty level: one symbol
// longer per level beyond the first, clamped to the configured bounds
func (s *Service) Length(level int) int {
	n := s.cfg.MinLength + max(0, level-1)
	return min(max(n, s.cfg.MinLength), s.cfg.MaxLength)
}

// CreateRound draws a sequence for the given round
func (s *Service) CreateRound(ctx context.Context, round int) (*judge.Round, error) {
	return s.Generate(round, round), nil
}

// Generate draws a sequence for a round at an explicit difficulty level
func (s *Service) Generate(round, level int) *judge.Round {
	seq := make([]model.Symbol, s.Length(level))
	for i := range seq {
		seq[i] = model.Alphabet[s.random.Intn(len(model.Alphabet))]
	}

	s.logger.Debug("round generated",
		slog.Int("round", round),
		slog.Int("length", len(seq)),
	)
	return &judge.Round{
		Round:     round,
		Sequence:  seq,
		DisplayMs: s.cfg.DisplayMs,
	}
}

// Validate grades the answers against the sequence
func (s *Service) Validate(ctx context.Context, round int, sequence []model.Symbol, answers []judge.Submission) (*judge.Verdict, error) {
	verdict := judge.Grade(round, sequence, answers)

	winner, _ := verdict.Winner()
	s.logger.Debug("round graded",
		slog.Int("round", round),
		slog.Int("answers", len(answers)),
		slog.String("winner_user_id", string(winner)),
	)
	return verdict, nil
}
