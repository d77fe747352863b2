package mocks

import (
	"context"
	"sync"

	"github.com/mcoot/symbolduel/internal/dependencies/judge"
	"github.com/mcoot/symbolduel/internal/model"
)

// DefaultSequence is returned by MockJudge when no sequence is queued
var DefaultSequence = []model.Symbol{"★", "●", "♥"}

// DefaultDisplayMs is the display duration MockJudge reports
const DefaultDisplayMs = 1000

// MockJudge is a mock implementation of Judge for testing.
// Rounds use queued sequences (or DefaultSequence) and answers are graded
// with judge.Grade unless an error is queued.
type MockJudge struct {
	mu sync.Mutex

	sequences    [][]model.Symbol
	createErrs   []error
	validateErrs []error

	// CreateGate, when set, blocks CreateRound until a value is received
	CreateGate chan struct{}

	CreateCalls   []int
	ValidateCalls []int
}

// Ensure MockJudge implements Judge
var _ judge.Judge = (*MockJudge)(nil)

// NewMockJudge creates a new MockJudge
func NewMockJudge() *MockJudge {
	return &MockJudge{}
}

// QueueSequence adds sequences to be returned by CreateRound in order
func (j *MockJudge) QueueSequence(seqs ...[]model.Symbol) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.sequences = append(j.sequences, seqs...)
}

// FailNextCreate makes the next CreateRound call return err
func (j *MockJudge) FailNextCreate(err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.createErrs = append(j.createErrs, err)
}

// FailNextValidate makes the next Validate call return err
func (j *MockJudge) FailNextValidate(err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.validateErrs = append(j.validateErrs, err)
}

// CreateRound returns the next queued sequence for the round
func (j *MockJudge) CreateRound(ctx context.Context, round int) (*judge.Round, error) {
	j.mu.Lock()
	gate := j.CreateGate
	j.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	j.CreateCalls = append(j.CreateCalls, round)

	if len(j.createErrs) > 0 {
		err := j.createErrs[0]
		j.createErrs = j.createErrs[1:]
		return nil, err
	}

	seq := DefaultSequence
	if len(j.sequences) > 0 {
		seq = j.sequences[0]
		j.sequences = j.sequences[1:]
	}
	return &judge.Round{
		Round:     round,
		Sequence:  append([]model.Symbol(nil), seq...),
		DisplayMs: DefaultDisplayMs,
	}, nil
}

// Validate grades the answers against the sequence
func (j *MockJudge) Validate(ctx context.Context, round int, sequence []model.Symbol, answers []judge.Submission) (*judge.Verdict, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.ValidateCalls = append(j.ValidateCalls, round)

	if len(j.validateErrs) > 0 {
		err := j.validateErrs[0]
		j.validateErrs = j.validateErrs[1:]
		return nil, err
	}
	return judge.Grade(round, sequence, answers), nil
}

// CreateCallCount returns how many rounds have been requested
func (j *MockJudge) CreateCallCount() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.CreateCalls)
}
