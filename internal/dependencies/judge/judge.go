// Package judge defines the contract with the sequence judge, the
// collaborator that generates round sequences and grades answers.
package judge

import (
	"context"
	"sort"

	"github.com/mcoot/symbolduel/internal/model"
)

// Round is the judge's answer to a round creation request
type Round struct {
	Round     int            `json:"round"`
	Sequence  []model.Symbol `json:"sequence"`
	DisplayMs int            `json:"displayMs"`
}

// Submission is one player's answer as sent to the judge
type Submission struct {
	UserID   model.UserID   `json:"userId"`
	Sequence []model.Symbol `json:"sequence"`
	TimeMs   int            `json:"timeMs"`
}

// Result is the judge's verdict on a single submission
type Result struct {
	UserID  model.UserID `json:"userId"`
	Correct bool         `json:"correct"`
	TimeMs  int          `json:"timeMs"`
}

// Verdict is the judge's answer to a validation request
type Verdict struct {
	Round             int            `json:"round"`
	CorrectSequence   []model.Symbol `json:"correctSequence"`
	Results           []Result       `json:"results"`
	RoundWinnerUserID *model.UserID  `json:"roundWinnerUserId"`
}

// Winner returns the round winner, if there was one
func (v *Verdict) Winner() (model.UserID, bool) {
	if v.RoundWinnerUserID == nil || *v.RoundWinnerUserID == "" {
		return "", false
	}
	return *v.RoundWinnerUserID, true
}

// Judge generates sequences and grades answers
type Judge interface {
	CreateRound(ctx context.Context, round int) (*Round, error)
	Validate(ctx context.Context, round int, sequence []model.Symbol, answers []Submission) (*Verdict, error)
}

// SubmissionsFromAnswers converts room answers into judge submissions
func SubmissionsFromAnswers(answers []model.Answer) []Submission {
	submissions := make([]Submission, len(answers))
	for i, a := range answers {
		submissions[i] = Submission{UserID: a.UserID, Sequence: a.Sequence, TimeMs: a.ElapsedMs}
	}
	return submissions
}

// Grade marks each submission correct when it matches the sequence exactly
// and picks the fastest correct submission as the winner. Ties keep
// submission order.
func Grade(round int, sequence []model.Symbol, answers []Submission) *Verdict {
	results := make([]Result, len(answers))
	for i, a := range answers {
		results[i] = Result{
			UserID:  a.UserID,
			Correct: model.SequencesEqual(a.Sequence, sequence),
			TimeMs:  a.TimeMs,
		}
	}

	var correct []Result
	for _, r := range results {
		if r.Correct {
			correct = append(correct, r)
		}
	}
	sort.SliceStable(correct, func(i, j int) bool { return correct[i].TimeMs < correct[j].TimeMs })

	verdict := &Verdict{
		Round:           round,
		CorrectSequence: sequence,
		Results:         results,
	}
	if len(correct) > 0 {
		winner := correct[0].UserID
		verdict.RoundWinnerUserID = &winner
	}
	return verdict
}
