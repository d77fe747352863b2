package judge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/symbolduel/internal/model"
)

func TestHTTPClient_CreateRound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/games/create-round", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var req createRoundRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 2, req.Round)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"round":2,"sequence":["★","●","♥","■"],"displayMs":6000}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL+"/", time.Second)
	round, err := client.CreateRound(context.Background(), 2)

	require.NoError(t, err)
	assert.Equal(t, 2, round.Round)
	assert.Equal(t, []model.Symbol{"★", "●", "♥", "■"}, round.Sequence)
	assert.Equal(t, 6000, round.DisplayMs)
}

func TestHTTPClient_CreateRound_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, time.Second)
	_, err := client.CreateRound(context.Background(), 1)

	assert.ErrorIs(t, err, model.ErrJudgeUnavailable)
}

func TestHTTPClient_CreateRound_EmptySequence(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"round":1,"sequence":[],"displayMs":6000}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, time.Second)
	_, err := client.CreateRound(context.Background(), 1)

	assert.ErrorIs(t, err, model.ErrJudgeUnavailable)
}

func TestHTTPClient_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := NewHTTPClient(url, time.Second)
	_, err := client.Validate(context.Background(), 1, nil, nil)

	assert.ErrorIs(t, err, model.ErrJudgeUnavailable)
}

func TestHTTPClient_Validate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/games/validate", r.URL.Path)

		var req validateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Answers, 2)
		assert.Equal(t, model.UserID("A"), req.Answers[0].UserID)
		assert.Equal(t, 1200, req.Answers[0].TimeMs)

		_ = json.NewEncoder(w).Encode(Grade(req.Round, req.Sequence, req.Answers))
	}))
	defer server.Close()

	seq := []model.Symbol{"★", "●", "♥"}
	client := NewHTTPClient(server.URL, time.Second)
	verdict, err := client.Validate(context.Background(), 1, seq, []Submission{
		{UserID: "A", Sequence: seq, TimeMs: 1200},
		{UserID: "B", Sequence: []model.Symbol{"★", "♥", "●"}, TimeMs: 900},
	})

	require.NoError(t, err)
	winner, ok := verdict.Winner()
	require.True(t, ok)
	assert.Equal(t, model.UserID("A"), winner)
	assert.Equal(t, seq, verdict.CorrectSequence)
}

func TestHTTPClient_Validate_NullWinner(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"round":1,"correctSequence":["★"],"results":[],"roundWinnerUserId":null}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, time.Second)
	verdict, err := client.Validate(context.Background(), 1, []model.Symbol{"★"}, nil)

	require.NoError(t, err)
	_, ok := verdict.Winner()
	assert.False(t, ok)
}
