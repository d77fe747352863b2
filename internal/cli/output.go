package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to stdout
func NewOutput(format string) *Output {
	return &Output{format: format, w: os.Stdout}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case User:
		o.printUser(v)
	case Room:
		o.printRoom(v)
	case MatchHistory:
		o.printMatchHistory(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// User response type (matches API)
type User struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// RoomPlayer response type
type RoomPlayer struct {
	UserID string `json:"user_id"`
	Score  int    `json:"score"`
	Ready  bool   `json:"ready"`
}

// Room response type
type Room struct {
	RoomID       string       `json:"room_id"`
	HostUserID   string       `json:"host_user_id"`
	Status       string       `json:"status"`
	CurrentRound int          `json:"current_round"`
	Phase        *string      `json:"phase"`
	Players      []RoomPlayer `json:"players"`
}

// Match response type
type Match struct {
	MatchID      string         `json:"match_id"`
	WinnerUserID string         `json:"winner_user_id"`
	Scores       map[string]int `json:"scores"`
	Rounds       int            `json:"rounds"`
	FinishedAt   string         `json:"finished_at"`
}

// MatchHistory response type
type MatchHistory struct {
	RoomID  string  `json:"room_id"`
	Matches []Match `json:"matches"`
}

// HealthResult response type
type HealthResult struct {
	Status   string `json:"status"`
	Realtime string `json:"realtime,omitempty"`
}

func (o *Output) printUser(u User) {
	fmt.Fprintf(o.w, "User: %s (%s)\n", u.Username, u.UserID)
}

func (o *Output) printRoom(r Room) {
	fmt.Fprintf(o.w, "Room: %s\n", r.RoomID)
	fmt.Fprintf(o.w, "Status: %s\n", r.Status)
	if r.CurrentRound > 0 {
		fmt.Fprintf(o.w, "Round: %d\n", r.CurrentRound)
	}
	if r.Phase != nil {
		fmt.Fprintf(o.w, "Phase: %s\n", *r.Phase)
	}
	fmt.Fprintf(o.w, "Players (%d):\n", len(r.Players))
	for _, p := range r.Players {
		var tags []string
		if p.UserID == r.HostUserID {
			tags = append(tags, "host")
		}
		if p.Ready {
			tags = append(tags, "ready")
		}
		tagStr := ""
		if len(tags) > 0 {
			tagStr = " [" + strings.Join(tags, ", ") + "]"
		}
		fmt.Fprintf(o.w, "  - %s: %d%s\n", p.UserID, p.Score, tagStr)
	}
}

func (o *Output) printMatchHistory(h MatchHistory) {
	if len(h.Matches) == 0 {
		fmt.Fprintf(o.w, "No finished matches in %s\n", h.RoomID)
		return
	}
	fmt.Fprintf(o.w, "Matches in %s:\n", h.RoomID)
	for _, m := range h.Matches {
		fmt.Fprintf(o.w, "  %s  winner %s after %d rounds (%s)\n", m.FinishedAt, m.WinnerUserID, m.Rounds, formatScores(m.Scores))
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Fprintf(o.w, "Status: %s\n", h.Status)
	if h.Realtime != "" {
		fmt.Fprintf(o.w, "Realtime: %s\n", h.Realtime)
	}
}

// formatScores renders scores in a stable order
func formatScores[K ~string](scores map[K]int) string {
	keys := make([]K, 0, len(scores))
	for k := range scores {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s %d", k, scores[k])
	}
	return strings.Join(parts, ", ")
}
