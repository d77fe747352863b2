package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"
	"unicode/utf8"

	"github.com/coder/websocket"
	"github.com/spf13/cobra"

	"github.com/mcoot/symbolduel/internal/model"
	"github.com/mcoot/symbolduel/internal/protocol"
)

func newPlayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play <room>",
		Short: "Play in a room interactively",
		Long: `Connect to the room over the realtime socket and play.

Commands while connected:
  ready        signal you are ready for the match
  <sequence>   your answer once asked to enter the sequence, as symbols
               or as numbers 1-8 (e.g. "3 1 4" or "314")
  quit         disconnect

Press Ctrl+C to disconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := cfg.RequireUser()
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			endpoint, err := wsURL(cfg.ServerURL)
			if err != nil {
				return err
			}

			ws, _, err := websocket.Dial(ctx, endpoint, nil)
			if err != nil {
				return fmt.Errorf("connection failed: %w", err)
			}
			defer func() { _ = ws.Close(websocket.StatusNormalClosure, "") }()

			session := newPlaySession(ws, model.RoomID(args[0]), model.UserID(userID), os.Stdin, os.Stdout, cfg.Output == "json")
			return session.run(ctx)
		},
	}
}

// wsURL derives the realtime endpoint from the server URL
func wsURL(server string) (string, error) {
	u, err := url.Parse(server)
	if err != nil {
		return "", fmt.Errorf("invalid server url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported server url scheme %q", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	return u.String(), nil
}

// parseSequence reads an answer typed by the player. Tokens may be symbols
// or 1-based positions in the alphabet; a single token is read rune by rune.
func parseSequence(line string) ([]model.Symbol, error) {
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	})
	if len(fields) == 1 && utf8.RuneCountInString(fields[0]) > 1 {
		token := fields[0]
		fields = fields[:0]
		for _, r := range token {
			fields = append(fields, string(r))
		}
	}
	if len(fields) == 0 {
		return nil, errors.New("empty sequence")
	}

	seq := make([]model.Symbol, len(fields))
	for i, f := range fields {
		if n, err := strconv.Atoi(f); err == nil {
			if n < 1 || n > len(model.Alphabet) {
				return nil, fmt.Errorf("symbol number %d out of range 1-%d", n, len(model.Alphabet))
			}
			seq[i] = model.Alphabet[n-1]
			continue
		}
		sym := model.Symbol(f)
		if !sym.IsValid() {
			return nil, fmt.Errorf("unknown symbol %q", f)
		}
		seq[i] = sym
	}
	return seq, nil
}

// playSession runs one interactive connection to a room
type playSession struct {
	ws      *websocket.Conn
	roomID  model.RoomID
	userID  model.UserID
	in      io.Reader
	out     io.Writer
	jsonOut bool

	round      int
	collecting bool
	enteredAt  time.Time
}

func newPlaySession(ws *websocket.Conn, roomID model.RoomID, userID model.UserID, in io.Reader, out io.Writer, jsonOut bool) *playSession {
	return &playSession{
		ws:      ws,
		roomID:  roomID,
		userID:  userID,
		in:      in,
		out:     out,
		jsonOut: jsonOut,
	}
}

var errQuit = errors.New("quit")

// run joins the room and relays input and server messages until the input
// ends, the player quits or the connection drops
func (s *playSession) run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := s.send(ctx, protocol.JoinRoom{RoomID: s.roomID, UserID: s.userID}); err != nil {
		return err
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(s.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	msgs := make(chan protocol.Outbound)
	readErr := make(chan error, 1)
	go func() {
		for {
			_, data, err := s.ws.Read(ctx)
			if err != nil {
				readErr <- err
				return
			}
			msg, err := protocol.Decode(data)
			if err != nil {
				continue
			}
			select {
			case msgs <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			if ctx.Err() != nil || websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return nil
			}
			return fmt.Errorf("connection lost: %w", err)
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if err := s.handleLine(ctx, line); err != nil {
				if errors.Is(err, errQuit) {
					return nil
				}
				return err
			}
		case msg := <-msgs:
			s.handleMessage(msg)
		}
	}
}

func (s *playSession) send(ctx context.Context, msg protocol.Inbound) error {
	data, err := protocol.EncodeInbound(msg)
	if err != nil {
		return err
	}
	return s.ws.Write(ctx, websocket.MessageText, data)
}

func (s *playSession) handleLine(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	switch strings.ToLower(line) {
	case "":
		return nil
	case "quit", "exit":
		return errQuit
	case "ready":
		return s.send(ctx, protocol.PlayerReady{UserID: s.userID})
	}

	if !s.collecting {
		s.printf("Not accepting answers right now; type 'ready' to start a match\n")
		return nil
	}

	seq, err := parseSequence(line)
	if err != nil {
		s.printf("Could not read that sequence: %s\n", err)
		return nil
	}

	s.collecting = false
	return s.send(ctx, protocol.SubmitSequence{
		Round:    s.round,
		UserID:   s.userID,
		Sequence: seq,
		TimeMs:   int(time.Since(s.enteredAt).Milliseconds()),
	})
}

func (s *playSession) handleMessage(msg protocol.Outbound) {
	if s.jsonOut {
		if data, err := protocol.Encode(msg); err == nil {
			s.printf("%s\n", data)
		}
	}

	switch m := msg.(type) {
	case protocol.RoomState:
		scores := make(map[model.UserID]int, len(m.Players))
		for _, p := range m.Players {
			scores[p.UserID] = p.Score
		}
		s.textf("Room %s (%s): %s\n", m.RoomID, m.Status, formatScores(scores))
	case protocol.PlayerReadyNotice:
		s.textf("%s is ready\n", m.UserID)
	case protocol.RoundStart:
		s.round = m.Round
		s.collecting = false
		s.textf("Round %d, memorise: %s  (%.1fs)\n", m.Round, joinSymbols(m.Sequence), float64(m.DisplayMs)/1000)
	case protocol.EnterSequence:
		if m.Round != s.round {
			return
		}
		s.collecting = true
		s.enteredAt = time.Now()
		s.textf("\n\n\n\n\n\nEnter the sequence for round %d (%s):\n", m.Round, alphabetLegend())
	case protocol.RoundResult:
		s.collecting = false
		winner := "nobody"
		if m.RoundWinnerUserID != nil {
			winner = string(*m.RoundWinnerUserID)
		}
		s.textf("Round %d: answer was %s, won by %s. Scores: %s\n", m.Round, joinSymbols(m.CorrectSequence), winner, formatScores(m.Scores))
	case protocol.MatchEnd:
		s.textf("Match over, %s wins! Final scores: %s. Type 'ready' for a rematch\n", m.WinnerUserID, formatScores(m.Scores))
	case protocol.Error:
		s.textf("Error: %s\n", m.Message)
	}
}

func (s *playSession) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.out, format, args...)
}

// textf prints only in text mode
func (s *playSession) textf(format string, args ...any) {
	if !s.jsonOut {
		s.printf(format, args...)
	}
}

func joinSymbols(seq []model.Symbol) string {
	parts := make([]string, len(seq))
	for i, sym := range seq {
		parts[i] = string(sym)
	}
	return strings.Join(parts, " ")
}

func alphabetLegend() string {
	parts := make([]string, len(model.Alphabet))
	for i, sym := range model.Alphabet {
		parts[i] = fmt.Sprintf("%d=%s", i+1, sym)
	}
	return strings.Join(parts, " ")
}
