package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mcoot/symbolduel/internal/model"
)

var (
	// ErrMalformed is returned for payloads that cannot be understood
	ErrMalformed = errors.New("malformed message")
	// ErrUnknownType is returned for well-formed messages of an unknown type
	ErrUnknownType = errors.New("unknown message type")
)

type envelope struct {
	Type MessageType `json:"type"`
}

// Parse decodes and validates a client message
func Parse(data []byte) (Inbound, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	switch env.Type {
	case TypeJoinRoom:
		var msg JoinRoom
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if msg.RoomID == "" || msg.UserID == "" {
			return nil, fmt.Errorf("%w: join_room requires roomId and userId", ErrMalformed)
		}
		return msg, nil

	case TypeSubmitSequence:
		var raw struct {
			Round    *int           `json:"round"`
			UserID   model.UserID   `json:"userId"`
			Sequence []model.Symbol `json:"sequence"`
			TimeMs   *int           `json:"timeMs"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if raw.Round == nil || raw.UserID == "" || raw.Sequence == nil || raw.TimeMs == nil {
			return nil, fmt.Errorf("%w: submit_sequence requires round, userId, sequence and timeMs", ErrMalformed)
		}
		if *raw.TimeMs < 0 {
			return nil, fmt.Errorf("%w: timeMs must not be negative", ErrMalformed)
		}
		return SubmitSequence{
			Round:    *raw.Round,
			UserID:   raw.UserID,
			Sequence: raw.Sequence,
			TimeMs:   *raw.TimeMs,
		}, nil

	case TypePlayerReady:
		var msg PlayerReady
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if msg.UserID == "" {
			return nil, fmt.Errorf("%w: player_ready requires userId", ErrMalformed)
		}
		return msg, nil

	case "":
		return nil, fmt.Errorf("%w: missing type", ErrMalformed)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}
}

// Encode serialises a message with its type discriminator
func Encode(msg Outbound) ([]byte, error) {
	return encode(msg.Type(), msg)
}

// EncodeInbound serialises a client message with its type discriminator
func EncodeInbound(msg Inbound) ([]byte, error) {
	return encode(msg.Type(), msg)
}

func encode(typ MessageType, msg any) ([]byte, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	if len(body) < 2 || body[0] != '{' {
		return nil, fmt.Errorf("message %s is not a JSON object", typ)
	}

	var buf bytes.Buffer
	buf.Grow(len(body) + len(typ) + 12)
	buf.WriteString(`{"type":`)
	typeJSON, _ := json.Marshal(typ)
	buf.Write(typeJSON)
	if len(body) > 2 {
		buf.WriteByte(',')
	}
	buf.Write(body[1:])
	return buf.Bytes(), nil
}

// Decode parses a server message; clients use it to read the stream
func Decode(data []byte) (Outbound, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var msg Outbound
	switch env.Type {
	case TypeRoomState:
		msg = &RoomState{}
	case TypePlayerReady:
		msg = &PlayerReadyNotice{}
	case TypeRoundStart:
		msg = &RoundStart{}
	case TypeEnterSequence:
		msg = &EnterSequence{}
	case TypeRoundResult:
		msg = &RoundResult{}
	case TypeMatchEnd:
		msg = &MatchEnd{}
	case TypeError:
		msg = &Error{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}

	if err := json.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return deref(msg), nil
}

func deref(msg Outbound) Outbound {
	switch m := msg.(type) {
	case *RoomState:
		return *m
	case *PlayerReadyNotice:
		return *m
	case *RoundStart:
		return *m
	case *EnterSequence:
		return *m
	case *RoundResult:
		return *m
	case *MatchEnd:
		return *m
	case *Error:
		return *m
	}
	return msg
}
