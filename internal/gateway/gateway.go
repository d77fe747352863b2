package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/mcoot/symbolduel/internal/model"
	"github.com/mcoot/symbolduel/internal/protocol"
	"github.com/mcoot/symbolduel/internal/realtime"
	"github.com/mcoot/symbolduel/internal/services/orchestrator"
	"github.com/mcoot/symbolduel/internal/services/registry"
)

// maxMessageBytes caps the size of a single client message
const maxMessageBytes = 16 * 1024

// Gateway terminates client websockets and routes their messages
type Gateway struct {
	registry     *registry.Registry
	orchestrator orchestrator.ControllerInterface
	connections  *realtime.Manager
	logger       *slog.Logger

	// closing ends every open session once cancelled. Hijacked websocket
	// connections are not tracked by http.Server.Shutdown.
	closing       context.Context
	closeSessions context.CancelFunc
}

// New creates a new Gateway
func New(
	registry *registry.Registry,
	orchestrator orchestrator.ControllerInterface,
	connections *realtime.Manager,
	logger *slog.Logger,
) *Gateway {
	closing, closeFn := context.WithCancel(context.Background())
	return &Gateway{
		registry:      registry,
		orchestrator:  orchestrator,
		connections:   connections,
		logger:        logger.With(slog.String("component", "gateway")),
		closing:       closing,
		closeSessions: closeFn,
	}
}

// ServeHTTP upgrades the request to a websocket and serves it until the
// client disconnects
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if g.closing.Err() != nil {
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		g.logger.Warn("websocket accept failed", slog.String("error", err.Error()))
		return
	}
	ws.SetReadLimit(maxMessageBytes)

	conn := realtime.NewConn(uuid.NewString())
	logger := g.logger.With(slog.String("conn_id", conn.ID()))
	logger.Info("client connected", slog.String("remote_addr", r.RemoteAddr))

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	stopOnClose := context.AfterFunc(g.closing, cancel)
	defer stopOnClose()

	pumpDone := make(chan struct{})
	go func() {
		defer close(pumpDone)
		if err := conn.WritePump(ctx, ws); err != nil && !errors.Is(err, context.Canceled) {
			logger.Debug("write pump stopped", slog.String("error", err.Error()))
		}
		cancel()
	}()

	defer func() {
		g.connections.Detach(conn)
		conn.Close()
		cancel()
		<-pumpDone
		_ = ws.Close(websocket.StatusNormalClosure, "")
		logger.Info("client disconnected")
	}()

	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && !errors.Is(err, context.Canceled) {
				logger.Debug("read failed", slog.String("error", err.Error()))
			}
			return
		}
		g.Handle(ctx, conn, data)
	}
}

// Close disconnects every open session and turns away new ones
func (g *Gateway) Close() {
	g.closeSessions()
}

// Handle processes one client message
func (g *Gateway) Handle(ctx context.Context, conn *realtime.Conn, data []byte) {
	msg, err := protocol.Parse(data)
	if errors.Is(err, protocol.ErrUnknownType) {
		g.logger.Debug("ignoring unknown message", slog.String("conn_id", conn.ID()), slog.String("error", err.Error()))
		return
	}
	if err != nil {
		g.reply(conn, err)
		return
	}

	switch m := msg.(type) {
	case protocol.JoinRoom:
		g.handleJoin(ctx, conn, m)
	case protocol.PlayerReady:
		g.handleReady(ctx, conn, m)
	case protocol.SubmitSequence:
		g.handleSubmit(ctx, conn, m)
	}
}

func (g *Gateway) handleJoin(ctx context.Context, conn *realtime.Conn, msg protocol.JoinRoom) {
	room, err := g.registry.Get(ctx, msg.RoomID)
	if err != nil {
		g.reply(conn, err)
		return
	}

	// A member re-joining just re-attaches its connection
	if !room.HasPlayer(msg.UserID) {
		room, err = g.orchestrator.Join(ctx, msg.RoomID, msg.UserID)
		if err != nil {
			g.reply(conn, err)
			return
		}
	}

	g.connections.Attach(conn, room.ID, msg.UserID)
	g.connections.Send(conn, protocol.NewRoomState(room))
}

func (g *Gateway) handleReady(ctx context.Context, conn *realtime.Conn, msg protocol.PlayerReady) {
	roomID, err := g.resolveRoom(ctx, conn, msg.UserID)
	if err != nil {
		g.reply(conn, err)
		return
	}
	if _, err := g.orchestrator.MarkReady(ctx, roomID, msg.UserID); err != nil {
		g.reply(conn, err)
	}
}

func (g *Gateway) handleSubmit(ctx context.Context, conn *realtime.Conn, msg protocol.SubmitSequence) {
	roomID, err := g.resolveRoom(ctx, conn, msg.UserID)
	if err != nil {
		g.reply(conn, err)
		return
	}
	if err := g.orchestrator.Submit(ctx, roomID, msg); err != nil {
		g.reply(conn, err)
	}
}

// resolveRoom finds the room a message refers to: the connection's own
// room when it speaks for the same user, otherwise the user's room
func (g *Gateway) resolveRoom(ctx context.Context, conn *realtime.Conn, userID model.UserID) (model.RoomID, error) {
	if b, ok := g.connections.Binding(conn); ok && b.UserID == userID {
		return b.RoomID, nil
	}
	room, err := g.registry.FindByUser(ctx, userID)
	if err != nil {
		return "", err
	}
	return room.ID, nil
}

// msgInternalError replaces failures the client cannot act on
const msgInternalError = "internal error"

// clientErrors are safe to report verbatim
var clientErrors = []error{
	protocol.ErrMalformed,
	model.ErrRoomNotFound,
	model.ErrRoomFull,
	model.ErrAlreadyJoined,
	model.ErrNotInRoom,
	model.ErrMissingIdentifier,
	model.ErrJudgeUnavailable,
}

// reply sends an error to the originating connection only
func (g *Gateway) reply(conn *realtime.Conn, err error) {
	message := msgInternalError
	for _, target := range clientErrors {
		if errors.Is(err, target) {
			message = err.Error()
			break
		}
	}

	if message == msgInternalError {
		g.logger.Error("client message failed",
			slog.String("conn_id", conn.ID()),
			slog.String("error", err.Error()),
		)
	} else {
		g.logger.Debug("rejecting client message",
			slog.String("conn_id", conn.ID()),
			slog.String("error", err.Error()),
		)
	}
	g.connections.Send(conn, protocol.Error{Message: message})
}
