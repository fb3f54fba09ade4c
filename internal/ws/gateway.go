package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Thamizhanban2006/code-clash/internal/events"
	"github.com/Thamizhanban2006/code-clash/internal/game"
	"github.com/Thamizhanban2006/code-clash/internal/store"
)

const (
	maxMessageSize = 64 * 1024
	readTimeout    = 60 * time.Second
	writeTimeout   = 10 * time.Second
	pingInterval   = 54 * time.Second
)

// Gateway upgrades websocket connections and translates inbound protocol
// events into state-machine calls. Handler failures are logged and reported
// to the sender; they never tear down the pump.
type Gateway struct {
	hub      *Hub
	manager  *game.Manager
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func NewGateway(hub *Hub, manager *game.Manager, logger *slog.Logger) *Gateway {
	return &Gateway{
		hub:     hub,
		manager: manager,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// ServeWS is the GET /ws handler.
func (g *Gateway) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	client := newClient(uuid.NewString(), conn, g.logger)
	g.hub.register(client)
	g.logger.Info("connection opened", "socket_id", client.ID)

	// Tell the client its socket id so it can present it as the reconnect
	// hint on its next session.
	g.hub.ToClient(client.ID, "connected", map[string]string{"socketId": client.ID})

	go g.writePump(client)
	g.readPump(client)
}

func (g *Gateway) readPump(client *Client) {
	defer func() {
		g.hub.unregister(client)
		client.conn.Close()
		g.manager.DisconnectSocket(context.Background(), client.ID)
		g.logger.Info("connection closed", "socket_id", client.ID)
	}()

	client.conn.SetReadLimit(maxMessageSize)
	client.conn.SetReadDeadline(time.Now().Add(readTimeout))
	client.conn.SetPongHandler(func(string) error {
		client.conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	for {
		_, raw, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				g.logger.Warn("websocket unexpected close", "socket_id", client.ID, "error", err)
			}
			return
		}
		g.dispatch(client, raw)
	}
}

func (g *Gateway) writePump(client *Client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		client.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-client.send:
			client.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Inbound payloads.

type joinRoomPayload struct {
	RoomID      string `json:"roomId"`
	PlayerName  string `json:"playerName"`
	OldSocketID string `json:"oldSocketId"`
	MaxPlayers  int    `json:"maxPlayers"`
}

type roomPayload struct {
	RoomID string `json:"roomId"`
}

type codeChangePayload struct {
	RoomID string `json:"roomId"`
	Code   string `json:"code"`
}

type submitPayload struct {
	RoomID      string `json:"roomId"`
	TestsPassed int    `json:"testsPassed"`
	TotalTests  int    `json:"totalTests"`
	Score       int    `json:"score"`
}

type chatPayload struct {
	RoomID  string `json:"roomId"`
	Message string `json:"message"`
}

func (g *Gateway) dispatch(client *Client, raw []byte) {
	var env events.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		g.sendError(client, "Malformed message")
		return
	}

	data, _ := json.Marshal(env.Data)

	switch env.Event {
	case events.JoinRoom:
		g.handleJoinRoom(client, data)
	case events.PlayerReady:
		g.handlePlayerReady(client, data)
	case events.StartCountdown:
		g.handleStartCountdown(client, data)
	case events.CodeChange:
		g.handleCodeChange(client, data)
	case events.PlayerSubmit:
		g.handlePlayerSubmit(client, data)
	case events.SendChat:
		g.handleSendChat(client, data)
	case events.LeaveRoom:
		g.handleLeaveRoom(client, data)
	case events.RequestRoomState:
		g.handleRequestRoomState(client, data)
	default:
		g.logger.Warn("unknown event", "event", env.Event, "socket_id", client.ID)
	}
}

func (g *Gateway) handleJoinRoom(client *Client, data []byte) {
	var p joinRoomPayload
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" || p.PlayerName == "" {
		g.sendError(client, "Missing roomId or playerName")
		return
	}

	// Membership first, so the joiner receives its own room-update broadcast.
	// A connection that was already in the room (a failed re-join) must keep
	// its membership, so only roll back what this call added.
	wasMember := g.hub.IsMember(p.RoomID, client.ID)
	g.hub.Join(p.RoomID, client)

	_, err := g.manager.JoinRoom(context.Background(), game.JoinParams{
		RoomID:      p.RoomID,
		PlayerName:  p.PlayerName,
		SocketID:    client.ID,
		OldSocketID: p.OldSocketID,
		MaxPlayers:  p.MaxPlayers,
	})
	if err != nil {
		if !wasMember {
			g.hub.Leave(p.RoomID, client.ID)
		}
		switch {
		case errors.Is(err, game.ErrGameInProgress),
			errors.Is(err, game.ErrNameTaken),
			errors.Is(err, game.ErrRoomFull),
			errors.Is(err, game.ErrNoQuestions):
			g.sendError(client, err.Error())
		default:
			g.logger.Error("join-room failed", "room_id", p.RoomID, "player", p.PlayerName, "error", err)
			g.sendError(client, "Join failed")
		}
	}
}

func (g *Gateway) handlePlayerReady(client *Client, data []byte) {
	var p roomPayload
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		g.sendError(client, "Missing roomId")
		return
	}
	if err := g.manager.SetReady(context.Background(), p.RoomID, client.ID); err != nil {
		g.logger.Error("player-ready failed", "room_id", p.RoomID, "error", err)
	}
}

func (g *Gateway) handleStartCountdown(client *Client, data []byte) {
	var p roomPayload
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		g.sendError(client, "Missing roomId")
		return
	}
	err := g.manager.StartCountdown(context.Background(), p.RoomID, client.ID)
	switch {
	case err == nil:
	case errors.Is(err, game.ErrNotHost),
		errors.Is(err, game.ErrPlayersNotReady),
		errors.Is(err, game.ErrInsufficientPlayers):
		g.sendError(client, err.Error())
	default:
		g.logger.Error("start-countdown failed", "room_id", p.RoomID, "error", err)
	}
}

func (g *Gateway) handleCodeChange(client *Client, data []byte) {
	var p codeChangePayload
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		return
	}

	// Fast path: fan the keystrokes out before touching the store.
	g.hub.ToRoomExcept(p.RoomID, client.ID, events.CodeUpdate, events.CodeUpdatePayload{
		PlayerID: client.ID,
		Code:     p.Code,
	})

	if err := g.manager.UpdateCode(context.Background(), p.RoomID, client.ID, p.Code); err != nil {
		g.logger.Error("code snapshot save failed", "room_id", p.RoomID, "error", err)
	}
}

func (g *Gateway) handlePlayerSubmit(client *Client, data []byte) {
	var p submitPayload
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		g.sendError(client, "Missing roomId")
		return
	}
	if err := g.manager.SubmitCode(context.Background(), p.RoomID, client.ID, p.TestsPassed, p.TotalTests, p.Score); err != nil {
		g.logger.Error("player-submit failed", "room_id", p.RoomID, "error", err)
	}
}

func (g *Gateway) handleSendChat(client *Client, data []byte) {
	var p chatPayload
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		return
	}
	if err := g.manager.AppendChat(context.Background(), p.RoomID, client.ID, p.Message); err != nil {
		g.logger.Error("send-chat failed", "room_id", p.RoomID, "error", err)
	}
}

func (g *Gateway) handleLeaveRoom(client *Client, data []byte) {
	var p roomPayload
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		return
	}
	g.hub.Leave(p.RoomID, client.ID)
	if err := g.manager.HandleLeave(context.Background(), p.RoomID, client.ID); err != nil {
		g.logger.Error("leave-room failed", "room_id", p.RoomID, "error", err)
	}
}

func (g *Gateway) handleRequestRoomState(client *Client, data []byte) {
	var p roomPayload
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		return
	}
	room, err := g.manager.RoomState(context.Background(), p.RoomID)
	if err != nil {
		if !errors.Is(err, store.ErrRoomNotFound) {
			g.logger.Error("request-room-state failed", "room_id", p.RoomID, "error", err)
		}
		return
	}
	g.hub.ToClient(client.ID, events.RoomUpdate, room)
}

func (g *Gateway) sendError(client *Client, message string) {
	g.hub.ToClient(client.ID, events.ErrorMessage, message)
}
