/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// typerace websocket adapter
//
// Features:
// - One websocket per player at $prefix/ws; each connection gets a fresh uuid handle
// - JSON text frames by default, msgpack binary frames with ?codec=msgpack
// - Inbound messages map onto race actions; failures go only to the sender
// - Room events fan out to every member without blocking the room
// - Closing the socket leaves the room, exactly like an explicit leaveRoom
// - $prefix/rooms/:roomid serves a JSON snapshot of a live room
// - $prefix/rooms/:roomid/qr serves a PNG QR code linking to the room, backed by go-qrcode

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Seednode/typerace/race"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/skip2/go-qrcode"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 4096

	codeBadRequest = "BadRequest"
)

// Messages coming from clients
type ClientMessage struct {
	Type        string  `json:"type"`                  // "createRoom", "joinRoom", "playerReady", "leaveRoom", "updateProgress"
	DisplayName string  `json:"displayName,omitempty"` // createRoom / joinRoom
	RoomID      string  `json:"roomId,omitempty"`      // joinRoom
	Ready       bool    `json:"ready,omitempty"`       // playerReady
	Progress    float64 `json:"progress,omitempty"`    // updateProgress
	TypedText   string  `json:"typedText,omitempty"`   // updateProgress
}

func (m ClientMessage) action() (race.Action, error) {
	switch m.Type {
	case "createRoom":
		return race.CreateRoom{DisplayName: m.DisplayName}, nil
	case "joinRoom":
		if strings.TrimSpace(m.RoomID) == "" {
			return nil, errors.New("joinRoom requires a roomId")
		}
		return race.JoinRoom{RoomID: m.RoomID, DisplayName: m.DisplayName}, nil
	case "playerReady":
		return race.SetReady{Ready: m.Ready}, nil
	case "leaveRoom":
		return race.LeaveRoom{}, nil
	case "updateProgress":
		return race.UpdateProgress{Progress: m.Progress, TypedText: m.TypedText}, nil
	}

	return nil, fmt.Errorf("unknown message type %q", m.Type)
}

// ConnectedMessage is sent first on every connection so the client learns
// its own player id.
type ConnectedMessage struct {
	Type     string `json:"type"` // "connected"
	PlayerID string `json:"playerId"`
}

// AckMessage answers a successful createRoom or joinRoom, to the sender only.
type AckMessage struct {
	Type   string         `json:"type"` // "roomCreatedAck" or "roomJoinedAck"
	RoomID string         `json:"roomId"`
	Room   *race.Snapshot `json:"room"`
}

// ErrorMessage is sent to a single client whose action failed.
type ErrorMessage struct {
	Type    string `json:"type"`             // "error"
	Action  string `json:"action,omitempty"` // inbound message type, if known
	Code    string `json:"code"`             // "RoomNotFound", "RoomFull", "RaceInProgress", "BadRequest"
	Message string `json:"message"`          // user-facing text
}

type Client struct {
	conn     *websocket.Conn
	send     chan any
	playerID string
	codec    codec
}

// Lobby carries actions from websocket clients into the race registry and
// implements race.Sink to carry events back out.
type Lobby struct {
	mu      sync.RWMutex
	clients map[string]*Client

	reg        *race.Registry
	log        zerolog.Logger
	metrics    *metrics
	upgrader   websocket.Upgrader
	sendBuffer int
}

func newLobby(cfg *Config, logger zerolog.Logger, texts []string, origins *cors.Cors) *Lobby {
	l := &Lobby{
		clients:    make(map[string]*Client),
		log:        logger.With().Str("component", "lobby").Logger(),
		sendBuffer: cfg.sendBuffer,
	}

	l.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if origins == nil || r.Header.Get("Origin") == "" {
				return true
			}
			return origins.OriginAllowed(r)
		},
	}

	l.reg = race.NewRegistry(race.Options{
		Sink:       l,
		Logger:     &logger,
		Texts:      texts,
		CodeLength: cfg.codeLength,
	})

	l.metrics = newMetrics(l.reg)

	return l
}

// Deliver queues ev for every listed player that is still connected. A full
// queue drops the event for that player only.
func (l *Lobby) Deliver(to []string, ev race.Event) {
	l.metrics.observe(ev)

	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, id := range to {
		c, ok := l.clients[id]
		if !ok {
			continue
		}

		select {
		case c.send <- ev:
			l.metrics.delivered.WithLabelValues(string(ev.Type)).Inc()
		default:
			l.metrics.dropped.WithLabelValues(string(ev.Type)).Inc()
			l.log.Warn().Str("player", id).Str("room", ev.RoomID).Str("event", string(ev.Type)).Msg("send queue full, dropping event")
		}
	}
}

// reply queues msg for c alone.
func (l *Lobby) reply(c *Client, msg any) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.clients[c.playerID] != c {
		return
	}

	select {
	case c.send <- msg:
	default:
		l.log.Warn().Str("player", c.playerID).Msg("send queue full, dropping reply")
	}
}

func (l *Lobby) register(c *Client) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.clients[c.playerID] = c
}

func (l *Lobby) unregister(c *Client) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.clients[c.playerID] == c {
		delete(l.clients, c.playerID)
		close(c.send)
	}
}

// handle applies one inbound message on behalf of c.
func (l *Lobby) handle(c *Client, msg ClientMessage) {
	a, err := msg.action()
	if err != nil {
		l.metrics.rejected.WithLabelValues(codeBadRequest).Inc()
		l.reply(c, ErrorMessage{
			Type:    "error",
			Action:  msg.Type,
			Code:    codeBadRequest,
			Message: err.Error(),
		})
		return
	}

	res, err := l.reg.Apply(c.playerID, a)
	if err != nil {
		code := race.Code(err)
		if code == "" {
			code = codeBadRequest
		}

		l.metrics.rejected.WithLabelValues(code).Inc()
		l.reply(c, ErrorMessage{
			Type:    "error",
			Action:  race.Name(a),
			Code:    code,
			Message: err.Error(),
		})
		return
	}

	switch a.(type) {
	case race.CreateRoom:
		l.reply(c, AckMessage{Type: "roomCreatedAck", RoomID: res.RoomID, Room: res.Room})
	case race.JoinRoom:
		l.reply(c, AckMessage{Type: "roomJoinedAck", RoomID: res.RoomID, Room: res.Room})
	}
}

func (l *Lobby) serveWS() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		cd, ok := codecFor(r.URL.Query().Get("codec"))
		if !ok {
			http.Error(w, "unsupported codec", http.StatusBadRequest)
			return
		}

		conn, err := l.upgrader.Upgrade(w, r, nil)
		if err != nil {
			l.log.Warn().Err(err).Str("remote", realIP(r)).Msg("websocket upgrade failed")
			return
		}

		client := &Client{
			conn:     conn,
			send:     make(chan any, l.sendBuffer),
			playerID: uuid.NewString(),
			codec:    cd,
		}

		l.register(client)

		l.log.Info().Str("player", client.playerID).Str("remote", realIP(r)).Str("codec", cd.name()).Msg("player connected")

		client.send <- ConnectedMessage{
			Type:     "connected",
			PlayerID: client.playerID,
		}

		go client.writePump(l)
		client.readPump(l)
	}
}

func (c *Client) readPump(l *Lobby) {
	defer func() {
		l.reg.Disconnect(c.playerID)
		l.unregister(c)
		_ = c.conn.Close()

		l.log.Info().Str("player", c.playerID).Msg("player disconnected")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				l.log.Debug().Err(err).Str("player", c.playerID).Msg("read failed")
			}
			return
		}

		var msg ClientMessage
		if err := c.codec.decode(data, &msg); err != nil {
			l.metrics.rejected.WithLabelValues(codeBadRequest).Inc()
			l.reply(c, ErrorMessage{
				Type:    "error",
				Code:    codeBadRequest,
				Message: "malformed message",
			})
			continue
		}

		l.handle(c, msg)
	}
}

func (c *Client) writePump(l *Lobby) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := c.codec.encode(msg)
			if err != nil {
				l.log.Error().Err(err).Str("player", c.playerID).Msg("failed to encode message")
				continue
			}

			if err := c.conn.WriteMessage(c.codec.frame(), data); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func serveRoom(cfg *Config, l *Lobby, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		snap, ok := l.reg.Room(ps.ByName("roomid"))
		if !ok {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		securityHeaders(cfg, w)

		if err := json.NewEncoder(w).Encode(snap); err != nil {
			errs <- err

			return
		}
	}
}

// serveQR generates a PNG QR code linking to the landing page for a live room.
func serveQR(cfg *Config, l *Lobby) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		snap, ok := l.reg.Room(ps.ByName("roomid"))
		if !ok {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}

		url := scheme + "://" + r.Host + cfg.prefix + "/?room=" + snap.ID

		const qrSize = 320 // mobile-friendly size
		png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		securityHeaders(cfg, w)
		_, _ = w.Write(png)
	}
}

// registerRaceGame sets up routes so that:
//   - $prefix/ws                  → WebSocket for one player
//   - $prefix/rooms/:roomid       → JSON snapshot of a live room
//   - $prefix/rooms/:roomid/qr    → PNG QR code for joining that room
func registerRaceGame(cfg *Config, logger zerolog.Logger, mux *httprouter.Router, texts []string, origins *cors.Cors, errs chan<- error) *Lobby {
	l := newLobby(cfg, logger, texts, origins)

	mux.GET(cfg.prefix+"/ws", l.serveWS())

	mux.GET(cfg.prefix+"/rooms/:roomid", serveRoom(cfg, l, errs))

	mux.GET(cfg.prefix+"/rooms/:roomid/qr", serveQR(cfg, l))

	return l
}
