package ws

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// VersionMessage tells a client that the user's server record advanced
// to a new version, usually because another device of the same account
// pushed a change; the client reacts by refetching.
type VersionMessage struct {
	Type    string `json:"type"`
	Version int    `json:"version"`
}

type versionNotification struct {
	userID  string
	payload []byte
}

// DesktopHub fans desktop-version events out to every connection a user
// holds. Unlike a one-connection-per-user hub, the same account may be
// signed in from several devices at once.
type DesktopHub struct {
	register   chan *desktopClient
	unregister chan *desktopClient
	notify     chan versionNotification
	clients    map[string]map[*desktopClient]struct{}
}

func NewDesktopHub() *DesktopHub {
	return &DesktopHub{
		register:   make(chan *desktopClient),
		unregister: make(chan *desktopClient),
		notify:     make(chan versionNotification, 256),
		clients:    make(map[string]map[*desktopClient]struct{}),
	}
}

func (h *DesktopHub) Run() {
	for {
		select {
		case client := <-h.register:
			conns, ok := h.clients[client.userID]
			if !ok {
				conns = make(map[*desktopClient]struct{})
				h.clients[client.userID] = conns
			}
			conns[client] = struct{}{}
		case client := <-h.unregister:
			if conns, ok := h.clients[client.userID]; ok {
				if _, ok := conns[client]; ok {
					delete(conns, client)
					close(client.send)
					if len(conns) == 0 {
						delete(h.clients, client.userID)
					}
				}
			}
		case msg := <-h.notify:
			for client := range h.clients[msg.userID] {
				select {
				case client.send <- msg.payload:
				default:
					client.conn.Close()
					delete(h.clients[msg.userID], client)
				}
			}
		}
	}
}

// NotifyVersion pushes the new record version to every connection of
// the user. Safe to call with a nil hub.
func (h *DesktopHub) NotifyVersion(userID string, version int) {
	if h == nil {
		return
	}
	data, err := json.Marshal(VersionMessage{Type: "desktop.version", Version: version})
	if err != nil {
		return
	}
	h.notify <- versionNotification{userID: userID, payload: data}
}

type desktopClient struct {
	hub    *DesktopHub
	conn   *websocket.Conn
	send   chan []byte
	userID string
}

func newDesktopClient(hub *DesktopHub, conn *websocket.Conn, userID string) *desktopClient {
	return &desktopClient{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 64),
		userID: userID,
	}
}

func (c *desktopClient) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *desktopClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			if _, err := w.Write(msg); err != nil {
				return
			}
			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
