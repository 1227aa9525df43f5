package main

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"khidmaBack/internal/events"
)

const (
	readLimit     = 1 << 20
	readDeadline  = 120 * time.Second
	writeDeadline = 5 * time.Second
	pingInterval  = 15 * time.Second
)

type directEvent struct {
	userID int
	ev     events.Event
}

type unreg struct {
	userID int
	conn   *websocket.Conn
}

// WebSocketManager keeps one live socket per user and pushes change-feed
// events to it. Clients treat any event as a signal to re-fetch their
// booking and notification lists.
type WebSocketManager struct {
	clients    map[int]*websocket.Conn
	direct     chan directEvent
	register   chan Client
	unregister chan unreg
}

func NewWebSocketManager() *WebSocketManager {
	return &WebSocketManager{
		clients:    make(map[int]*websocket.Conn),
		direct:     make(chan directEvent),
		register:   make(chan Client),
		unregister: make(chan unreg),
	}
}

type Client struct {
	ID     int
	Socket *websocket.Conn
}

// Send queues an event for the user's socket. Offline users are skipped,
// they will catch up from the notifications list on next load.
func (ws *WebSocketManager) Send(userID int, ev events.Event) {
	ws.direct <- directEvent{userID: userID, ev: ev}
}

// Все операции с clients — только здесь.
func (ws *WebSocketManager) Run() {
	for {
		select {
		case client := <-ws.register:
			// новый сокет вытесняет старый у того же пользователя
			if old, ok := ws.clients[client.ID]; ok && old != nil && old != client.Socket {
				_ = old.Close()
			}
			ws.clients[client.ID] = client.Socket
			log.Printf("WS register user=%d", client.ID)

		case u := <-ws.unregister:
			if cur, ok := ws.clients[u.userID]; ok && cur == u.conn {
				_ = cur.Close()
				delete(ws.clients, u.userID)
				log.Printf("WS unregister user=%d", u.userID)
			}

		case dm := <-ws.direct:
			if conn, ok := ws.clients[dm.userID]; ok {
				_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
				if err := conn.WriteJSON(dm.ev); err != nil {
					log.Printf("direct send error to=%d: %v", dm.userID, err)
					_ = conn.Close()
					delete(ws.clients, dm.userID)
				}
			}
		}
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin:       func(r *http.Request) bool { return true },
	ReadBufferSize:    1024,
	WriteBufferSize:   1024,
	EnableCompression: true,
}

// WebSocketHandler upgrades the connection after validating the access
// token from the Authorization header or the token query parameter
// (browser WebSocket clients cannot set headers).
func (app *application) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	accessToken := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if accessToken == "" {
		accessToken = r.URL.Query().Get("token")
	}
	claims, err := app.tokens.Parse(accessToken)
	if err != nil {
		http.Error(w, "Invalid access token", http.StatusUnauthorized)
		return
	}
	userID := int(claims.UserID)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		app.errorLog.Printf("WebSocket upgrade error: %v", err)
		return
	}

	conn.SetReadLimit(readLimit)
	_ = conn.SetReadDeadline(time.Now().Add(readDeadline))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readDeadline))
	})

	app.wsManager.register <- Client{ID: userID, Socket: conn}

	// пинги, пока клиент жив
	go func() {
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		for range ticker.C {
			_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}()

	// клиент ничего не шлёт, читаем только ради pong и closе
	go func() {
		defer func() {
			app.wsManager.unregister <- unreg{userID: userID, conn: conn}
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
