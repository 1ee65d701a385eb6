package api

import (
	"log"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/happytime/posprint/internal/printer"
)

// WSClient is a connected WebSocket subscriber. Clients only receive
// events; commands go over the HTTP endpoints.
type WSClient struct {
	conn *websocket.Conn
	send chan printer.Event
}

// Client tracking for broadcasts.
var (
	clients   = make(map[*WSClient]bool)
	clientsMu sync.RWMutex
)

// handleWebSocket upgrades the connection and streams service events.
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &WSClient{
		conn: conn,
		send: make(chan printer.Event, 64),
	}

	log.Println("WebSocket client connected")

	go client.readPump()
	go client.writePump()
}

func (c *WSClient) writePump() {
	defer c.conn.Close()

	for ev := range c.send {
		if err := c.conn.WriteJSON(ev); err != nil {
			log.Printf("WebSocket write error: %v", err)
			return
		}
	}
}

// readPump drains inbound frames so pings and closes are processed.
func (c *WSClient) readPump() {
	defer func() {
		removeClient(c)
		c.conn.Close()
		log.Println("WebSocket client disconnected")
	}()

	addClient(c)

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}
	}
}

func addClient(client *WSClient) {
	clientsMu.Lock()
	clients[client] = true
	clientsMu.Unlock()
}

func removeClient(client *WSClient) {
	clientsMu.Lock()
	delete(clients, client)
	clientsMu.Unlock()
}

// broadcastEvent fans a service event out to every connected client.
func (s *Server) broadcastEvent(ev printer.Event) {
	clientsMu.RLock()
	defer clientsMu.RUnlock()

	for client := range clients {
		select {
		case client.send <- ev:
		default:
			// Client send buffer full, skip
		}
	}
}
