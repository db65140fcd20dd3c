package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/mesafiscal/pos-backend/events"
	"github.com/mesafiscal/pos-backend/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// EventsSocket -> upgrades the connection and keeps the client in the
// broadcast hub until it hangs up. Clients only listen; inbound frames
// are drained and dropped.
func EventsSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Printf("Websocket upgrade failed: %v", err)
		return
	}

	role, _ := c.Get("role")
	roleStr, _ := role.(string)
	events.RegisterClient(conn, roleStr)
	utils.InfoLogger.Printf("Websocket client connected (role=%s)", roleStr)

	go func() {
		defer events.UnregisterClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
