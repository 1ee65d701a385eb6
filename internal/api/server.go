// Package api exposes the printer service over HTTP and WebSocket.
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/happytime/posprint/internal/printer"
	"github.com/happytime/posprint/internal/receipt"
	"github.com/happytime/posprint/internal/settings"
)

// Server is the API server.
type Server struct {
	router   *gin.Engine
	service  *printer.Service
	upgrader websocket.Upgrader
}

// NewServer creates the API server and subscribes it to service events so
// they reach WebSocket clients.
func NewServer(service *printer.Service) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.Default()
	router.Use(corsMiddleware())

	server := &Server{
		router:  router,
		service: service,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // POS terminals connect from any origin
			},
		},
	}

	server.setupRoutes()
	service.Subscribe(server.broadcastEvent)

	return server
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	s.router.GET("/status", s.handleStatus)

	s.router.GET("/printers", s.handleGetPrinters)
	s.router.POST("/printers/scan", s.handleScan)
	s.router.POST("/printers/connect", s.handleConnect)
	s.router.POST("/printers/disconnect", s.handleDisconnect)

	s.router.GET("/settings", s.handleGetSettings)
	s.router.PUT("/settings", s.handleUpdateSettings)

	s.router.POST("/print", s.handlePrint)
	s.router.POST("/print/test", s.handleTestPrint)

	s.router.GET("/ws", s.handleWebSocket)
}

// handleStatus reports the connection state and the connected device.
func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(200, gin.H{
		"state":     s.service.State().String(),
		"connected": s.service.IsConnected(),
		"device":    s.service.ConnectedDevice(),
	})
}

// handleGetPrinters returns the current device list.
func (s *Server) handleGetPrinters(c *gin.Context) {
	c.JSON(200, gin.H{
		"printers": s.service.Devices(),
	})
}

// handleScan runs a discovery scan and returns the refreshed list.
func (s *Server) handleScan(c *gin.Context) {
	devices, err := s.service.Scan(c.Request.Context())
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, gin.H{"printers": devices})
}

// handleConnect connects to a device by id.
func (s *Server) handleConnect(c *gin.Context) {
	var req struct {
		ID string `json:"id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "id is required"})
		return
	}

	if err := s.service.Connect(c.Request.Context(), req.ID); err != nil {
		c.JSON(statusForError(err), gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(200, gin.H{
		"success": true,
		"device":  s.service.ConnectedDevice(),
	})
}

// handleDisconnect tears down the active connection.
func (s *Server) handleDisconnect(c *gin.Context) {
	if err := s.service.Disconnect(c.Request.Context()); err != nil {
		c.JSON(500, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(200, gin.H{"success": true})
}

// handleGetSettings returns the persisted settings.
func (s *Server) handleGetSettings(c *gin.Context) {
	c.JSON(200, s.service.Settings())
}

// handleUpdateSettings applies a partial settings change. Fields absent
// from the body keep their current value.
func (s *Server) handleUpdateSettings(c *gin.Context) {
	var update settings.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	c.JSON(200, s.service.UpdateSettings(update))
}

// handlePrint prints a receipt for an order. The response always carries a
// success flag; transport detail rides along in the error field.
func (s *Server) handlePrint(c *gin.Context) {
	var req struct {
		Order          *receipt.Order         `json:"order" binding:"required"`
		RestaurantInfo receipt.RestaurantInfo `json:"restaurantInfo"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	ok, err := s.service.PrintReceipt(c.Request.Context(), req.Order, req.RestaurantInfo)
	resp := gin.H{"success": ok}
	if err != nil {
		resp["error"] = err.Error()
	}
	c.JSON(statusForPrint(ok, err), resp)
}

// handleTestPrint prints the fixed test receipt.
func (s *Server) handleTestPrint(c *gin.Context) {
	ok, err := s.service.TestPrint(c.Request.Context())
	resp := gin.H{"success": ok}
	if err != nil {
		resp["error"] = err.Error()
	}
	c.JSON(statusForPrint(ok, err), resp)
}

// Run starts the API server.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// statusForError maps the service error taxonomy onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, printer.ErrPermissionDenied):
		return 403
	case errors.Is(err, printer.ErrNotConnected):
		return 409
	case errors.Is(err, printer.ErrTransportUnavailable):
		return 503
	case errors.Is(err, printer.ErrConnectionFailed):
		return 502
	default:
		return 500
	}
}

func statusForPrint(ok bool, err error) int {
	if ok {
		return 200
	}
	if errors.Is(err, printer.ErrPrintInProgress) {
		return 429
	}
	return statusForError(err)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
