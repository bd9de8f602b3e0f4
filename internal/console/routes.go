package console

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/brakken/rconctl/internal/auth"
	"github.com/brakken/rconctl/internal/rcon"
)

func (s *Server) registerRoutes() {
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"uptime": time.Since(s.start).String(),
		})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.router.Group("/api")
	if s.cfg.APIToken != "" {
		api.Use(bearerAuth(auth.StaticToken{Token: s.cfg.APIToken}))
	}

	api.GET("/targets", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"targets": s.mgr.Targets()})
	})

	api.POST("/targets/:name/connect", func(c *gin.Context) {
		if err := s.mgr.Connect(c.Request.Context(), c.Param("name")); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "connected"})
	})

	api.POST("/targets/:name/disconnect", func(c *gin.Context) {
		if err := s.mgr.Disconnect(c.Param("name")); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "disconnected"})
	})

	api.POST("/targets/:name/command", func(c *gin.Context) {
		var req struct {
			Command string `json:"command" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		body, err := s.mgr.Exec(c.Request.Context(), c.Param("name"), req.Command)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"body": body})
	})

	api.GET("/targets/:name/history", func(c *gin.Context) {
		entries, err := s.mgr.History(c.Param("name"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"history": entries})
	})

	api.GET("/targets/:name/events", s.streamEvents)
}

func bearerAuth(validator auth.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := auth.Bearer(c.GetHeader("Authorization"))
		if err := validator.Validate(token); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrUnknownTarget):
		status = http.StatusNotFound
	case errors.Is(err, rcon.ErrNotConnected),
		errors.Is(err, rcon.ErrAlreadyConnected),
		errors.Is(err, rcon.ErrAwaitingChallenge),
		errors.Is(err, rcon.ErrConnectionClosed):
		status = http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cross-origin policy is enforced by the CORS middleware on the
	// rest of the API; browsers do not send preflights for upgrades.
	CheckOrigin: func(*http.Request) bool { return true },
}

const (
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
)

// streamEvents upgrades the request and relays the target's stream
// until the subscriber is dropped or the peer goes away.
func (s *Server) streamEvents(c *gin.Context) {
	name := c.Param("name")
	events, cancel, err := s.mgr.Subscribe(name)
	if err != nil {
		respondError(c, err)
		return
	}
	defer cancel()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()

	for {
		select {
		case payload, ok := <-events:
			if !ok {
				// Dropped by the hub for falling behind.
				deadline := time.Now().Add(wsWriteTimeout)
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "subscriber too slow"),
					deadline)
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}
