package handlers

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Event types sent over WebSocket
const (
	EventMemberJoined     = "member_joined"
	EventMemberLeft       = "member_left"
	EventProgressUpdated  = "progress_updated"
	EventChallengeDeleted = "challenge_deleted"
)

// WSEvent is the JSON message sent to connected clients
type WSEvent struct {
	Type        string      `json:"type"`
	ChallengeID string      `json:"challengeId"`
	UserID      string      `json:"userId"`
	Data        interface{} `json:"data,omitempty"`
}

type wsConn interface {
	WriteMessage(messageType int, data []byte) error
}

// connection wraps a websocket connection with its user ID. Writes are serialised
// because concurrent broadcasts may target the same socket.
type connection struct {
	mu     sync.Mutex
	conn   wsConn
	userID uuid.UUID
}

func (c *connection) write(msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, msg)
}

// Hub manages WebSocket connections per challenge
type Hub struct {
	mu    sync.RWMutex
	rooms map[uuid.UUID]map[*connection]bool
	log   *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		rooms: make(map[uuid.UUID]map[*connection]bool),
		log:   log,
	}
}

func (h *Hub) register(challengeID uuid.UUID, conn *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[challengeID] == nil {
		h.rooms[challengeID] = make(map[*connection]bool)
	}
	h.rooms[challengeID][conn] = true
	h.log.Debug("ws register",
		zap.Stringer("userId", conn.userID),
		zap.Stringer("challengeId", challengeID),
		zap.Int("total", len(h.rooms[challengeID])),
	)
}

func (h *Hub) unregister(challengeID uuid.UUID, conn *connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.rooms[challengeID]; ok {
		delete(conns, conn)
		h.log.Debug("ws unregister",
			zap.Stringer("userId", conn.userID),
			zap.Stringer("challengeId", challengeID),
			zap.Int("remaining", len(conns)),
		)
		if len(conns) == 0 {
			delete(h.rooms, challengeID)
		}
	}
}

// Broadcast sends an event to every connection watching the challenge except the
// sender's own connections.
func (h *Hub) Broadcast(challengeID, senderID uuid.UUID, eventType string, data interface{}) {
	event := WSEvent{
		Type:        eventType,
		ChallengeID: challengeID.String(),
		UserID:      senderID.String(),
		Data:        data,
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	conns, ok := h.rooms[challengeID]
	if !ok {
		return
	}

	msg, err := json.Marshal(event)
	if err != nil {
		h.log.Warn("ws broadcast marshal error", zap.Error(err))
		return
	}

	for c := range conns {
		if c.userID == senderID {
			continue
		}
		if err := c.write(msg); err != nil {
			h.log.Debug("ws write error", zap.Stringer("userId", c.userID), zap.Error(err))
		}
	}
}

// WebSocketUpgrade checks the upgrade request, authenticates it and only lets
// members of a challenge (or anyone, for a public one) watch it.
func (h *Handler) WebSocketUpgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		// Browsers cannot set headers on an upgrade, so ?token=<jwt> comes first.
		tokenString := c.Query("token")
		if tokenString == "" {
			authHeader := c.Get("Authorization")
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				tokenString = ""
			}
		}

		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing authentication token",
			})
		}

		claims, err := h.auth.ParseToken(tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		challengeID, ok := paramID(c, "id")
		if !ok {
			return badRequest(c, "Invalid challenge ID")
		}
		if _, err := h.Challenges.Get(c.UserContext(), challengeID, claims.UserID); err != nil {
			return h.fail(c, err)
		}

		c.Locals("userId", claims.UserID)
		c.Locals("challengeId", challengeID)
		return c.Next()
	}
}

// HandleWebSocket keeps a watcher registered until the client goes away.
func (h *Handler) HandleWebSocket(c *websocket.Conn) {
	challengeID, ok := c.Locals("challengeId").(uuid.UUID)
	if !ok {
		c.Close()
		return
	}
	userID, ok := c.Locals("userId").(uuid.UUID)
	if !ok {
		c.Close()
		return
	}

	conn := &connection{conn: c, userID: userID}
	h.hub.register(challengeID, conn)
	defer h.hub.unregister(challengeID, conn)

	// Clients only send keepalives; reading detects the close.
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}
}

