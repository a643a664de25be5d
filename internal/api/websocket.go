package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/foreign-arrivals/dashboard/internal/models"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// WebSocket message types for the live query protocol
const (
	// Client -> Server messages
	MsgTypeQuery   = "query"
	MsgTypeOptions = "options"
	MsgTypePing    = "ping"

	// Server -> Client messages
	MsgTypeConnected = "connected"
	MsgTypeDashboard = "dashboard"
	MsgTypeError     = "error"
	MsgTypePong      = "pong"
)

// WSMessage is the envelope of every frame. ID is echoed back so the client
// can match replies to requests.
type WSMessage struct {
	Type      string          `json:"type"`
	ID        string          `json:"id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// DefaultWSReadLimit caps inbound frames when no limit is configured.
const DefaultWSReadLimit = 64 * 1024

// WebSocketHandler answers dashboard queries over a WebSocket so a client
// can re-query on every control change without a new request.
type WebSocketHandler struct {
	handler   *Handler
	upgrader  websocket.Upgrader
	logger    *slog.Logger
	readLimit int64
}

// NewWebSocketHandler creates a new WebSocket query handler. readLimit caps
// the size of one client frame; zero or less means DefaultWSReadLimit.
func NewWebSocketHandler(h *Handler, logger *slog.Logger, readLimit int64) *WebSocketHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if readLimit <= 0 {
		readLimit = DefaultWSReadLimit
	}
	return &WebSocketHandler{
		handler:   h,
		readLimit: readLimit,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
		},
		logger: logger,
	}
}

// HandleWebSocket upgrades the connection and serves queries until the
// client goes away.
func (wsh *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	ws, err := wsh.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()
	// BodyLimit does not apply once the connection is hijacked
	ws.SetReadLimit(wsh.readLimit)

	connID := uuid.NewString()
	log := wsh.logger.With("conn", connID)
	log.Debug("websocket connected")

	wsh.sendMessage(ws, log, WSMessage{Type: MsgTypeConnected, ID: connID})

	ctx := c.Request().Context()
	for {
		var msg WSMessage
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("websocket read failed", "error", err)
			}
			break
		}

		switch msg.Type {
		case MsgTypePing:
			wsh.sendMessage(ws, log, WSMessage{Type: MsgTypePong, ID: msg.ID})
		case MsgTypeOptions:
			opts, err := wsh.handler.service.Options(ctx)
			if err != nil {
				wsh.sendError(ws, log, msg.ID, FromError(err))
				continue
			}
			wsh.sendMessage(ws, log, WSMessage{Type: MsgTypeOptions, ID: msg.ID, Payload: mustJSON(opts)})
		case MsgTypeQuery:
			wsh.handleQuery(ctx, ws, log, msg)
		default:
			wsh.sendError(ws, log, msg.ID, NewBadRequestError("unknown message type: "+msg.Type, nil))
		}
	}

	log.Debug("websocket disconnected")
	return nil
}

func (wsh *WebSocketHandler) handleQuery(ctx context.Context, ws *websocket.Conn, log *slog.Logger, msg WSMessage) {
	in, err := decodeQuery(msg.Payload)
	if err != nil {
		wsh.handler.observe(ViewDashboard, "error")
		wsh.sendError(ws, log, msg.ID, NewBadRequestError("invalid query payload", err))
		return
	}

	d, err := wsh.handler.service.Query(ctx, in)
	if err != nil {
		wsh.handler.observe(ViewDashboard, errorOutcome(err))
		wsh.sendError(ws, log, msg.ID, FromError(err))
		return
	}
	outcome := "ok"
	if viewEmpty(d, ViewDashboard) {
		outcome = "empty"
	}
	wsh.handler.observe(ViewDashboard, outcome)
	wsh.sendMessage(ws, log, WSMessage{Type: MsgTypeDashboard, ID: msg.ID, Payload: mustJSON(d)})
}

// queryPayload mirrors models.SelectionInput; an omitted choice means all.
type queryPayload struct {
	YearFrom  int            `json:"yearFrom"`
	YearTo    int            `json:"yearTo"`
	Countries *models.Choice `json:"countries"`
	Poes      *models.Choice `json:"poes"`
}

func decodeQuery(raw json.RawMessage) (models.SelectionInput, error) {
	in := models.SelectionInput{Countries: models.AllOf(), Poes: models.AllOf()}
	if len(raw) == 0 {
		return in, nil
	}
	var p queryPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return in, err
	}
	in.YearFrom, in.YearTo = p.YearFrom, p.YearTo
	if p.Countries != nil {
		in.Countries = *p.Countries
	}
	if p.Poes != nil {
		in.Poes = *p.Poes
	}
	return in, nil
}

func (wsh *WebSocketHandler) sendMessage(ws *websocket.Conn, log *slog.Logger, msg WSMessage) {
	msg.Timestamp = time.Now().UnixMilli()
	if err := ws.WriteJSON(msg); err != nil {
		log.Warn("websocket write failed", "error", err)
	}
}

func (wsh *WebSocketHandler) sendError(ws *websocket.Conn, log *slog.Logger, id string, apiErr *APIError) {
	wsh.sendMessage(ws, log, WSMessage{
		Type:    MsgTypeError,
		ID:      id,
		Payload: mustJSON(apiErr),
	})
}

func mustJSON(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return data
}
