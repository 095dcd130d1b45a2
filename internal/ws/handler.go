package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/maryakemi70/HY4RES-WP2/internal/model"
	"github.com/maryakemi70/HY4RES-WP2/internal/service"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// QueryService answers the queries a client can send.
type QueryService interface {
	Balance(q service.Query) (service.BalanceResult, error)
	Impacts(q service.Query) (service.ImpactResult, error)
	Profile(q service.Query) (service.ProfileResult, error)
	Coverage() model.TimeRange
	Indicators() []model.Indicator
	Sources() []string
}

// Handler manages WebSocket connections and answers each client's queries.
type Handler struct {
	hub    *Hub
	svc    QueryService
	logger *slog.Logger
}

func NewHandler(hub *Hub, svc QueryService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{hub: hub, svc: svc, logger: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "err", err)
		return
	}

	client := newClient(h.hub, conn)

	h.hub.Register(client)
	go client.writePump()

	h.sendDataLoaded(client)

	h.readPump(client)
}

func (h *Handler) readPump(c *Client) {
	defer func() {
		h.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read failed", "err", err)
			}
			return
		}

		h.handleMessage(c, msg)
	}
}

func (h *Handler) handleMessage(c *Client, msg []byte) {
	var env Envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		h.logger.Warn("invalid message", "err", err)
		h.sendError(c, "", "", "invalid message: "+err.Error())
		return
	}

	switch env.Type {
	case TypeBalanceQuery:
		p, q, ok := h.parseQuery(c, env)
		if !ok {
			return
		}
		res, err := h.svc.Balance(q)
		if err != nil {
			h.queryFailed(c, env.Type, p.ID, err)
			return
		}
		h.reply(c, TypeBalanceResult, BalanceResultFromService(p.ID, res))

	case TypeImpactQuery:
		p, q, ok := h.parseQuery(c, env)
		if !ok {
			return
		}
		res, err := h.svc.Impacts(q)
		if err != nil {
			h.queryFailed(c, env.Type, p.ID, err)
			return
		}
		h.reply(c, TypeImpactResult, ImpactResultFromService(p.ID, res))

	case TypeProfileQuery:
		p, q, ok := h.parseQuery(c, env)
		if !ok {
			return
		}
		res, err := h.svc.Profile(q)
		if err != nil {
			h.queryFailed(c, env.Type, p.ID, err)
			return
		}
		h.reply(c, TypeProfileResult, ProfileResultFromService(p.ID, res))

	default:
		h.logger.Warn("unknown message type", "type", env.Type)
		h.sendError(c, env.Type, "", "unknown message type: "+env.Type)
	}
}

func (h *Handler) parseQuery(c *Client, env Envelope) (QueryPayload, service.Query, bool) {
	var p QueryPayload
	if len(env.Payload) > 0 {
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			h.sendError(c, env.Type, "", "invalid payload: "+err.Error())
			return p, service.Query{}, false
		}
	}
	q, err := p.Query()
	if err != nil {
		h.sendError(c, env.Type, p.ID, err.Error())
		return p, service.Query{}, false
	}
	return p, q, true
}

func (h *Handler) queryFailed(c *Client, request, id string, err error) {
	h.logger.Warn("query failed", "request", request, "err", err)
	h.sendError(c, request, id, err.Error())
}

func (h *Handler) reply(c *Client, msgType string, payload any) {
	msg, err := NewEnvelope(msgType, payload)
	if err != nil {
		h.logger.Error("encoding reply", "type", msgType, "err", err)
		return
	}
	c.trySend(msg)
}

func (h *Handler) sendError(c *Client, request, id, message string) {
	h.reply(c, TypeError, ErrorPayload{ID: id, Request: request, Message: message})
}

func (h *Handler) dataLoadedMessage() ([]byte, error) {
	indicators := h.svc.Indicators()
	infos := make([]IndicatorInfo, len(indicators))
	for i, ind := range indicators {
		infos[i] = IndicatorInfoFor(ind)
	}

	payload := DataLoadedPayload{
		TimeRange:  TimeRangeFromModel(h.svc.Coverage()),
		Indicators: infos,
		Sources:    h.svc.Sources(),
	}
	return NewEnvelope(TypeDataLoaded, payload)
}

func (h *Handler) sendDataLoaded(c *Client) {
	msg, err := h.dataLoadedMessage()
	if err != nil {
		h.logger.Error("creating data:loaded message", "err", err)
		return
	}
	c.trySend(msg)
}

// Shutdown tells every connected client the server is going away.
func (h *Handler) Shutdown() {
	msg, err := NewEnvelope(TypeServerShutdown, nil)
	if err != nil {
		return
	}
	n := h.hub.Broadcast(msg)
	h.logger.Info("shutdown notice sent", "clients", n)
}
