package handlers

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/NLlemain/ride-comparing/internal/api/dto"
	"github.com/NLlemain/ride-comparing/internal/domain"
	"github.com/NLlemain/ride-comparing/internal/services"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// SessionHandler upgrades /ws requests and runs one SessionCoordinator per connection.
type SessionHandler struct {
	// View and Canvas are set per connection.
	Deps     services.Dependencies
	Validate *validator.Validate
	Logger   *zap.Logger
	Upgrader websocket.Upgrader

	active atomic.Int64
}

func NewSessionHandler(deps services.Dependencies, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		Deps:     deps,
		Validate: validator.New(validator.WithRequiredStructEnabled()),
		Logger:   logger,
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Active reports the number of open sessions.
func (h *SessionHandler) Active() int64 {
	return h.active.Load()
}

// Serve runs a session until the client disconnects. Messages are applied in
// the order they arrive and their lookups run in their own goroutines;
// disconnecting cancels all of them.
func (h *SessionHandler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client.
		h.Logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	id := uuid.NewString()
	logger := h.Logger.With(zap.String("session_id", id))
	display := newWSDisplay(conn, logger)

	deps := h.Deps
	deps.View = display
	deps.Canvas = display
	deps.Logger = logger
	coord := services.NewSessionCoordinator(id, deps)

	ctx, cancel := context.WithCancel(r.Context())
	var inflight sync.WaitGroup

	h.active.Add(1)
	logger.Info("session opened", zap.Int64("active", h.active.Load()))
	defer func() {
		cancel()
		coord.Close()
		inflight.Wait()
		_ = conn.Close()
		h.active.Add(-1)
		logger.Info("session closed", zap.Int64("active", h.active.Load()))
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go h.keepAlive(ctx, display, logger)

	display.send(dto.ServerMessage{Type: dto.TypeSession, SessionID: id})
	coord.Start()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("websocket read failed", zap.Error(err))
			}
			return
		}

		msg, err := dto.ParseClientMessage(raw, h.Validate)
		if err != nil {
			display.sendError(err.Error())
			continue
		}

		// Ordering work happens here, in arrival order; only lookups run concurrently.
		run := h.begin(ctx, coord, display, msg)
		if run == nil {
			continue
		}
		inflight.Add(1)
		go func() {
			defer inflight.Done()
			run()
		}()
	}
}

// begin applies msg to the session and returns its blocking remainder, if any.
func (h *SessionHandler) begin(ctx context.Context, coord *services.SessionCoordinator, display *wsDisplay, msg dto.ClientMessage) func() {
	switch msg.Type {
	case dto.TypeGeolocation:
		coord.SetUserLocation(msg.Coordinate())
	case dto.TypeMapClick:
		return coord.BeginMapClick(ctx, msg.Coordinate())
	case dto.TypeAddressInput:
		return coord.BeginAddressInput(ctx, domain.Field(msg.Field), msg.Text)
	case dto.TypeSelectSuggestion:
		run, err := coord.BeginSelectSuggestionAt(ctx, domain.Field(msg.Field), *msg.Index)
		if err != nil {
			if errors.Is(err, services.ErrUnknownSuggestion) {
				display.sendError(err.Error())
				return nil
			}
			h.Logger.Warn("select suggestion failed", zap.Error(err))
			return nil
		}
		return run
	case dto.TypeSubmitDestination:
		return coord.BeginSubmitDestinationText(ctx, msg.Text)
	case dto.TypeRouteClick:
		coord.SelectRoute(msg.LayerID)
	case dto.TypeReset:
		coord.Reset()
	}
	return nil
}

func (h *SessionHandler) keepAlive(ctx context.Context, display *wsDisplay, logger *zap.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := display.ping(); err != nil {
				logger.Debug("websocket ping failed", zap.Error(err))
				return
			}
		}
	}
}
