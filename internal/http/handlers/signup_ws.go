package handlers

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/hongminglow/inventory-be/internal/availability"
	"github.com/hongminglow/inventory-be/internal/middleware"
	"github.com/hongminglow/inventory-be/internal/models"
	"github.com/hongminglow/inventory-be/internal/models/dto"
	"github.com/hongminglow/inventory-be/internal/provisioning"
)

// Frame types exchanged on the signup socket.
const (
	frameUsername     = "username"
	frameSubmit       = "submit"
	frameAvailability = "username_availability"
	frameState        = "state"
	frameOutcome      = "outcome"
	frameError        = "error"
)

const (
	writeWait   = 10 * time.Second
	readLimit   = 16 << 10
	idleTimeout = 10 * time.Minute
)

type clientFrame struct {
	Type         string                      `json:"type"`
	Username     string                      `json:"username,omitempty"`
	Registration *models.RegistrationRequest `json:"registration,omitempty"`
}

type serverFrame struct {
	Type      string                  `json:"type"`
	FormID    string                  `json:"formId,omitempty"`
	Username  string                  `json:"username,omitempty"`
	Available *bool                   `json:"available,omitempty"`
	State     string                  `json:"state,omitempty"`
	Outcome   string                  `json:"outcome,omitempty"`
	Account   *models.AccountIdentity `json:"account,omitempty"`
	Feedback  *dto.FeedbackBody       `json:"feedback,omitempty"`
	Message   string                  `json:"message,omitempty"`
}

// SignupSocket serves one live signup form per websocket connection: debounced
// username availability and provisioning state transitions.
type SignupSocket struct {
	orch     *provisioning.Orchestrator
	lookup   availability.Lookup
	debounce time.Duration
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewSignupSocket constructs the handler.
func NewSignupSocket(orch *provisioning.Orchestrator, lookup availability.Lookup, debounce time.Duration, allowedOrigins []string, logger *zap.Logger) *SignupSocket {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SignupSocket{
		orch:     orch,
		lookup:   lookup,
		debounce: debounce,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return middleware.OriginAllowed(allowedOrigins, r.Header.Get("Origin"))
			},
		},
		logger: logger,
	}
}

// Register attaches the websocket route to the router.
func (h *SignupSocket) Register(r chi.Router) {
	r.Get("/ws/signup", h.handle)
}

func (h *SignupSocket) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	formID := uuid.NewString()
	log := h.logger.With(zap.String("form_id", formID))

	var writeMu sync.Mutex
	send := func(f serverFrame) {
		writeMu.Lock()
		defer writeMu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(f); err != nil {
			log.Debug("websocket write failed", zap.Error(err))
		}
	}

	checker := availability.New(h.lookup, h.debounce, func(res availability.Result) {
		if res.Err != nil {
			log.Warn("username availability lookup failed", zap.Error(res.Err))
			send(serverFrame{Type: frameAvailability, Username: res.Username, Message: "unable to check username right now"})
			return
		}
		available := res.Available
		send(serverFrame{Type: frameAvailability, Username: res.Username, Available: &available})
	})
	defer checker.Close()

	form := provisioning.NewForm(h.orch)
	form.Subscribe(func(s provisioning.State) {
		send(serverFrame{Type: frameState, State: s.String()})
	})

	ctx, cancel := context.WithCancel(r.Context())
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
	}()

	send(serverFrame{Type: frameState, FormID: formID, State: form.State().String()})

	conn.SetReadLimit(readLimit)
	for {
		_ = conn.SetReadDeadline(time.Now().Add(idleTimeout))
		var in clientFrame
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug("websocket closed", zap.Error(err))
			}
			return
		}

		switch in.Type {
		case frameUsername:
			checker.Check(in.Username)
		case frameSubmit:
			if in.Registration == nil {
				send(serverFrame{Type: frameError, Message: "registration is required"})
				continue
			}
			req := *in.Registration
			wg.Add(1)
			go func() {
				defer wg.Done()
				out, err := form.Submit(ctx, req)
				if errors.Is(err, provisioning.ErrSubmissionInFlight) {
					send(serverFrame{Type: frameError, Message: err.Error()})
					return
				}
				fb := feedbackBody(provisioning.FeedbackFor(out))
				frame := serverFrame{Type: frameOutcome, Outcome: out.Kind.String(), Feedback: &fb}
				if out.Kind != provisioning.OutcomeRejected {
					identity := out.Identity
					frame.Account = &identity
				}
				send(frame)
			}()
		default:
			send(serverFrame{Type: frameError, Message: "unknown message type"})
		}
	}
}
