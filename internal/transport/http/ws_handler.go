package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"quizverse/internal/app"
)

// Action is a client to server message type.
type Action string

const (
	ActionAnswer Action = "answer"
	ActionMark   Action = "mark"
	ActionGoTo   Action = "goto"
	ActionNext   Action = "next"
	ActionPrev   Action = "prev"
	ActionSubmit Action = "submit"
	ActionExit   Action = "exit"
)

// Event is a server to client message type.
type Event string

const (
	EventView   Event = "view"
	EventResult Event = "result"
	EventExited Event = "exited"
	EventError  Event = "error"
)

type WSHandler struct {
	player   *app.PlayerService
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewWSHandler(player *app.PlayerService, allowedOrigins []string, log zerolog.Logger) *WSHandler {
	return &WSHandler{
		player: player,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		log: log.With().Str("component", "ws_handler").Logger(),
	}
}

// originChecker permits every origin when none are configured (development mode).
func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		if len(allowed) == 0 {
			return true
		}
		origin := r.Header.Get("Origin")
		for _, a := range allowed {
			if strings.EqualFold(a, origin) {
				return true
			}
		}
		return false
	}
}

type inboundMessage struct {
	Type    Action          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	QuestionID string `json:"questionId"`
	Option     int    `json:"option"`
}

type markPayload struct {
	QuestionID string `json:"questionId"`
}

type gotoPayload struct {
	Index int `json:"index"`
}

type outboundMessage[T any] struct {
	Type    Event `json:"type"`
	Payload T     `json:"payload"`
}

type errorPayload struct {
	Code    ErrCode `json:"code"`
	Message string  `json:"message"`
}

// outbox hands messages to the connection's writer goroutine. A push gives up
// once the handler is closing or the writer has stopped.
type outbox struct {
	send       chan outboundMessage[any]
	closing    chan struct{}
	writerDone chan struct{}
}

func newOutbox(size int) *outbox {
	return &outbox{
		send:       make(chan outboundMessage[any], size),
		closing:    make(chan struct{}),
		writerDone: make(chan struct{}),
	}
}

func (o *outbox) push(msg outboundMessage[any]) bool {
	select {
	case o.send <- msg:
		return true
	case <-o.closing:
		return false
	case <-o.writerDone:
		return false
	}
}

func errorMessage(err error) outboundMessage[any] {
	_, code := classify(err)
	return outboundMessage[any]{Type: EventError, Payload: errorPayload{Code: code, Message: err.Error()}}
}

// ServeWS upgrades HTTP requests to websockets and streams one attempt.
// Views are pushed after every change and countdown tick; the result is pushed
// once when the attempt is submitted. Closing the socket leaves the attempt running.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	attemptID := r.URL.Query().Get("attemptId")
	if attemptID == "" {
		http.Error(w, "missing attemptId", http.StatusBadRequest)
		return
	}
	ctx := r.Context()

	updates, cancel, err := h.player.Subscribe(ctx, attemptID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	defer cancel()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	out := newOutbox(16)
	updatesDone := make(chan struct{})

	// Only the writer goroutine touches conn for writes.
	go func() {
		defer close(out.writerDone)
		for msg := range out.send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debug().Err(err).Str("attempt_id", attemptID).Msg("ws write error")
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		resultSent := false
		for {
			select {
			case view, ok := <-updates:
				if !ok {
					out.push(outboundMessage[any]{Type: EventExited, Payload: map[string]string{"attemptId": attemptID}})
					return
				}
				if !out.push(outboundMessage[any]{Type: EventView, Payload: view}) {
					return
				}
				if view.Result != nil && !resultSent {
					resultSent = true
					if !out.push(outboundMessage[any]{Type: EventResult, Payload: *view.Result}) {
						return
					}
				}
			case <-out.closing:
				return
			}
		}
	}()

	reply := func(msg outboundMessage[any]) { out.push(msg) }

readLoop:
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case ActionAnswer:
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				reply(outboundMessage[any]{Type: EventError, Payload: errorPayload{Code: ErrCodeBadRequest, Message: "invalid answer payload"}})
				continue
			}
			if _, err := h.player.SelectAnswer(ctx, attemptID, payload.QuestionID, payload.Option); err != nil {
				reply(errorMessage(err))
			}
		case ActionMark:
			var payload markPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				reply(outboundMessage[any]{Type: EventError, Payload: errorPayload{Code: ErrCodeBadRequest, Message: "invalid mark payload"}})
				continue
			}
			if _, err := h.player.ToggleMark(ctx, attemptID, payload.QuestionID); err != nil {
				reply(errorMessage(err))
			}
		case ActionGoTo:
			var payload gotoPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				reply(outboundMessage[any]{Type: EventError, Payload: errorPayload{Code: ErrCodeBadRequest, Message: "invalid goto payload"}})
				continue
			}
			if _, err := h.player.GoTo(ctx, attemptID, payload.Index); err != nil {
				reply(errorMessage(err))
			}
		case ActionNext:
			if _, err := h.player.Next(ctx, attemptID); err != nil {
				reply(errorMessage(err))
			}
		case ActionPrev:
			if _, err := h.player.Prev(ctx, attemptID); err != nil {
				reply(errorMessage(err))
			}
		case ActionSubmit:
			if _, err := h.player.Submit(ctx, attemptID); err != nil {
				reply(errorMessage(err))
			}
		case ActionExit:
			if err := h.player.Exit(ctx, attemptID); err != nil {
				reply(errorMessage(err))
				continue
			}
			// Exit closed the subscription; let the final messages flush.
			<-updatesDone
			break readLoop
		default:
			reply(outboundMessage[any]{Type: EventError, Payload: errorPayload{Code: ErrCodeBadRequest, Message: "unsupported message type"}})
		}
	}

	close(out.closing)
	<-updatesDone
	close(out.send)
	<-out.writerDone
}
