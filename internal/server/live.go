package server

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/conneroisu/contactform/internal/contact"
	cerrors "github.com/conneroisu/contactform/internal/errors"
	"github.com/conneroisu/contactform/internal/logging"
	"github.com/conneroisu/contactform/internal/validation"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Maximum message size allowed from peer.
	maxMessageSize = 8 << 10
)

// Inbound message types.
const (
	MsgChange = "change"
	MsgSubmit = "submit"
	MsgCancel = "cancel"
)

// Outbound message types.
const (
	MsgState    = "state"
	MsgNavigate = "navigate"
	MsgError    = "error"
)

// ClientMessage is one event sent by the browser.
type ClientMessage struct {
	Type  string `json:"type"`
	Field string `json:"field,omitempty"`
	Value string `json:"value,omitempty"`
}

// StateMessage reports the form state after a change or a submit.
type StateMessage struct {
	Type      string                              `json:"type"`
	Event     string                              `json:"event"`
	FormID    string                              `json:"form_id"`
	Values    map[string]string                   `json:"values"`
	Validated bool                                `json:"validated"`
	Valid     bool                                `json:"valid"`
	Invalid   map[string]validation.ValidityState `json:"invalid,omitempty"`
	// Attempted and Shared are only set for submit events.
	Attempted bool `json:"attempted,omitempty"`
	Shared    bool `json:"shared,omitempty"`
}

// NavigateMessage asks the browser to leave the form.
type NavigateMessage struct {
	Type     string `json:"type"`
	Location string `json:"location"`
}

// ErrorMessage reports a rejected client message.
type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// liveSession is one mounted form bound to one WebSocket connection.
type liveSession struct {
	conn     *websocket.Conn
	form     *contact.Form
	logger   logging.Logger
	shutdown <-chan struct{}
	rate     *messageRate

	// submits tracks submit goroutines so the session outlives none of them.
	submits sync.WaitGroup
}

func (ls *liveSession) send(ctx context.Context, v interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	return wsjson.Write(ctx, ls.conn, v)
}

// Navigate implements contact.Navigator for the session.
func (ls *liveSession) Navigate(ctx context.Context, path string) error {
	return ls.send(ctx, NavigateMessage{Type: MsgNavigate, Location: path})
}

func (ls *liveSession) state(event string) StateMessage {
	draft := ls.form.Draft()
	validity := ls.form.Validity()

	values := make(map[string]string, len(contact.Fields))
	for _, f := range contact.Fields {
		if v := draft.Get(f); v != nil {
			values[f.Name()] = *v
		}
	}

	return StateMessage{
		Type:      MsgState,
		Event:     event,
		FormID:    ls.form.ID(),
		Values:    values,
		Validated: ls.form.Validated(),
		Valid:     validity.Valid,
		Invalid:   validity.Fields,
	}
}

// handleLive upgrades to a WebSocket and runs one live session.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	if err := validation.ValidateOrigin(origin, s.config.Server.Origins()); err != nil {
		s.logger.Warn(r.Context(), err, "Rejected live session", "origin", origin)
		http.Error(w, "Origin not allowed", http.StatusForbidden)
		return
	}
	originURL, _ := url.Parse(origin)

	ip := clientIP(r)
	if !s.limiter.acquire(ip) {
		s.logger.Warn(r.Context(), nil, "Too many live sessions", "ip", ip)
		http.Error(w, "Too many live sessions", http.StatusTooManyRequests)
		return
	}
	defer s.limiter.release(ip)

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{originURL.Host},
	})
	if err != nil {
		s.logger.Warn(r.Context(), err, "WebSocket upgrade failed")
		return
	}
	conn.SetReadLimit(maxMessageSize)

	s.sessions.Add(1)
	defer s.sessions.Done()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		select {
		case <-s.done:
			conn.Close(websocket.StatusGoingAway, "server shutting down")
			cancel()
		case <-ctx.Done():
		}
	}()

	ls := &liveSession{
		conn:     conn,
		shutdown: s.done,
		rate:     newMessageRate(s.config.Server.MaxMessagesPerMinute),
	}
	ls.form = s.newForm(formID(r.URL.Query().Get("form_id")), ls)
	ls.logger = s.logger.With("form_id", ls.form.ID())

	status, reason := ls.run(ctx)
	ls.submits.Wait()
	conn.Close(status, reason)
}

// run processes client messages until the peer leaves, the form navigates
// away, or ctx ends.
func (ls *liveSession) run(ctx context.Context) (websocket.StatusCode, string) {
	ls.logger.Debug(ctx, "Live session started")
	defer ls.logger.Debug(ctx, "Live session ended")

	if err := ls.send(ctx, ls.state("mount")); err != nil {
		return websocket.StatusInternalError, "write failed"
	}

	for {
		var msg ClientMessage
		if err := wsjson.Read(ctx, ls.conn, &msg); err != nil {
			select {
			case <-ls.shutdown:
				return websocket.StatusGoingAway, "server shutting down"
			default:
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				ls.logger.Warn(ctx, cerrors.WebSocketError("READ", ls.form.ID(), "read failed", err), "Live session read failed")
			}
			return websocket.StatusNormalClosure, ""
		}

		if !ls.rate.allow() {
			ls.logger.Warn(ctx, nil, "Live session exceeded message rate")
			_ = ls.send(ctx, ErrorMessage{Type: MsgError, Message: "rate limit exceeded"})
			return websocket.StatusPolicyViolation, "rate limit exceeded"
		}

		switch msg.Type {
		case MsgChange:
			if err := ls.form.Set(msg.Field, msg.Value); err != nil {
				_ = ls.send(ctx, ErrorMessage{Type: MsgError, Message: err.Error()})
				continue
			}
			_ = ls.send(ctx, ls.state(MsgChange))

		case MsgSubmit:
			// The session keeps reading while the mutation is in flight.
			ls.submits.Add(1)
			go func() {
				defer ls.submits.Done()
				result := ls.form.OnSubmit(ctx)
				state := ls.state(MsgSubmit)
				state.Valid = result.Validity.Valid
				state.Invalid = result.Validity.Fields
				state.Attempted = result.Attempted
				state.Shared = result.Shared
				_ = ls.send(ctx, state)
			}()

		case MsgCancel:
			if err := ls.form.OnCancel(ctx); err != nil {
				ls.logger.Error(ctx, err, "Failed to navigate away from form")
				return websocket.StatusInternalError, "navigate failed"
			}
			return websocket.StatusNormalClosure, "navigated"

		default:
			_ = ls.send(ctx, ErrorMessage{Type: MsgError, Message: "unknown message type " + msg.Type})
		}
	}
}
