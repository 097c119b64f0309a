package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"carsight/internal/chat"
)

const (
	chatWSWriteWait = 10 * time.Second
	chatWSPongWait  = 60 * time.Second
	chatWSPingEvery = (chatWSPongWait * 9) / 10
)

var chatWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type chatCreateRequest struct {
	Vehicle string `json:"vehicle"`
}

type chatCreateResponse struct {
	SessionID string `json:"sessionId"`
	Greeting  string `json:"greeting"`
}

type chatMessageRequest struct {
	Text string `json:"text"`
}

type chatMessageResponse struct {
	Reply string `json:"reply"`
}

func (h *Handler) handleChatCreate(w http.ResponseWriter, r *http.Request) {
	var req chatCreateRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	id, _ := h.sessions.Create(req.Vehicle)
	writeJSON(w, http.StatusCreated, chatCreateResponse{
		SessionID: id,
		Greeting:  chat.Greeting,
	})
}

func (h *Handler) handleChatMessage(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.sessions.Get(chi.URLParam(r, "sessionID"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	var req chatMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	reply, err := sess.Send(r.Context(), req.Text)
	switch {
	case errors.Is(err, chat.ErrBusy):
		writeError(w, http.StatusConflict, "a reply is still in progress")
		return
	case errors.Is(err, chat.ErrSessionClosed):
		writeError(w, http.StatusGone, "session is closed")
		return
	}
	writeJSON(w, http.StatusOK, chatMessageResponse{Reply: reply})
}

func (h *Handler) handleChatClose(w http.ResponseWriter, r *http.Request) {
	if !h.sessions.Close(chi.URLParam(r, "sessionID")) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type chatWSInbound struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type chatWSOutbound struct {
	Type    string `json:"type"`
	Text    string `json:"text,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// handleChatWS serves a websocket turn channel over an existing session.
// One writer goroutine owns the connection; replies and errors are pushed
// through writeCh so ping frames never interleave mid-message.
func (h *Handler) handleChatWS(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.sessions.Get(chi.URLParam(r, "sessionID"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	conn, err := chatWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx := r.Context()

	if err := conn.SetReadDeadline(time.Now().Add(chatWSPongWait)); err != nil {
		h.log.Error("chat ws set read deadline failed", "error", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(chatWSPongWait))
	})

	writeCh := make(chan chatWSOutbound, 8)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(chatWSPingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case out, ok := <-writeCh:
				if !ok {
					return
				}
				if err := conn.SetWriteDeadline(time.Now().Add(chatWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(chatWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()
	defer func() {
		close(writeCh)
		<-writerDone
	}()

	// The writer can exit on its own (context cancel, write failure); a
	// bare channel send would then block forever.
	push := func(out chatWSOutbound) bool {
		select {
		case writeCh <- out:
			return true
		case <-writerDone:
			return false
		}
	}

	for {
		var in chatWSInbound
		if err := conn.ReadJSON(&in); err != nil {
			return
		}
		if in.Type != "message" || strings.TrimSpace(in.Text) == "" {
			if !push(chatWSOutbound{Type: "error", Code: "invalid_argument", Message: "expected {type: message, text}"}) {
				return
			}
			continue
		}
		reply, err := sess.Send(ctx, in.Text)
		switch {
		case errors.Is(err, chat.ErrBusy):
			if !push(chatWSOutbound{Type: "error", Code: "busy", Message: "a reply is still in progress"}) {
				return
			}
		case errors.Is(err, chat.ErrSessionClosed):
			push(chatWSOutbound{Type: "error", Code: "closed", Message: "session is closed"})
			return
		default:
			if !push(chatWSOutbound{Type: "reply", Text: reply}) {
				return
			}
		}
	}
}
