package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// wsReadTimeout bounds how long we wait for the client's request frame.
const wsReadTimeout = 30 * time.Second

// progressEvent is one pipeline update pushed over the socket.
type progressEvent struct {
	Type   string `json:"type"` // "progress" or "result" or "error"
	Stage  string `json:"stage,omitempty"`
	Detail string `json:"detail,omitempty"`

	Result *generateResponse `json:"result,omitempty"`
	Error  string            `json:"error,omitempty"`
}

// handleGenerateWS runs the generation pipeline over a websocket: the
// client sends one generateRequest frame, receives progress events per
// stage and set, then a final result frame.
func (a *app) handleGenerateWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.Close(websocket.StatusInternalError, "unexpected close")

	ctx := r.Context()

	readCtx, cancel := context.WithTimeout(ctx, wsReadTimeout)
	defer cancel()

	var req generateRequest
	if err := wsjson.Read(readCtx, conn, &req); err != nil {
		conn.Close(websocket.StatusPolicyViolation, "expected a generation request frame")
		return
	}

	dist, err := req.normalize(a.profile)
	if err != nil {
		_ = wsjson.Write(ctx, conn, progressEvent{Type: "error", Error: err.Error()})
		conn.Close(websocket.StatusPolicyViolation, "invalid request")
		return
	}

	progress := func(stage, detail string) {
		if err := wsjson.Write(ctx, conn, progressEvent{Type: "progress", Stage: stage, Detail: detail}); err != nil {
			slog.Warn("progress write failed", "stage", stage, "error", err)
		}
	}

	resp := a.generate(ctx, req, dist, progress)
	if err := wsjson.Write(ctx, conn, progressEvent{Type: "result", Result: &resp}); err != nil {
		slog.Warn("result write failed", "error", err)
		return
	}

	conn.Close(websocket.StatusNormalClosure, "done")
}
