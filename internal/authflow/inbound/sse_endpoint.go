package inbound

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/shandysiswandi/numsphere/internal/authflow/usecase"
	"github.com/shandysiswandi/numsphere/internal/pkg/goerror"
	"github.com/shandysiswandi/numsphere/internal/pkg/router"
)

const streamPingInterval = 25 * time.Second

// StreamFlow streams flow state changes, including every cooldown tick, using SSE.
// The stream ends when the flow closes.
// @Summary Stream auth flow
// @Description Streams flow snapshots using Server-Sent Events (SSE).
// @Tags AuthFlow
// @Produce text/event-stream
// @Param id path string true "Flow ID"
// @Success 200 {string} string "SSE stream"
// @Failure 404 {string} string "Flow not found"
// @Failure 500 {string} string "streaming unsupported"
// @Router /api/v1/authflow/flows/{id}/stream [get]
func (h *HTTPEndpoint) StreamFlow() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}
		ctx := r.Context()

		req := &router.Request{Request: r}
		stream, cancel, err := h.uc.Subscribe(ctx, usecase.FlowInput{FlowID: req.GetParam("id")})
		if err != nil {
			if gerr, ok := goerror.As(err); ok {
				http.Error(w, gerr.Msg(), gerr.StatusCode())
				return
			}
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		defer cancel()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")

		w.WriteHeader(http.StatusOK)
		if _, err := fmt.Fprint(w, ": connected\n\n"); err != nil {
			slog.ErrorContext(ctx, "failed to send response connected", "error", err)
			return
		}
		flusher.Flush()

		// heartbeat ping, so proxies won’t drop idle connections.
		ticker := time.NewTicker(streamPingInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return

			case <-ticker.C:
				if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
					return
				}
				flusher.Flush()

			case snap, ok := <-stream:
				if !ok {
					if _, err := fmt.Fprint(w, "event: closed\ndata: {}\n\n"); err == nil {
						flusher.Flush()
					}
					return
				}
				payload, err := json.Marshal(newFlowStateResponse(snap))
				if err != nil {
					slog.ErrorContext(ctx, "failed to marshal data", "error", err)
					continue
				}
				if _, err := fmt.Fprintf(w, "event: flow\ndata: %s\n\n", payload); err != nil {
					slog.ErrorContext(ctx, "failed to send response data", "error", err)
					return
				}
				flusher.Flush()
			}
		}
	})
}
