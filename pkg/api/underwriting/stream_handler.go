package underwriting

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"agentic_underwriting/pkg/core/workflow"
)

// HandleProcessStream runs the workflow in the background and streams its
// events over SSE, one data: frame per event, terminated by a complete or
// error frame.
func (h *Handler) HandleProcessStream(w http.ResponseWriter, r *http.Request) {
	var req UnderwritingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", workflow.ErrInvalidInput, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	id := h.Manager.Start(req.applicant(), req.MedicalData)
	o, err := h.Manager.Get(id)
	if err != nil {
		sendSSERaw(w, flusher, map[string]interface{}{
			"type":      "error",
			"message":   err.Error(),
			"timestamp": time.Now().Format(time.RFC3339Nano),
		})
		return
	}

	// History replay covers events published before the subscription.
	events, history := o.Bus.Subscribe()
	defer o.Bus.Unsubscribe(events)

	for _, evt := range history {
		if err := sendSSEEvent(w, flusher, evt); err != nil {
			return
		}
	}

	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case evt, open := <-events:
			if !open {
				h.sendTerminalFrame(w, flusher, o)
				return
			}
			if err := sendSSEEvent(w, flusher, evt); err != nil {
				return
			}

		case <-heartbeat.C:
			fmt.Fprintf(w, ": heartbeat\n\n")
			flusher.Flush()

		case <-r.Context().Done():
			log.Debug().Str("workflow_id", id).Msg("stream client disconnected")
			return
		}
	}
}

func (h *Handler) sendTerminalFrame(w http.ResponseWriter, flusher http.Flusher, o *workflow.Orchestrator) {
	status, _ := o.State()
	frame := map[string]interface{}{
		"type":      "complete",
		"timestamp": time.Now().Format(time.RFC3339Nano),
	}
	if status == workflow.WorkflowFailed {
		frame["type"] = "error"
		frame["message"] = "underwriting workflow failed"
	}
	sendSSERaw(w, flusher, frame)
}

func sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, evt workflow.Event) error {
	data, err := evt.ToJSON()
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}

func sendSSERaw(w http.ResponseWriter, flusher http.Flusher, body interface{}) {
	data, err := json.Marshal(body)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
	flusher.Flush()
}
