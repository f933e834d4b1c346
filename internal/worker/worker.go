// Package worker provides a NATS worker that answers stitch requests.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/book-expert/events"
	"github.com/book-expert/logger"
	"github.com/book-expert/speech-stitcher/internal/core"
	"github.com/nats-io/nats.go"
)

// handleMessageTimeout bounds one whole batch: every TTS fetch, both tool
// invocations, and the upload.
const handleMessageTimeout = 5 * time.Minute

// StitchRequestedEvent is the wire shape of a stitch request. GapSeconds is a
// pointer so an omitted gap is distinguishable from an explicit zero.
type StitchRequestedEvent struct {
	Header     events.EventHeader `json:"header"`
	Texts      []string           `json:"texts"`
	GapSeconds *float64           `json:"gapSeconds,omitempty"`
	VoiceID    string             `json:"voiceId,omitempty"`
	OutputKey  string             `json:"outputKey,omitempty"`
}

// StitchCompletedEvent is the wire shape of the reply: an HTTP-style status
// code plus either an error message or the storage location and batch facts.
type StitchCompletedEvent struct {
	Header     events.EventHeader `json:"header"`
	Status     int                `json:"status"`
	Error      string             `json:"error,omitempty"`
	Bucket     string             `json:"bucket,omitempty"`
	Key        string             `json:"key,omitempty"`
	ClipCount  int                `json:"clipCount,omitempty"`
	GapSeconds float64            `json:"gapSeconds"`
}

// NatsWorker listens for stitch requests on a NATS subject and replies with
// the result of running the pipeline.
type NatsWorker struct {
	natsConnection *nats.Conn
	subject        string
	stitcher       core.Stitcher
	log            *logger.Logger
}

// NewNatsWorker creates a new instance of a NATS worker.
func NewNatsWorker(
	natsConnection *nats.Conn,
	subject string,
	stitcher core.Stitcher,
	log *logger.Logger,
) (*NatsWorker, error) {
	return &NatsWorker{
		natsConnection: natsConnection,
		subject:        subject,
		stitcher:       stitcher,
		log:            log,
	}, nil
}

// Run starts the worker and begins listening for messages.
func (w *NatsWorker) Run(ctx context.Context) error {
	sub, err := w.natsConnection.Subscribe(w.subject, w.handleMessage)
	if err != nil {
		return fmt.Errorf("failed to subscribe to subject %s: %w", w.subject, err)
	}

	<-ctx.Done()

	drainErr := sub.Drain()
	if drainErr != nil {
		return fmt.Errorf("failed to drain subscription: %w", drainErr)
	}

	return nil
}

func (w *NatsWorker) handleMessage(msg *nats.Msg) {
	ctx, cancel := context.WithTimeout(context.Background(), handleMessageTimeout)
	defer cancel()

	var event StitchRequestedEvent

	err := json.Unmarshal(msg.Data, &event)
	if err != nil {
		w.log.Error("Failed to unmarshal stitch request: %v", err)

		return
	}

	reply := w.processRequest(ctx, &event)

	err = w.publishReply(msg, reply)
	if err != nil {
		w.log.Error("Failed to publish reply for workflow %s: %v", event.Header.WorkflowID, err)
	}
}

// processRequest runs the pipeline and maps the outcome onto the reply event.
// Validation failures produce a 400, everything else downstream a 500.
func (w *NatsWorker) processRequest(ctx context.Context, event *StitchRequestedEvent) *StitchCompletedEvent {
	req := core.StitchRequest{
		Texts:      event.Texts,
		GapSeconds: core.DefaultGapSeconds,
		VoiceID:    event.VoiceID,
		OutputKey:  event.OutputKey,
	}
	if event.GapSeconds != nil {
		req.GapSeconds = *event.GapSeconds
	}

	result, err := w.stitcher.Stitch(ctx, req)
	if err != nil {
		w.log.Error("Failed to process stitch request for workflow %s: %v", event.Header.WorkflowID, err)

		status := http.StatusInternalServerError
		if errors.Is(err, core.ErrNoTexts) || errors.Is(err, core.ErrNegativeGap) {
			status = http.StatusBadRequest
		}

		return &StitchCompletedEvent{
			Header:     event.Header,
			Status:     status,
			Error:      err.Error(),
			Bucket:     "",
			Key:        "",
			ClipCount:  0,
			GapSeconds: req.GapSeconds,
		}
	}

	return &StitchCompletedEvent{
		Header:     event.Header,
		Status:     http.StatusOK,
		Error:      "",
		Bucket:     result.Bucket,
		Key:        result.Key,
		ClipCount:  result.ClipCount,
		GapSeconds: result.GapSeconds,
	}
}

// publishReply marshals and responds with the StitchCompletedEvent.
func (w *NatsWorker) publishReply(msg *nats.Msg, reply *StitchCompletedEvent) error {
	replyData, err := json.Marshal(reply)
	if err != nil {
		return fmt.Errorf("failed to marshal reply event: %w", err)
	}

	err = msg.Respond(replyData)
	if err != nil {
		return fmt.Errorf("failed to publish reply event: %w", err)
	}

	return nil
}
