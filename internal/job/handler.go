package job

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-lambda-go/events"

	"fishcast/internal/types"
)

const scheduledEventType = "Scheduled Event"

// Response is the Lambda result of one run.
type Response struct {
	RunID       string            `json:"runId"`
	DataQuality types.DataQuality `json:"dataQuality"`
	NoGo        bool              `json:"noGo"`
}

// Handler is the Lambda entrypoint. It accepts two payloads:
//  1. An EventBridge scheduled event; its time is the evaluation instant.
//  2. A manual RunRequest, for replays of a given instant.
//
// An empty payload runs with defaults.
func (j *Job) Handler(ctx context.Context, payload json.RawMessage) (*Response, error) {
	req, err := ParsePayload(payload)
	if err != nil {
		return nil, err
	}
	doc, err := j.Run(ctx, req)
	if err != nil {
		return nil, err
	}
	return &Response{
		RunID:       doc.Meta.RunID,
		DataQuality: doc.DaySummary.DataQuality,
		NoGo:        doc.NoGo.IsNoGo,
	}, nil
}

// ParsePayload turns a Lambda payload into a RunRequest.
func ParsePayload(payload json.RawMessage) (RunRequest, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return RunRequest{}, nil
	}

	var ev events.CloudWatchEvent
	if err := json.Unmarshal(trimmed, &ev); err == nil && ev.DetailType == scheduledEventType {
		req := RunRequest{EvaluatedAt: ev.Time}
		// Scheduled rules may carry a trace level in their detail.
		var detail RunRequest
		if len(ev.Detail) > 0 && json.Unmarshal(ev.Detail, &detail) == nil {
			req.TraceLevel = detail.TraceLevel
		}
		return req, nil
	}

	var req RunRequest
	if err := json.Unmarshal(trimmed, &req); err != nil {
		return RunRequest{}, fmt.Errorf("job: failed to parse payload as scheduled event or RunRequest: %w", err)
	}
	return req, nil
}
