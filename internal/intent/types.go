package intent

import (
	"time"

	"github.com/google/uuid"
)

// Action is the terminal outcome of a classification request.
type Action string

const (
	// ActionRouted means a domain cleared the confidence threshold.
	ActionRouted Action = "routed"

	// ActionUncertain means no domain was confident enough; the caller
	// should ask for clarification instead of guessing.
	ActionUncertain Action = "uncertain"

	// ActionStickyOverride means classification was bypassed for a
	// follow-up utterance and the previous domain was reused.
	ActionStickyOverride Action = "sticky_override"

	// ActionSafetyBlocked means the safety filter rejected the utterance
	// before any domain scoring.
	ActionSafetyBlocked Action = "safety_blocked"
)

// ContextHint carries conversational context supplied by the caller.
type ContextHint struct {
	PriorDomain string `json:"prior_domain,omitempty"`
	Locale      string `json:"locale,omitempty"`
	GeoRegion   string `json:"geo_region,omitempty"`
	TurnIndex   int    `json:"turn_index,omitempty"`
}

// Request is one inbound classification request.
type Request struct {
	Utterance  string      `json:"utterance"`
	ThreadID   string      `json:"thread_id"`
	Hint       ContextHint `json:"context_hint"`
	DeadlineMS int         `json:"deadline_ms,omitempty"`
}

// Trace carries diagnostic metadata for one routing decision.
type Trace struct {
	LatencyMS          float64  `json:"latency_ms"`
	SignalsUsed        []string `json:"signals_used"`
	Sticky             bool     `json:"sticky"`
	CalibrationVersion string   `json:"calibration_version"`
	Reason             string   `json:"reason,omitempty"`
}

// Response is the outbound routing decision.
type Response struct {
	Action           Action             `json:"action"`
	Domain           string             `json:"domain,omitempty"`
	CalibratedScores map[string]float64 `json:"calibrated_scores,omitempty"`
	Clarification    string             `json:"clarification,omitempty"`
	Trace            Trace              `json:"trace"`
}

// RouterEvent is the append-only record of one classification request,
// written to the event sink for offline evaluation and retraining.
// Events are never mutated after creation.
type RouterEvent struct {
	ID           uuid.UUID          `json:"id"`
	ThreadID     string             `json:"thread_id"`
	Utterance    string             `json:"utterance"`
	Hint         ContextHint        `json:"context_hint"`
	RawScores    map[string]float64 `json:"raw_scores,omitempty"`
	Calibrated   map[string]float64 `json:"calibrated,omitempty"`
	Action       Action             `json:"action"`
	Domain       string             `json:"domain,omitempty"`
	SignalsUsed  []string           `json:"signals_used,omitempty"`
	Sticky       bool               `json:"sticky"`
	Generation   string             `json:"generation,omitempty"`
	LatencyMS    float64            `json:"latency_ms"`
	CostEstimate float64            `json:"cost_estimate"`
	CreatedAt    time.Time          `json:"created_at"`
}

// NewEvent creates a RouterEvent for a request with a fresh id.
func NewEvent(req *Request) *RouterEvent {
	return &RouterEvent{
		ID:        uuid.New(),
		ThreadID:  req.ThreadID,
		Utterance: req.Utterance,
		Hint:      req.Hint,
		CreatedAt: time.Now().UTC(),
	}
}
