package router

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/templeobijnr/easy-islanders-router/internal/artifact"
	"github.com/templeobijnr/easy-islanders-router/internal/calibration"
	"github.com/templeobijnr/easy-islanders-router/internal/clarify"
	"github.com/templeobijnr/easy-islanders-router/internal/config"
	"github.com/templeobijnr/easy-islanders-router/internal/feature"
	"github.com/templeobijnr/easy-islanders-router/internal/fusion"
	"github.com/templeobijnr/easy-islanders-router/internal/intent"
	"github.com/templeobijnr/easy-islanders-router/internal/safety"
	"github.com/templeobijnr/easy-islanders-router/internal/signal"
	"github.com/templeobijnr/easy-islanders-router/internal/sticky"
	"go.uber.org/zap"
)

// EventSink receives the append-only RouterEvent stream. Appends are
// fire-and-forget: a sink failure never blocks or fails a routing
// response.
type EventSink interface {
	Append(ctx context.Context, ev *intent.RouterEvent) error
}

// Router classifies utterances into service domains.
type Router struct {
	cfg        *config.Config
	extractor  *feature.Extractor
	voter      *signal.RuleVoter
	classifier *signal.Classifier
	snapshots  *artifact.Provider
	safety     *safety.Filter
	sticky     sticky.Store
	clarify    *clarify.Engine
	events     EventSink
	weights    fusion.Weights
	logger     *zap.Logger
	now        func() time.Time
}

// NewRouter wires the classification pipeline. The event sink may be nil,
// in which case no events are emitted.
func NewRouter(
	cfg *config.Config,
	extractor *feature.Extractor,
	safetyFilter *safety.Filter,
	stickyStore sticky.Store,
	snapshots *artifact.Provider,
	events EventSink,
	logger *zap.Logger,
) *Router {
	return &Router{
		cfg:        cfg,
		extractor:  extractor,
		voter:      signal.NewRuleVoter(cfg.Domains),
		classifier: signal.NewClassifier(cfg.Domains, logger),
		snapshots:  snapshots,
		safety:     safetyFilter,
		sticky:     stickyStore,
		clarify:    clarify.NewEngine(),
		events:     events,
		weights: fusion.Weights{
			signal.NameRule:       cfg.WeightRule,
			signal.NameEmbedding:  cfg.WeightEmbedding,
			signal.NameClassifier: cfg.WeightClassifier,
		},
		logger: logger,
		now:    time.Now,
	}
}

// SetClock overrides the time source. Test hook.
func (r *Router) SetClock(now func() time.Time) {
	r.now = now
}

// Route classifies one utterance and returns the routing decision. Only
// invalid input and a missing artifact snapshot surface as errors; every
// provider failure degrades to a best-effort decision instead.
func (r *Router) Route(ctx context.Context, req *intent.Request) (*intent.Response, error) {
	if strings.TrimSpace(req.Utterance) == "" {
		return nil, fmt.Errorf("%w: empty utterance", ErrInvalidInput)
	}
	if len(req.Utterance) > r.cfg.MaxUtteranceBytes {
		return nil, fmt.Errorf("%w: utterance exceeds %d bytes", ErrInvalidInput, r.cfg.MaxUtteranceBytes)
	}

	if req.DeadlineMS > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(req.DeadlineMS)*time.Millisecond)
		defer cancel()
	}

	start := r.now()
	normalized := feature.Normalize(req.Utterance)
	ev := intent.NewEvent(req)

	// Sticky override: a follow-up within the TTL bypasses classification
	// entirely and reuses the last routed domain.
	state := r.freshSticky(ctx, req.ThreadID)
	if state != nil && r.isFollowUp(normalized, req.Hint) {
		return r.finishSticky(ctx, req, ev, state, start), nil
	}

	if blocked, rule := r.safety.Check(normalized, req.Hint); blocked {
		r.logger.Info("utterance blocked by safety filter",
			zap.String("thread_id", req.ThreadID),
			zap.String("rule", rule),
		)
		resp := &intent.Response{
			Action: intent.ActionSafetyBlocked,
			Trace: intent.Trace{
				LatencyMS: r.sinceMS(start),
				Reason:    "safety rule matched",
			},
		}
		r.emit(ev, resp, 0)
		return resp, nil
	}

	snap := r.snapshots.Current()
	if snap == nil {
		return nil, ErrNotReady
	}

	// Signal providers. The embedding fetch is the only suspension point;
	// it runs concurrently with the rule voter.
	bundleCh := make(chan *feature.Bundle, 1)
	go func() {
		bundleCh <- r.extractor.Extract(ctx, normalized, req.Hint)
	}()
	votes := r.voter.Vote(normalized)
	bundle := <-bundleCh

	if ctx.Err() != nil {
		// Deadline exceeded mid-pipeline: answer uncertain rather than
		// fabricating a confident guess under time pressure.
		resp := &intent.Response{
			Action: intent.ActionUncertain,
			Trace: intent.Trace{
				LatencyMS:          r.sinceMS(start),
				CalibrationVersion: snap.Generation,
				Reason:             "timeout",
			},
		}
		r.emit(ev, resp, float64(bundle.EmbedCalls)*r.cfg.EmbedCost)
		return resp, nil
	}

	sims := signal.Similarity(bundle.Embedding, snap, r.cfg.Domains)
	clf := r.classifier.Score(snap, votes, sims, req.Hint, feature.WordCount(normalized))

	raw := fusion.Fuse(r.cfg.Domains, r.weights, votes, sims, clf)
	if raw == nil {
		resp := &intent.Response{
			Action: intent.ActionUncertain,
			Trace: intent.Trace{
				LatencyMS:          r.sinceMS(start),
				CalibrationVersion: snap.Generation,
				Reason:             "no signals available",
			},
		}
		r.emit(ev, resp, float64(bundle.EmbedCalls)*r.cfg.EmbedCost)
		return resp, nil
	}

	calibrated := make(map[string]float64, len(raw))
	for _, d := range r.cfg.Domains {
		calibrated[d] = calibration.Calibrate(raw[d], snap.Calibration[d])
	}

	stickyDomain := req.Hint.PriorDomain
	if state != nil {
		stickyDomain = state.Domain
	}
	best, bestP := r.decide(calibrated, stickyDomain)

	ev.RawScores = raw
	ev.Calibrated = calibrated

	trace := intent.Trace{
		LatencyMS:          r.sinceMS(start),
		SignalsUsed:        fusion.Used(votes, sims, clf),
		CalibrationVersion: snap.Generation,
	}

	var resp *intent.Response
	if bestP >= r.cfg.Threshold {
		// The sticky update happens before the response is returned so a
		// synchronous follow-up observes the refreshed state.
		r.putSticky(ctx, req.ThreadID, best)
		resp = &intent.Response{
			Action:           intent.ActionRouted,
			Domain:           best,
			CalibratedScores: calibrated,
			Trace:            trace,
		}
	} else {
		trace.Reason = "below threshold"
		resp = &intent.Response{
			Action:           intent.ActionUncertain,
			CalibratedScores: calibrated,
			Clarification:    r.clarification(calibrated),
			Trace:            trace,
		}
	}

	r.emit(ev, resp, float64(bundle.EmbedCalls)*r.cfg.EmbedCost)
	return resp, nil
}

// decide picks the highest calibrated domain. Domains within TieEpsilon of
// the maximum are tied; ties prefer the sticky/last-routed domain, then
// the configured priority order. Iteration always follows cfg.Domains, so
// the choice never depends on map order.
func (r *Router) decide(calibrated map[string]float64, stickyDomain string) (string, float64) {
	maxP := 0.0
	for _, d := range r.cfg.Domains {
		if calibrated[d] > maxP {
			maxP = calibrated[d]
		}
	}

	candidates := make([]string, 0, len(r.cfg.Domains))
	for _, d := range r.cfg.Domains {
		if calibrated[d] >= maxP-r.cfg.TieEpsilon {
			candidates = append(candidates, d)
		}
	}

	if len(candidates) > 1 && stickyDomain != "" {
		for _, d := range candidates {
			if d == stickyDomain {
				return d, calibrated[d]
			}
		}
	}

	return candidates[0], calibrated[candidates[0]]
}

// clarification renders the clarify template over the top two candidates.
func (r *Router) clarification(calibrated map[string]float64) string {
	ranked := make([]string, len(r.cfg.Domains))
	copy(ranked, r.cfg.Domains)
	sort.SliceStable(ranked, func(i, j int) bool {
		return calibrated[ranked[i]] > calibrated[ranked[j]]
	})
	if len(ranked) > 2 {
		ranked = ranked[:2]
	}

	text, err := r.clarify.Render(r.cfg.ClarifyTemplate, ranked, calibrated)
	if err != nil {
		r.logger.Warn("failed to render clarification prompt", zap.Error(err))
		return ""
	}
	return text
}

// freshSticky reads the thread's sticky state; store errors degrade to
// "no state".
func (r *Router) freshSticky(ctx context.Context, threadID string) *sticky.State {
	if threadID == "" {
		return nil
	}
	state, err := r.sticky.GetIfFresh(ctx, threadID)
	if err != nil {
		r.logger.Warn("failed to read sticky state",
			zap.String("thread_id", threadID),
			zap.Error(err),
		)
		return nil
	}
	return state
}

func (r *Router) putSticky(ctx context.Context, threadID, domain string) {
	if threadID == "" {
		return
	}
	if err := r.sticky.Put(ctx, threadID, domain, r.now()); err != nil {
		r.logger.Warn("failed to write sticky state",
			zap.String("thread_id", threadID),
			zap.Error(err),
		)
	}
}

// finishSticky produces the sticky_override response and refreshes the TTL.
func (r *Router) finishSticky(ctx context.Context, req *intent.Request, ev *intent.RouterEvent, state *sticky.State, start time.Time) *intent.Response {
	r.putSticky(ctx, req.ThreadID, state.Domain)

	resp := &intent.Response{
		Action: intent.ActionStickyOverride,
		Domain: state.Domain,
		Trace: intent.Trace{
			LatencyMS: r.sinceMS(start),
			Sticky:    true,
			Reason:    "follow-up within sticky ttl, classification bypassed",
		},
	}
	r.emit(ev, resp, 0)
	return resp
}

// emit appends the router event asynchronously. Sink failures are logged
// and dropped; they never affect the routing response.
func (r *Router) emit(ev *intent.RouterEvent, resp *intent.Response, cost float64) {
	if r.events == nil {
		return
	}

	ev.Action = resp.Action
	ev.Domain = resp.Domain
	ev.SignalsUsed = resp.Trace.SignalsUsed
	ev.Sticky = resp.Trace.Sticky
	ev.Generation = resp.Trace.CalibrationVersion
	ev.LatencyMS = resp.Trace.LatencyMS
	ev.CostEstimate = cost

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := r.events.Append(ctx, ev); err != nil {
			r.logger.Warn("failed to append router event",
				zap.String("event_id", ev.ID.String()),
				zap.Error(err),
			)
		}
	}()
}

func (r *Router) sinceMS(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}
