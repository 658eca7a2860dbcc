// Package router implements the intent classification pipeline.
//
// Control flow per request:
//
//	sticky override check -> safety filter -> feature extraction ->
//	signal providers -> score fusion -> calibration -> decision policy
//
// A follow-up utterance with non-expired sticky state short-circuits the
// whole pipeline and reuses the previous turn's domain. Otherwise the three
// signal providers (rule voter, embedding similarity, linear classifier)
// score every domain, fusion combines the available signals, Platt
// calibration maps the fused score to a probability, and the decision
// policy routes when the best domain clears the governance threshold:
//
//	resp, err := r.Route(ctx, &intent.Request{
//	    Utterance: "2 bedroom flat in girne",
//	    ThreadID:  "thread-7",
//	})
//	// resp.Action == intent.ActionRouted, resp.Domain == "real_estate"
//
// Provider failures degrade the affected signal to absent and never fail
// the request; only invalid input and a missing artifact snapshot surface
// as errors.
package router
