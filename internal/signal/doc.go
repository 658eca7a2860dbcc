// Package signal implements the router's three signal providers.
//
// The provider set is closed:
//   - RuleVoter: deterministic keyword/phrase matching with location alias
//     collapsing. Zero external calls, defined as never-failing.
//   - Similarity: cosine similarity between the utterance embedding and
//     per-domain centroids from the active snapshot.
//   - Classifier: a small logistic model over a fixed feature vector built
//     from the rule votes, similarities and context features.
//
// Each provider reports either a per-domain score vector or the explicit
// absent state. Absent is how a degraded provider (embedding outage,
// missing artifact) drops out of fusion without failing the request.
package signal
