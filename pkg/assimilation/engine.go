package assimilation

import (
	"github.com/charmbracelet/log"

	"github.com/hivebrain/synapse-go/pkg/identity"
	"github.com/hivebrain/synapse-go/pkg/locator"
	"github.com/hivebrain/synapse-go/pkg/reputation"
	"github.com/hivebrain/synapse-go/pkg/scanner"
)

/*
State names where a shard sits in the acceptance pipeline. Accepted and
Rejected are terminal.
*/
type State string

const (
	StateReceived          State = "received"
	StateLocatorValidated  State = "locator_validated"
	StateSignatureVerified State = "signature_verified"
	StateScanPassed        State = "scan_passed"
	StateReputationChecked State = "reputation_checked"
	StateAccepted          State = "accepted"
	StateRejected          State = "rejected"
)

/*
Reason is the machine-readable ground for a rejection.
*/
type Reason string

const (
	ReasonNone                   Reason = ""
	ReasonMalformedLocator       Reason = "malformed_locator"
	ReasonSignatureRequired      Reason = "signature_required"
	ReasonBadSignature           Reason = "bad_signature"
	ReasonSafetyViolation        Reason = "safety_violation"
	ReasonUnknownSigner          Reason = "unknown_signer"
	ReasonInsufficientReputation Reason = "insufficient_reputation"
)

/*
Decision is the terminal outcome of one evaluation. It carries the validated
locator, scan verdict and reputation score so callers can log a rejection or
audit an acceptance without re-running the pipeline.
*/
type Decision struct {
	State   State            `json:"state"`
	Reason  Reason           `json:"reason,omitempty"`
	Detail  string           `json:"detail,omitempty"`
	Policy  string           `json:"policy"`
	Locator *locator.Locator `json:"locator,omitempty"`
	Verdict *scanner.Verdict `json:"verdict,omitempty"`
	Score   float64          `json:"score"`
}

/*
Accepted reports whether the shard may be merged.
*/
func (d Decision) Accepted() bool {
	return d.State == StateAccepted
}

/*
Engine orchestrates acceptance of a shard: locator decode, signature
verification, content scan, then the reputation gate, in that order. Each
input is evaluated exactly once; the engine never retries internally.
Callers who want a second opinion re-evaluate under a relaxed policy.

The engine holds no mutable state of its own, so concurrent Evaluate calls
for distinct shards are safe.
*/
type Engine struct {
	policy  TrustPolicy
	scanner *scanner.Scanner
	ledger  *reputation.Ledger
}

/*
NewEngine builds an engine bound to a policy, a scanner and a ledger.
*/
func NewEngine(policy TrustPolicy, scan *scanner.Scanner, ledger *reputation.Ledger) *Engine {
	return &Engine{
		policy:  policy,
		scanner: scan,
		ledger:  ledger,
	}
}

/*
Evaluate runs the full pipeline over a raw magnet locator and the fetched
payload bytes under the engine's policy.
*/
func (e *Engine) Evaluate(rawLocator string, payload []byte) Decision {
	return e.EvaluateWithPolicy(e.policy, rawLocator, payload)
}

/*
EvaluateWithPolicy runs the pipeline under an explicit policy, leaving the
engine's configured policy untouched.
*/
func (e *Engine) EvaluateWithPolicy(policy TrustPolicy, rawLocator string, payload []byte) Decision {
	decision := Decision{State: StateReceived, Policy: policy.Name}

	// Received → LocatorValidated
	loc, err := locator.Decode(rawLocator)

	if err != nil {
		return e.reject(decision, ReasonMalformedLocator, err.Error())
	}

	decision.State = StateLocatorValidated
	decision.Locator = loc

	// → SignatureVerified
	if loc.Signed() {
		if !identity.Verify(loc.SignerPublicKey, loc.SignableBytes(), loc.Signature) {
			return e.reject(decision, ReasonBadSignature, "signature does not verify over signable fields")
		}
	} else if policy.RequireSignature {
		return e.reject(decision, ReasonSignatureRequired, "policy requires a creator signature")
	}

	decision.State = StateSignatureVerified

	// → ScanPassed
	verdict := e.scanner.Scan(scanMetadata(loc), payload)
	decision.Verdict = &verdict

	if !verdict.Passed {
		return e.reject(decision, ReasonSafetyViolation, "content scan failed")
	}

	decision.State = StateScanPassed

	// → ReputationChecked
	if policy.RequireKnownSigner && !e.ledger.Known(loc.SignerID) {
		return e.reject(decision, ReasonUnknownSigner, "signer has no attestations on record")
	}

	decision.Score = e.ledger.ScoreFor(loc.SignerID)

	if decision.Score < policy.MinQualityScore {
		return e.reject(decision, ReasonInsufficientReputation, "aggregate quality score below policy minimum")
	}

	decision.State = StateAccepted

	log.Info("shard accepted",
		"topic_hash", loc.TopicHash,
		"signer", loc.SignerID,
		"score", decision.Score,
		"policy", policy.Name,
	)

	return decision
}

func (e *Engine) reject(decision Decision, reason Reason, detail string) Decision {
	decision.State = StateRejected
	decision.Reason = reason
	decision.Detail = detail

	topicHash := ""

	if decision.Locator != nil {
		topicHash = decision.Locator.TopicHash
	}

	log.Warn("shard rejected",
		"topic_hash", topicHash,
		"reason", reason,
		"detail", detail,
		"policy", decision.Policy,
	)

	return decision
}

/*
scanMetadata projects the locator's untrusted descriptive fields into the
scanner's input shape.
*/
func scanMetadata(loc *locator.Locator) scanner.Metadata {
	return scanner.Metadata{
		DisplayName: loc.DisplayName,
		Tags:        loc.Tags,
		Dimensions:  loc.Dimensions,
	}
}
