package reputation

import (
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/hivebrain/synapse-go/pkg/errors"
)

// NeutralScore is returned for creators with no attestations on record.
const NeutralScore = 0.5

// DefaultDecay is the per-day weight decay applied to attestation scores.
const DefaultDecay = 0.9

/*
Ledger stores verified attestations keyed first by creator, then by shard,
then by rater, and computes time-decayed aggregate quality scores on demand.
Attestations are the source of truth; aggregates are views recomputed per
query. A single RWMutex gives record_attestation writers exclusion against
score_for readers, so concurrent submissions never corrupt the
per-(rater, shard) replacement invariant.
*/
type Ledger struct {
	mu sync.RWMutex

	// creator → shard topic hash → rater agent id → latest attestation
	records map[string]map[string]map[string]*Attestation

	decay float64
	clock func() time.Time
}

/*
LedgerOption configures a Ledger.
*/
type LedgerOption func(*Ledger)

/*
WithDecay overrides the per-day decay constant. Must be in (0,1).
*/
func WithDecay(decay float64) LedgerOption {
	return func(l *Ledger) {
		if decay > 0 && decay < 1 {
			l.decay = decay
		}
	}
}

/*
WithClock overrides the time source, for tests that need to age
attestations.
*/
func WithClock(clock func() time.Time) LedgerOption {
	return func(l *Ledger) {
		l.clock = clock
	}
}

/*
NewLedger builds an empty ledger.
*/
func NewLedger(opts ...LedgerOption) *Ledger {
	ledger := &Ledger{
		records: make(map[string]map[string]map[string]*Attestation),
		decay:   DefaultDecay,
		clock:   time.Now,
	}

	for _, opt := range opts {
		opt(ledger)
	}

	return ledger
}

/*
Record verifies and stores an attestation against the shard's creator. The
creator id is resolved by the caller from the shard's locator at submission
time, never from the attestation itself. An attestation failing verification
is discarded, never stored. A prior attestation from the same (rater, shard)
pair is superseded.
*/
func (l *Ledger) Record(creatorID string, att *Attestation) error {
	// A nil attestation can reach here through a ledger file line that
	// carries only a creator id. Reject it like any other bad input.
	if att == nil {
		return errors.ErrMissingAttestation
	}

	if err := att.Verify(); err != nil {
		log.Warn("attestation rejected",
			"creator", creatorID,
			"rater", att.RaterAgentID,
			"error", err,
		)
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	shards, ok := l.records[creatorID]

	if !ok {
		shards = make(map[string]map[string]*Attestation)
		l.records[creatorID] = shards
	}

	raters, ok := shards[att.ShardTopicHash]

	if !ok {
		raters = make(map[string]*Attestation)
		shards[att.ShardTopicHash] = raters
	}

	raters[att.RaterAgentID] = att

	log.Debug("attestation recorded",
		"creator", creatorID,
		"shard", att.ShardTopicHash,
		"rater", att.RaterAgentID,
		"score", att.Score,
	)

	return nil
}

/*
ScoreFor computes the creator's aggregate quality score: a weighted mean of
attestation scores, each weighted by decay^age_days. A creator with no
attestations scores the neutral default rather than erroring. The weighted
mean is monotone: adding a score above the aggregate never lowers it, and
vice versa. Purely local; never blocks on the network.
*/
func (l *Ledger) ScoreFor(agentID string) float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()

	now := l.clock()
	weightedSum, weightTotal := 0.0, 0.0

	for _, raters := range l.records[agentID] {
		for _, att := range raters {
			ageDays := now.Sub(att.Timestamp).Hours() / 24

			if ageDays < 0 {
				ageDays = 0
			}

			weight := math.Pow(l.decay, ageDays)
			weightedSum += att.Score * weight
			weightTotal += weight
		}
	}

	if weightTotal == 0 {
		return NeutralScore
	}

	return weightedSum / weightTotal
}

/*
Known reports whether the creator has at least one attestation on record.
*/
func (l *Ledger) Known(agentID string) bool {
	return l.AttestationCount(agentID) > 0
}

/*
AttestationCount returns how many attestations are held for a creator, after
per-(rater, shard) replacement.
*/
func (l *Ledger) AttestationCount(agentID string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	count := 0

	for _, raters := range l.records[agentID] {
		count += len(raters)
	}

	return count
}

/*
Attestations returns a snapshot of a creator's attestations, for audit and
for syncing to peers by the transport layer.
*/
func (l *Ledger) Attestations(agentID string) []*Attestation {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []*Attestation

	for _, raters := range l.records[agentID] {
		for _, att := range raters {
			out = append(out, att)
		}
	}

	return out
}
