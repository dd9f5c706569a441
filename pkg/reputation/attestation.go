package reputation

import (
	"fmt"
	"time"

	"github.com/hivebrain/synapse-go/pkg/errors"
	"github.com/hivebrain/synapse-go/pkg/identity"
)

/*
Attestation is a signed quality rating of a shard, produced by a consuming
agent after use. The rater's public key travels with the attestation so any
node can verify it without a key lookup service. Attestations are never
mutated; a newer one from the same rater for the same shard supersedes the
older in the ledger.
*/
type Attestation struct {
	ShardTopicHash string    `json:"shard_topic_hash"`
	RaterAgentID   string    `json:"rater_agent_id"`
	Score          float64   `json:"score"`
	Timestamp      time.Time `json:"timestamp"`
	Signature      []byte    `json:"signature"`
	RaterPublicKey []byte    `json:"rater_public_key"`
	Comment        string    `json:"comment,omitempty"`
}

/*
SignableBytes is the canonical byte string covered by the attestation
signature. The comment is untrusted free text and deliberately excluded.
*/
func (att *Attestation) SignableBytes() []byte {
	return []byte(fmt.Sprintf(
		"%s|%s|%.4f|%d",
		att.ShardTopicHash,
		att.RaterAgentID,
		att.Score,
		att.Timestamp.Unix(),
	))
}

/*
NewAttestation builds and signs an attestation with the local identity.
*/
func NewAttestation(id *identity.Identity, shardTopicHash string, score float64, comment string) (*Attestation, error) {
	if shardTopicHash == "" {
		return nil, errors.ErrMissingShardHash
	}

	if score < 0 || score > 1 {
		return nil, errors.ErrScoreOutOfRange.WithMessagef("score %.4f outside [0,1]", score)
	}

	att := &Attestation{
		ShardTopicHash: shardTopicHash,
		RaterAgentID:   id.AgentID,
		Score:          score,
		Timestamp:      time.Now().UTC().Truncate(time.Second),
		RaterPublicKey: id.PublicKeyBytes(),
		Comment:        comment,
	}

	signature, err := id.Sign(att.SignableBytes())

	if err != nil {
		return nil, err
	}

	att.Signature = signature
	return att, nil
}

/*
Verify checks the attestation's internal consistency: the rater id must
derive from the bundled public key and the signature must verify over the
signable fields.
*/
func (att *Attestation) Verify() error {
	if att.ShardTopicHash == "" {
		return errors.ErrMissingShardHash
	}

	if att.Score < 0 || att.Score > 1 {
		return errors.ErrScoreOutOfRange.WithMessagef("score %.4f outside [0,1]", att.Score)
	}

	if len(att.RaterPublicKey) == 0 {
		return errors.ErrMissingRaterKey
	}

	if derived := identity.DeriveAgentID(att.RaterPublicKey); derived != att.RaterAgentID {
		return errors.ErrRaterIdMismatch.WithMessagef(
			"rater id %q, derived %q", att.RaterAgentID, derived,
		)
	}

	if !identity.Verify(att.RaterPublicKey, att.SignableBytes(), att.Signature) {
		return errors.ErrBadSignature
	}

	return nil
}
