package assimilation

import (
	"strings"

	"github.com/hivebrain/synapse-go/pkg/errors"
)

/*
TrustPolicy gates acceptance of a shard: whether a creator signature is
mandatory, whether the signer must already have a reputation on record, and
the minimum aggregate quality score. Policies are immutable values handed to
the engine at construction, so concurrent evaluations under different
policies cannot interfere.
*/
type TrustPolicy struct {
	Name               string  `json:"name"`
	RequireSignature   bool    `json:"require_signature"`
	RequireKnownSigner bool    `json:"require_known_signer"`
	MinQualityScore    float64 `json:"min_quality_score"`
}

// The four named tiers.
var (
	Paranoid = TrustPolicy{Name: "paranoid", RequireSignature: true, RequireKnownSigner: true, MinQualityScore: 0.7}
	Strict   = TrustPolicy{Name: "strict", RequireSignature: true, RequireKnownSigner: false, MinQualityScore: 0.6}
	Balanced = TrustPolicy{Name: "balanced", RequireSignature: false, RequireKnownSigner: false, MinQualityScore: 0.5}
	Open     = TrustPolicy{Name: "open", RequireSignature: false, RequireKnownSigner: false, MinQualityScore: 0.0}
)

var ErrUnknownPolicy = &errors.SynapseError{Code: "unknown_policy", Message: "unknown trust policy tier"}

/*
PolicyByName resolves one of the four tiers from configuration text.
*/
func PolicyByName(name string) (TrustPolicy, error) {
	switch strings.ToLower(name) {
	case "paranoid":
		return Paranoid, nil
	case "strict":
		return Strict, nil
	case "balanced":
		return Balanced, nil
	case "open":
		return Open, nil
	default:
		return TrustPolicy{}, ErrUnknownPolicy.WithMessagef("unknown trust policy %q", name)
	}
}
