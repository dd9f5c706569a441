package identity

import (
	"github.com/cloudflare/circl/sign"
	"github.com/cloudflare/circl/sign/schemes"

	"github.com/hivebrain/synapse-go/pkg/errors"
)

/*
DefaultAlgorithm is the signature scheme used for freshly generated
identities. ML-DSA-87 is the NIST level 5 ML-DSA parameter set.
*/
const DefaultAlgorithm = "ML-DSA-87"

/*
SchemeFor resolves a signature scheme by its algorithm identifier. Keeping
the scheme behind this lookup means the rest of the core never names a
concrete algorithm, so the scheme can be swapped without touching the
locator codec or the assimilation engine.
*/
func SchemeFor(algorithm string) (sign.Scheme, error) {
	scheme := schemes.ByName(algorithm)

	if scheme == nil {
		return nil, errors.ErrUnknownScheme.WithMessagef(
			"unknown signature scheme: %s", algorithm,
		)
	}

	return scheme, nil
}
