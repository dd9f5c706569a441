package identity

import (
	"crypto/sha256"
	"encoding/base32"
	"strings"

	"github.com/cloudflare/circl/sign"

	"github.com/hivebrain/synapse-go/pkg/errors"
)

// agentIDBytes is how much of the public key digest feeds the agent id.
// 10 bytes of SHA-256 render to 16 base32 characters.
const agentIDBytes = 10

var agentIDEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

/*
Identity is a local agent's cryptographic persona: a post-quantum key pair
plus the short printable identifier derived from the public key. An Identity
loaded from only a public key is a verification-only stub and cannot sign.
*/
type Identity struct {
	AgentID   string
	Algorithm string

	scheme  sign.Scheme
	public  sign.PublicKey
	private sign.PrivateKey
}

/*
Generate produces a fresh key pair under the default algorithm. It fails
only when the secure random source is unavailable, which is fatal to the
caller.
*/
func Generate() (*Identity, error) {
	return GenerateWithAlgorithm(DefaultAlgorithm)
}

/*
GenerateWithAlgorithm produces a fresh key pair under the named scheme.
*/
func GenerateWithAlgorithm(algorithm string) (*Identity, error) {
	scheme, err := SchemeFor(algorithm)

	if err != nil {
		return nil, err
	}

	public, private, err := scheme.GenerateKey()

	if err != nil {
		return nil, errors.ErrEntropyExhausted.WithMessagef(
			"key generation failed: %v", err,
		)
	}

	raw, err := public.MarshalBinary()

	if err != nil {
		return nil, errors.NewError(err)
	}

	return &Identity{
		AgentID:   DeriveAgentID(raw),
		Algorithm: algorithm,
		scheme:    scheme,
		public:    public,
		private:   private,
	}, nil
}

/*
FromPublicKey builds a verification-only Identity from raw public key bytes.
*/
func FromPublicKey(algorithm string, raw []byte) (*Identity, error) {
	scheme, err := SchemeFor(algorithm)

	if err != nil {
		return nil, err
	}

	public, err := scheme.UnmarshalBinaryPublicKey(raw)

	if err != nil {
		return nil, errors.NewError(err)
	}

	return &Identity{
		AgentID:   DeriveAgentID(raw),
		Algorithm: algorithm,
		scheme:    scheme,
		public:    public,
	}, nil
}

/*
DeriveAgentID computes the stable short identifier for a public key: the
first 10 bytes of its SHA-256 digest, base32 encoded without padding and
lowercased. The same key always yields the same 16-character id.
*/
func DeriveAgentID(publicKey []byte) string {
	digest := sha256.Sum256(publicKey)
	return strings.ToLower(agentIDEncoding.EncodeToString(digest[:agentIDBytes]))
}

/*
Sign signs a message with the identity's private key. A public-only stub
returns ErrUnavailablePrivateKey.
*/
func (id *Identity) Sign(message []byte) ([]byte, error) {
	if id.private == nil {
		return nil, errors.ErrUnavailablePrivateKey
	}

	return id.scheme.Sign(id.private, message, nil), nil
}

/*
Verify checks a signature made by this identity's key over message.
*/
func (id *Identity) Verify(message, signature []byte) bool {
	return verify(id.scheme, id.public, message, signature)
}

/*
PublicKeyBytes returns the raw encoding of the public key.
*/
func (id *Identity) PublicKeyBytes() []byte {
	raw, err := id.public.MarshalBinary()

	if err != nil {
		return nil
	}

	return raw
}

/*
CanSign reports whether the identity holds private key material.
*/
func (id *Identity) CanSign() bool {
	return id.private != nil
}

/*
Verify checks signature over message against raw public key bytes under the
default algorithm. Malformed keys or signatures are a verification failure,
never a panic: this is the boundary where untrusted bytes from the network
meet the crypto layer.
*/
func Verify(publicKey, message, signature []byte) bool {
	return VerifyWithAlgorithm(DefaultAlgorithm, publicKey, message, signature)
}

/*
VerifyWithAlgorithm is Verify under an explicit scheme identifier.
*/
func VerifyWithAlgorithm(algorithm string, publicKey, message, signature []byte) bool {
	scheme, err := SchemeFor(algorithm)

	if err != nil {
		return false
	}

	public, err := scheme.UnmarshalBinaryPublicKey(publicKey)

	if err != nil {
		return false
	}

	return verify(scheme, public, message, signature)
}

func verify(scheme sign.Scheme, public sign.PublicKey, message, signature []byte) (ok bool) {
	// Truncated or oversized signatures must fail verification, not crash
	// the pipeline.
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	return scheme.Verify(public, message, signature, nil)
}
