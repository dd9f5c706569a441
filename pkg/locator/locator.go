package locator

import (
	"encoding/base64"
	"fmt"
	"strings"
)

/*
Locator names and describes a memory shard: a content-addressed topic hash
plus the semantic metadata a consumer needs to decide whether the shard is
compatible (embedding model, dimensionality, tags) and, when signed, the
creator's signature and public key. A Locator is created once by the
publishing agent and never mutated by recipients.
*/
type Locator struct {
	TopicHash   string   `json:"topic_hash"`
	DisplayName string   `json:"display_name"`
	Trackers    []string `json:"trackers,omitempty"`
	ModelID     string   `json:"model_id"`
	Dimensions  int      `json:"dimensions"`
	Tags        []string `json:"tags,omitempty"`

	Signature       []byte `json:"signature,omitempty"`
	SignerPublicKey []byte `json:"signer_public_key,omitempty"`
	SignerID        string `json:"signer_id,omitempty"`

	// Extra holds unknown x.* extension parameters found during decode so
	// they survive a decode/encode round trip through an older node.
	Extra map[string]string `json:"extra,omitempty"`
}

/*
Signed reports whether the locator carries a creator signature.
*/
func (loc *Locator) Signed() bool {
	return len(loc.Signature) > 0
}

/*
SignableBytes returns the canonical byte string covered by the creator
signature: the topic hash, display name, model, dimensions and tags. Trackers
are excluded because they are mutable routing hints, and the signature triple
is excluded because it cannot cover itself.
*/
func (loc *Locator) SignableBytes() []byte {
	return []byte(fmt.Sprintf(
		"%s|%s|%s|%d|%s",
		loc.TopicHash,
		loc.DisplayName,
		loc.ModelID,
		loc.Dimensions,
		strings.Join(loc.Tags, ","),
	))
}

/*
SignatureB64 returns the wire encoding of the signature.
*/
func (loc *Locator) SignatureB64() string {
	return base64.RawURLEncoding.EncodeToString(loc.Signature)
}

/*
SignerPublicKeyB64 returns the wire encoding of the signer public key.
*/
func (loc *Locator) SignerPublicKeyB64() string {
	return base64.RawURLEncoding.EncodeToString(loc.SignerPublicKey)
}
