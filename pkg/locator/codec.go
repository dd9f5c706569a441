package locator

import (
	"encoding/base64"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/cohesivestack/valgo"

	"github.com/hivebrain/synapse-go/pkg/errors"
	"github.com/hivebrain/synapse-go/pkg/identity"
)

const (
	scheme    = "magnet:?"
	urnPrefix = "urn:btih:"
)

// Topic hashes are lowercase hex at sha1 or sha256 width.
var topicHashPattern = regexp.MustCompile(`^([0-9a-f]{40}|[0-9a-f]{64})$`)

/*
Encode serializes a Locator into its canonical magnet URI. The parameter
order is fixed (xt, dn, tr*, x.model, x.dims, x.tags, x.sig, x.pubkey,
x.agentid, then preserved extensions in key order) so independently built
nodes produce byte-identical encodings for the same Locator. Signature
parameters are omitted entirely when unsigned. Extensions preserved by
Decode are re-emitted, so relaying a locator through this node is lossless.
*/
func Encode(loc *Locator) string {
	builder := &strings.Builder{}

	// The xt urn is not free text; it stays unescaped like any other
	// magnet implementation emits it.
	builder.WriteString(scheme)
	builder.WriteString("xt=")
	builder.WriteString(urnPrefix)
	builder.WriteString(loc.TopicHash)
	builder.WriteString("&dn=")
	builder.WriteString(url.QueryEscape(loc.DisplayName))

	for _, tracker := range loc.Trackers {
		builder.WriteString("&tr=")
		builder.WriteString(url.QueryEscape(tracker))
	}

	builder.WriteString("&x.model=")
	builder.WriteString(url.QueryEscape(loc.ModelID))
	builder.WriteString("&x.dims=")
	builder.WriteString(strconv.Itoa(loc.Dimensions))
	builder.WriteString("&x.tags=")
	builder.WriteString(url.QueryEscape(strings.Join(loc.Tags, ",")))

	if loc.Signed() {
		builder.WriteString("&x.sig=")
		builder.WriteString(loc.SignatureB64())
		builder.WriteString("&x.pubkey=")
		builder.WriteString(loc.SignerPublicKeyB64())
		builder.WriteString("&x.agentid=")
		builder.WriteString(url.QueryEscape(loc.SignerID))
	}

	extraKeys := make([]string, 0, len(loc.Extra))

	for key := range loc.Extra {
		extraKeys = append(extraKeys, key)
	}

	sort.Strings(extraKeys)

	for _, key := range extraKeys {
		builder.WriteString("&")
		builder.WriteString(key)
		builder.WriteString("=")
		builder.WriteString(url.QueryEscape(loc.Extra[key]))
	}

	return builder.String()
}

/*
Decode parses a canonical magnet URI back into a Locator. It is a pure,
total function over its input: every malformed input maps to a structured
decode error, never a panic. Unknown extension parameters are preserved in
the Locator's Extra map for forward compatibility.
*/
func Decode(text string) (*Locator, error) {
	query, found := strings.CutPrefix(text, scheme)

	if !found {
		return nil, errors.ErrBadScheme.WithMessagef(
			"locator must start with %q", scheme,
		)
	}

	loc := &Locator{}
	var sigB64, pubkeyB64, agentID string
	haveSig, havePubkey, haveAgentID := false, false, false

	for _, pair := range strings.Split(query, "&") {
		if pair == "" {
			continue
		}

		key, rawValue, _ := strings.Cut(pair, "=")
		value, err := url.QueryUnescape(rawValue)

		if err != nil {
			// Undecodable percent escapes: keep the raw text so nothing
			// is silently dropped.
			value = rawValue
		}

		switch key {
		case "xt":
			loc.TopicHash = strings.TrimPrefix(value, urnPrefix)
		case "dn":
			loc.DisplayName = value
		case "tr":
			loc.Trackers = append(loc.Trackers, value)
		case "x.model":
			loc.ModelID = value
		case "x.dims":
			dims, err := strconv.Atoi(value)

			if err != nil {
				return nil, errors.ErrDimensionOutOfRange.WithMessagef(
					"x.dims is not numeric: %q", value,
				)
			}

			loc.Dimensions = dims
		case "x.tags":
			for _, tag := range strings.Split(value, ",") {
				if tag != "" {
					loc.Tags = append(loc.Tags, tag)
				}
			}
		case "x.sig":
			sigB64, haveSig = value, true
		case "x.pubkey":
			pubkeyB64, havePubkey = value, true
		case "x.agentid":
			agentID, haveAgentID = value, true
		default:
			if loc.Extra == nil {
				loc.Extra = map[string]string{}
			}
			loc.Extra[key] = value
		}
	}

	if err := validate(loc); err != nil {
		return nil, err
	}

	if !haveSig && !havePubkey && !haveAgentID {
		return loc, nil
	}

	if !haveSig || !havePubkey || !haveAgentID {
		return nil, errors.ErrInconsistentSignatureFields
	}

	signature, err := base64.RawURLEncoding.DecodeString(sigB64)

	if err != nil || len(signature) == 0 {
		return nil, errors.ErrInconsistentSignatureFields.WithMessagef(
			"x.sig is not valid base64url",
		)
	}

	publicKey, err := base64.RawURLEncoding.DecodeString(pubkeyB64)

	if err != nil || len(publicKey) == 0 {
		return nil, errors.ErrInconsistentSignatureFields.WithMessagef(
			"x.pubkey is not valid base64url",
		)
	}

	if derived := identity.DeriveAgentID(publicKey); derived != agentID {
		return nil, errors.ErrAgentIdMismatch.WithMessagef(
			"x.agentid %q, derived %q", agentID, derived,
		)
	}

	loc.Signature = signature
	loc.SignerPublicKey = publicKey
	loc.SignerID = agentID

	return loc, nil
}

/*
validate applies the structural rules every decoded locator must satisfy.
*/
func validate(loc *Locator) error {
	if val := valgo.Is(
		valgo.String(loc.TopicHash, "xt").Not().Blank().MatchingTo(topicHashPattern),
	); !val.Valid() {
		return errors.ErrMissingTopicHash.WithMessagef(
			"xt is %q, want urn:btih: with a 40- or 64-char lowercase hex digest",
			loc.TopicHash,
		)
	}

	if val := valgo.Is(
		valgo.Number(loc.Dimensions, "x.dims").GreaterThan(0),
	); !val.Valid() {
		return errors.ErrDimensionOutOfRange.WithMessagef(
			"x.dims is %d, want a positive integer", loc.Dimensions,
		)
	}

	return nil
}
