package errors

import (
	"errors"
	"fmt"
)

/*
SynapseError is the structured error carried by every failure path in the
trust core. Code is stable and machine-readable; Message is for humans;
Data optionally carries structured detail (scan findings, scores) so a
caller can log a rejection without re-running the pipeline.
*/
type SynapseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

/*
Error implements the error interface for SynapseError.
*/
func (e *SynapseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

/*
Is matches on Code so that copies produced by WithMessagef or WithData still
satisfy errors.Is against the sentinel values below.
*/
func (e *SynapseError) Is(target error) bool {
	var other *SynapseError
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// WithMessagef creates a *copy* of a SynapseError with a formatted message.
// It does not modify the original error variable.
func (e *SynapseError) WithMessagef(format string, args ...any) *SynapseError {
	newErr := *e
	newErr.Message = fmt.Sprintf(format, args...)
	return &newErr
}

// WithData creates a *copy* of a SynapseError carrying structured detail.
func (e *SynapseError) WithData(data any) *SynapseError {
	newErr := *e
	newErr.Data = data
	return &newErr
}

// Locator decode errors.
var (
	ErrMissingTopicHash            = &SynapseError{Code: "missing_topic_hash", Message: "xt parameter absent or not a valid digest"}
	ErrDimensionOutOfRange         = &SynapseError{Code: "dimension_out_of_range", Message: "x.dims must be a positive integer"}
	ErrInconsistentSignatureFields = &SynapseError{Code: "inconsistent_signature_fields", Message: "x.sig, x.pubkey and x.agentid must be present together"}
	ErrAgentIdMismatch             = &SynapseError{Code: "agent_id_mismatch", Message: "x.agentid does not match the identifier derived from x.pubkey"}
	ErrBadScheme                   = &SynapseError{Code: "bad_scheme", Message: "not a magnet URI"}
)

// Identity errors.
var (
	ErrUnavailablePrivateKey = &SynapseError{Code: "unavailable_private_key", Message: "identity holds no private key"}
	ErrEntropyExhausted      = &SynapseError{Code: "entropy_exhausted", Message: "secure random source unavailable"}
	ErrUnknownScheme         = &SynapseError{Code: "unknown_scheme", Message: "unknown signature scheme"}
)

// Reputation errors.
var (
	ErrMissingAttestation = &SynapseError{Code: "missing_attestation", Message: "no attestation supplied"}

	ErrBadSignature     = &SynapseError{Code: "bad_signature", Message: "attestation signature does not verify"}
	ErrScoreOutOfRange  = &SynapseError{Code: "score_out_of_range", Message: "attestation score must be within [0,1]"}
	ErrRaterIdMismatch  = &SynapseError{Code: "rater_id_mismatch", Message: "rater agent id does not match bundled public key"}
	ErrMissingRaterKey  = &SynapseError{Code: "missing_rater_key", Message: "attestation carries no rater public key"}
	ErrMissingShardHash = &SynapseError{Code: "missing_shard_hash", Message: "attestation references no shard"}
)

/*
NewError lifts an arbitrary error into a SynapseError so every failure path
carries a stable code. Errors that already are SynapseErrors pass through
unchanged, preserving their code for errors.Is matching upstream.
*/
func NewError(err error) *SynapseError {
	if err == nil {
		return nil
	}

	var synErr *SynapseError
	if errors.As(err, &synErr) {
		return synErr
	}

	return &SynapseError{Code: "internal", Message: err.Error()}
}

// Transport and storage errors.
var (
	ErrPayloadNotFound = &SynapseError{Code: "payload_not_found", Message: "no payload stored for topic hash"}
	ErrHashMismatch    = &SynapseError{Code: "hash_mismatch", Message: "payload bytes do not match the declared topic hash"}
)
