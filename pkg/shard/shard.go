package shard

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/hivebrain/synapse-go/pkg/errors"
	"github.com/hivebrain/synapse-go/pkg/identity"
	"github.com/hivebrain/synapse-go/pkg/locator"
)

const metadataSuffix = ".meta.json"

/*
MemoryShard is a local, publishable unit of agent memory: a vector database
file plus the descriptive metadata other agents need to evaluate it. The
payload hash is computed once at creation and is the shard's identity on the
network.
*/
type MemoryShard struct {
	FilePath       string   `json:"file_path"`
	DisplayName    string   `json:"display_name"`
	EmbeddingModel string   `json:"embedding_model"`
	Dimensions     int      `json:"dimension_size"`
	EntryCount     int      `json:"entry_count"`
	Tags           []string `json:"tags,omitempty"`
	PayloadHash    string   `json:"payload_hash"`

	CreatorAgentID   string `json:"creator_agent_id,omitempty"`
	CreatorPublicKey []byte `json:"creator_public_key,omitempty"`
	Signature        []byte `json:"signature,omitempty"`
}

/*
CreateFromFile builds a shard from a vector database file, computing its
SHA-256 topic hash from the file bytes.
*/
func CreateFromFile(path, model string, dims, count int, tags []string, displayName string) (*MemoryShard, error) {
	data, err := os.ReadFile(path)

	if err != nil {
		return nil, errors.NewError(err)
	}

	if displayName == "" {
		displayName = filepath.Base(path)
	}

	digest := sha256.Sum256(data)

	shard := &MemoryShard{
		FilePath:       path,
		DisplayName:    displayName,
		EmbeddingModel: model,
		Dimensions:     dims,
		EntryCount:     count,
		Tags:           tags,
		PayloadHash:    hex.EncodeToString(digest[:]),
	}

	log.Info("shard created",
		"display_name", shard.DisplayName,
		"topic_hash", shard.PayloadHash,
		"entries", count,
	)

	return shard, nil
}

/*
Sign binds the shard to its creator: the signature covers the same signable
fields a recipient reconstructs from the shard's locator.
*/
func (s *MemoryShard) Sign(id *identity.Identity) error {
	signature, err := id.Sign(s.Locator(nil).SignableBytes())

	if err != nil {
		return err
	}

	s.Signature = signature
	s.CreatorPublicKey = id.PublicKeyBytes()
	s.CreatorAgentID = id.AgentID
	return nil
}

/*
Locator projects the shard into its wire descriptor with the given announce
trackers.
*/
func (s *MemoryShard) Locator(trackers []string) *locator.Locator {
	return &locator.Locator{
		TopicHash:       s.PayloadHash,
		DisplayName:     s.DisplayName,
		Trackers:        trackers,
		ModelID:         s.EmbeddingModel,
		Dimensions:      s.Dimensions,
		Tags:            s.Tags,
		Signature:       s.Signature,
		SignerPublicKey: s.CreatorPublicKey,
		SignerID:        s.CreatorAgentID,
	}
}

/*
SaveMetadata writes the shard's sidecar metadata file next to the payload
and returns its path.
*/
func (s *MemoryShard) SaveMetadata() (string, error) {
	data, err := json.MarshalIndent(s, "", "  ")

	if err != nil {
		return "", errors.NewError(err)
	}

	path := s.FilePath + metadataSuffix

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.NewError(err)
	}

	return path, nil
}

/*
LoadMetadata reads a shard from its sidecar metadata file.
*/
func LoadMetadata(path string) (*MemoryShard, error) {
	data, err := os.ReadFile(path)

	if err != nil {
		return nil, errors.NewError(err)
	}

	shard := &MemoryShard{}

	if err := json.Unmarshal(data, shard); err != nil {
		return nil, errors.NewError(err)
	}

	return shard, nil
}

/*
MetadataPath returns the sidecar path for a shard payload path.
*/
func MetadataPath(payloadPath string) string {
	return payloadPath + metadataSuffix
}
