package node

import (
	"context"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/hivebrain/synapse-go/pkg/errors"
	"github.com/hivebrain/synapse-go/pkg/locator"
	"github.com/hivebrain/synapse-go/pkg/shard"
	"github.com/hivebrain/synapse-go/pkg/transport"
)

// Session statuses.
const (
	StatusSeeding     = "seeding"
	StatusDownloading = "downloading"
	StatusError       = "error"
)

/*
Session tracks one announce (seed) or request (download) of a shard.
*/
type Session struct {
	ID          string     `json:"id"`
	TopicHash   string     `json:"topic_hash"`
	DisplayName string     `json:"display_name"`
	TotalSize   int64      `json:"total_size"`
	Downloaded  int64      `json:"downloaded"`
	Uploaded    int64      `json:"uploaded"`
	Status      string     `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
}

/*
Progress is the session's completion percentage.
*/
func (s *Session) Progress() float64 {
	if s.TotalSize == 0 {
		return 0
	}

	return float64(s.Downloaded) / float64(s.TotalSize) * 100
}

/*
Node is the local peer: it announces shards, requests them through the
supplied transport collaborator, verifies payload integrity against the
locator's topic hash, and keeps per-session transfer statistics. The transport
itself (peer discovery, chunked transfer, timeouts) lives behind the
Fetcher/Publisher interfaces.
*/
type Node struct {
	ID       string
	trackers []string

	mu sync.RWMutex

	// keyed by session id, so concurrent transfers of one shard coexist
	sessions map[string]*Session

	fetcher   transport.Fetcher
	publisher transport.Publisher
}

/*
New builds a node around a transport collaborator.
*/
func New(fetcher transport.Fetcher, publisher transport.Publisher, trackers []string) *Node {
	id := "SYNAPSE-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:16])

	log.Info("node initialized", "node_id", id, "trackers", len(trackers))

	return &Node{
		ID:        id,
		trackers:  trackers,
		sessions:  make(map[string]*Session),
		fetcher:   fetcher,
		publisher: publisher,
	}
}

/*
AnnounceShard publishes a shard's payload through the transport collaborator
and begins a seeding session, returning the locator to distribute.
*/
func (n *Node) AnnounceShard(ctx context.Context, s *shard.MemoryShard, payload []byte) (*locator.Locator, error) {
	loc := s.Locator(n.trackers)

	if err := n.publisher.Publish(ctx, loc, payload); err != nil {
		return nil, err
	}

	size := int64(len(payload))

	session := &Session{
		ID:          uuid.NewString(),
		TopicHash:   loc.TopicHash,
		DisplayName: loc.DisplayName,
		TotalSize:   size,
		Downloaded:  size,
		Status:      StatusSeeding,
		StartedAt:   time.Now().UTC(),
	}

	n.mu.Lock()
	n.sessions[session.ID] = session
	n.mu.Unlock()

	log.Info("shard announced", "display_name", loc.DisplayName, "topic_hash", loc.TopicHash)
	return loc, nil
}

/*
RequestShard fetches a shard's payload through the transport collaborator
and verifies it against the locator's topic hash before returning it. A
mismatch is surfaced, never silently accepted. Each request gets its own
session, so a download never clobbers an existing seeding session for the
same topic hash.
*/
func (n *Node) RequestShard(ctx context.Context, loc *locator.Locator) ([]byte, error) {
	session := &Session{
		ID:          uuid.NewString(),
		TopicHash:   loc.TopicHash,
		DisplayName: loc.DisplayName,
		Status:      StatusDownloading,
		StartedAt:   time.Now().UTC(),
	}

	n.mu.Lock()
	n.sessions[session.ID] = session
	n.mu.Unlock()

	payload, err := n.fetcher.Fetch(ctx, loc)

	if err != nil {
		n.failSession(session, err)
		return nil, err
	}

	if !VerifyIntegrity(payload, loc.TopicHash) {
		err := errors.ErrHashMismatch.WithMessagef(
			"payload does not hash to %s", loc.TopicHash,
		)
		n.failSession(session, err)
		return nil, err
	}

	now := time.Now().UTC()

	n.mu.Lock()
	session.TotalSize = int64(len(payload))
	session.Downloaded = session.TotalSize
	session.Status = StatusSeeding
	session.CompletedAt = &now
	n.mu.Unlock()

	log.Info("shard fetched", "display_name", loc.DisplayName, "bytes", len(payload))
	return payload, nil
}

func (n *Node) failSession(session *Session, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	session.Status = StatusError
	session.Error = err.Error()
}

/*
Sessions returns a snapshot of all sessions.
*/
func (n *Node) Sessions() []Session {
	n.mu.RLock()
	defer n.mu.RUnlock()

	out := make([]Session, 0, len(n.sessions))

	for _, session := range n.sessions {
		out = append(out, *session)
	}

	return out
}

/*
Seeds returns a snapshot of only the seeding sessions.
*/
func (n *Node) Seeds() []Session {
	var out []Session

	for _, session := range n.Sessions() {
		if session.Status == StatusSeeding {
			out = append(out, session)
		}
	}

	return out
}

/*
VerifyIntegrity checks payload bytes against a topic hash, selecting the
digest by hash width: 40 hex chars is SHA-1 (legacy magnet compatibility),
64 is SHA-256.
*/
func VerifyIntegrity(payload []byte, expectedHash string) bool {
	var computed string

	switch len(expectedHash) {
	case 40:
		digest := sha1.Sum(payload)
		computed = hex.EncodeToString(digest[:])
	case 64:
		digest := sha256.Sum256(payload)
		computed = hex.EncodeToString(digest[:])
	default:
		return false
	}

	return computed == expectedHash
}
