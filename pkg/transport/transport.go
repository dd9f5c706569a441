package transport

// The trust core never manages sockets. Fetcher and Publisher are the
// boundary to whatever moves shard bytes around (a swarm client, an object
// store, a directory shared over NFS); the core only consumes the bytes.
// LocalStore is the built-in implementation used for single-host setups and
// tests.

import (
	"context"
	"os"
	"path/filepath"

	"github.com/hivebrain/synapse-go/pkg/errors"
	"github.com/hivebrain/synapse-go/pkg/locator"
)

type Fetcher interface {
	Fetch(ctx context.Context, loc *locator.Locator) ([]byte, error)
}

type Publisher interface {
	Publish(ctx context.Context, loc *locator.Locator, payload []byte) error
}

/*
LocalStore keeps shard payloads in a directory, one file per topic hash.
*/
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.NewError(err)
	}

	return &LocalStore{dir: dir}, nil
}

func (store *LocalStore) Fetch(ctx context.Context, loc *locator.Locator) ([]byte, error) {
	data, err := os.ReadFile(store.path(loc.TopicHash))

	if os.IsNotExist(err) {
		return nil, errors.ErrPayloadNotFound.WithMessagef(
			"no payload for %s", loc.TopicHash,
		)
	}

	if err != nil {
		return nil, errors.NewError(err)
	}

	return data, nil
}

func (store *LocalStore) Publish(ctx context.Context, loc *locator.Locator, payload []byte) error {
	return os.WriteFile(store.path(loc.TopicHash), payload, 0o644)
}

func (store *LocalStore) path(topicHash string) string {
	return filepath.Join(store.dir, topicHash)
}
