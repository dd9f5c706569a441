package s3

import (
	"bytes"
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/minio/minio-go/v7"

	"github.com/hivebrain/synapse-go/pkg/errors"
	"github.com/hivebrain/synapse-go/pkg/locator"
)

/*
Store keeps shard payloads in object storage keyed by topic hash. It
implements the transport Fetcher and Publisher interfaces, so a node can
seed from or archive to a bucket instead of the local filesystem.
*/
type Store struct {
	conn *Conn
}

/*
NewStore wraps a connection in the payload store.
*/
func NewStore(conn *Conn) *Store {
	return &Store{conn: conn}
}

/*
Fetch retrieves a shard payload by its locator's topic hash.
*/
func (store *Store) Fetch(ctx context.Context, loc *locator.Locator) ([]byte, error) {
	object, err := store.conn.client.GetObject(
		ctx, store.conn.bucket, loc.TopicHash, minio.GetObjectOptions{},
	)

	if err != nil {
		log.Error("failed to get payload", "topic_hash", loc.TopicHash, "error", err)
		return nil, errors.ErrPayloadNotFound.WithMessagef(
			"no payload for %s: %v", loc.TopicHash, err,
		)
	}

	defer object.Close()

	payload, err := io.ReadAll(object)

	if err != nil {
		return nil, errors.ErrPayloadNotFound.WithMessagef(
			"read payload %s: %v", loc.TopicHash, err,
		)
	}

	return payload, nil
}

/*
Publish uploads a shard payload keyed by its topic hash.
*/
func (store *Store) Publish(ctx context.Context, loc *locator.Locator, payload []byte) error {
	_, err := store.conn.client.PutObject(
		ctx,
		store.conn.bucket,
		loc.TopicHash,
		bytes.NewReader(payload),
		int64(len(payload)),
		minio.PutObjectOptions{ContentType: "application/octet-stream"},
	)

	if err != nil {
		log.Error("failed to put payload", "topic_hash", loc.TopicHash, "error", err)
		return errors.NewError(err)
	}

	log.Debug("payload stored", "topic_hash", loc.TopicHash, "bytes", len(payload))
	return nil
}
