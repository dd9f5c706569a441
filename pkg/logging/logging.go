package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/hivebrain/synapse-go/pkg/assimilation"
)

/*
AuditLog appends one JSON line per assimilation decision to a file, so
operators can reconstruct why a shard was accepted or rejected without
re-running the pipeline. Safe for concurrent use.
*/
type AuditLog struct {
	mu   sync.Mutex
	file *os.File
}

type auditEntry struct {
	Timestamp string                `json:"timestamp"`
	Decision  assimilation.Decision `json:"decision"`
}

/*
OpenAudit opens (or creates) the audit log at path.
*/
func OpenAudit(path string) (*AuditLog, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)

	if err != nil {
		return nil, fmt.Errorf("failed to open audit log %s: %w", path, err)
	}

	return &AuditLog{file: file}, nil
}

/*
Record appends a decision to the log.
*/
func (a *AuditLog) Record(decision assimilation.Decision) error {
	entry := auditEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Decision:  decision,
	}

	line, err := json.Marshal(entry)

	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	_, err = a.file.Write(append(line, '\n'))
	return err
}

/*
Close closes the underlying file.
*/
func (a *AuditLog) Close() error {
	return a.file.Close()
}
