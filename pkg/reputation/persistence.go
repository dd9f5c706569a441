package reputation

import (
	"bufio"
	"encoding/json"
	"os"

	"github.com/charmbracelet/log"

	"github.com/hivebrain/synapse-go/pkg/errors"
)

/*
ledgerLine is one persisted attestation plus the creator it counts against.
The file is append-only JSON lines; replaying it through Record rebuilds the
ledger with the replacement invariant intact.
*/
type ledgerLine struct {
	CreatorID   string       `json:"creator_id"`
	Attestation *Attestation `json:"attestation"`
}

/*
LoadFile rebuilds a ledger from an append-only attestation file. A missing
file yields an empty ledger. Lines that no longer verify are skipped, not
fatal.
*/
func LoadFile(path string, opts ...LedgerOption) (*Ledger, error) {
	ledger := NewLedger(opts...)

	file, err := os.Open(path)

	if os.IsNotExist(err) {
		return ledger, nil
	}

	if err != nil {
		return nil, errors.NewError(err)
	}

	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		var line ledgerLine

		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
			log.Warn("skipping unreadable ledger line", "error", err)
			continue
		}

		if err := ledger.Record(line.CreatorID, line.Attestation); err != nil {
			log.Warn("skipping unverifiable attestation", "error", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.NewError(err)
	}

	return ledger, nil
}

/*
AppendFile appends one attestation to the ledger file.
*/
func AppendFile(path, creatorID string, att *Attestation) error {
	data, err := json.Marshal(ledgerLine{CreatorID: creatorID, Attestation: att})

	if err != nil {
		return errors.NewError(err)
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)

	if err != nil {
		return errors.NewError(err)
	}

	defer file.Close()

	_, err = file.Write(append(data, '\n'))
	return err
}
