package reputation

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/hivebrain/synapse-go/pkg/identity"
)

func TestLoadFile(t *testing.T) {
	Convey("Given no ledger file", t, func() {
		path := filepath.Join(t.TempDir(), "attestations.jsonl")

		Convey("Then loading yields an empty ledger", func() {
			ledger, err := LoadFile(path)
			So(err, ShouldBeNil)
			So(ledger.Known("anyone"), ShouldBeFalse)
		})
	})

	Convey("Given an appended attestation", t, func() {
		path := filepath.Join(t.TempDir(), "attestations.jsonl")
		rater, _ := identity.Generate()
		att, err := NewAttestation(rater, shardHash, 0.9, "solid")
		So(err, ShouldBeNil)
		So(AppendFile(path, "creator-1", att), ShouldBeNil)

		Convey("Then a reload scores the creator from it", func() {
			ledger, err := LoadFile(path)
			So(err, ShouldBeNil)
			So(ledger.Known("creator-1"), ShouldBeTrue)
			So(ledger.ScoreFor("creator-1"), ShouldAlmostEqual, 0.9, 0.0001)
		})
	})

	Convey("Given a file with unusable lines around a good one", t, func() {
		path := filepath.Join(t.TempDir(), "attestations.jsonl")
		rater, _ := identity.Generate()
		att, err := NewAttestation(rater, shardHash, 0.8, "")
		So(err, ShouldBeNil)

		tampered := *att
		tampered.Score = 0.1

		So(os.WriteFile(path, []byte("not json at all\n"), 0o644), ShouldBeNil)
		So(AppendFile(path, "creator-1", &tampered), ShouldBeNil)

		// A line carrying only a creator id unmarshals to a nil attestation.
		file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
		So(err, ShouldBeNil)
		_, err = file.WriteString(`{"creator_id":"creator-1"}` + "\n")
		So(err, ShouldBeNil)
		So(file.Close(), ShouldBeNil)

		So(AppendFile(path, "creator-1", att), ShouldBeNil)

		Convey("Then the bad lines are skipped, not fatal", func() {
			ledger, err := LoadFile(path)
			So(err, ShouldBeNil)
			So(ledger.AttestationCount("creator-1"), ShouldEqual, 1)
			So(ledger.ScoreFor("creator-1"), ShouldAlmostEqual, 0.8, 0.0001)
		})
	})

	Convey("Given two attestations from one rater for one shard", t, func() {
		path := filepath.Join(t.TempDir(), "attestations.jsonl")
		rater, _ := identity.Generate()

		first, err := NewAttestation(rater, shardHash, 0.3, "weak")
		So(err, ShouldBeNil)
		second, err := NewAttestation(rater, shardHash, 0.9, "improved")
		So(err, ShouldBeNil)

		So(AppendFile(path, "creator-1", first), ShouldBeNil)
		So(AppendFile(path, "creator-1", second), ShouldBeNil)

		Convey("Then replay keeps only the latest per (rater, shard)", func() {
			ledger, err := LoadFile(path)
			So(err, ShouldBeNil)
			So(ledger.AttestationCount("creator-1"), ShouldEqual, 1)
			So(ledger.ScoreFor("creator-1"), ShouldAlmostEqual, 0.9, 0.0001)
		})
	})
}

func TestRecordNilAttestation(t *testing.T) {
	Convey("Given a ledger", t, func() {
		ledger := NewLedger()

		Convey("Then recording a nil attestation is an error, not a panic", func() {
			err := ledger.Record("creator-1", nil)
			So(err, ShouldNotBeNil)
			So(ledger.Known("creator-1"), ShouldBeFalse)
		})
	})
}
