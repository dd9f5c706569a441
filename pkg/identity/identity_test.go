package identity

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/hivebrain/synapse-go/pkg/errors"
)

func TestGenerate(t *testing.T) {
	Convey("Given a freshly generated identity", t, func() {
		id, err := Generate()

		Convey("Then it carries a usable key pair", func() {
			So(err, ShouldBeNil)
			So(id.AgentID, ShouldHaveLength, 16)
			So(id.CanSign(), ShouldBeTrue)
			So(id.PublicKeyBytes(), ShouldNotBeEmpty)
		})

		Convey("Then a second generation yields a different identity", func() {
			other, err := Generate()
			So(err, ShouldBeNil)
			So(other.AgentID, ShouldNotEqual, id.AgentID)
		})
	})
}

func TestDeriveAgentID(t *testing.T) {
	Convey("Given a public key", t, func() {
		id, _ := Generate()
		raw := id.PublicKeyBytes()

		Convey("Then derivation is deterministic", func() {
			So(DeriveAgentID(raw), ShouldEqual, DeriveAgentID(raw))
			So(DeriveAgentID(raw), ShouldEqual, id.AgentID)
		})

		Convey("Then a different key yields a different id", func() {
			other := append([]byte{}, raw...)
			other[0] ^= 0xff
			So(DeriveAgentID(other), ShouldNotEqual, id.AgentID)
		})
	})
}

func TestSignVerify(t *testing.T) {
	Convey("Given a signed message", t, func() {
		id, _ := Generate()
		message := []byte("memory shard payload digest")
		signature, err := id.Sign(message)

		Convey("Then the signature verifies against the public key", func() {
			So(err, ShouldBeNil)
			So(Verify(id.PublicKeyBytes(), message, signature), ShouldBeTrue)
		})

		Convey("Then a flipped message bit fails verification", func() {
			tampered := append([]byte{}, message...)
			tampered[3] ^= 0x01
			So(Verify(id.PublicKeyBytes(), tampered, signature), ShouldBeFalse)
		})

		Convey("Then a flipped signature bit fails verification", func() {
			tampered := append([]byte{}, signature...)
			tampered[0] ^= 0x01
			So(Verify(id.PublicKeyBytes(), message, tampered), ShouldBeFalse)
		})

		Convey("Then malformed inputs fail without panicking", func() {
			So(Verify(id.PublicKeyBytes(), message, []byte("short")), ShouldBeFalse)
			So(Verify([]byte("not a key"), message, signature), ShouldBeFalse)
			So(Verify(nil, nil, nil), ShouldBeFalse)
		})
	})
}

func TestPublicOnlyStub(t *testing.T) {
	Convey("Given an identity built from only a public key", t, func() {
		id, _ := Generate()
		stub, err := FromPublicKey(DefaultAlgorithm, id.PublicKeyBytes())

		Convey("Then it cannot sign", func() {
			So(err, ShouldBeNil)
			So(stub.CanSign(), ShouldBeFalse)

			_, signErr := stub.Sign([]byte("anything"))
			So(signErr, ShouldNotBeNil)
			So(errors.ErrUnavailablePrivateKey.Is(signErr), ShouldBeTrue)
		})

		Convey("Then it derives the same agent id", func() {
			So(stub.AgentID, ShouldEqual, id.AgentID)
		})
	})
}

func TestSaveLoad(t *testing.T) {
	Convey("Given an identity saved to disk", t, func() {
		dir := filepath.Join(t.TempDir(), "identity")
		id, _ := Generate()
		So(id.Save(dir), ShouldBeNil)

		Convey("Then the private key is owner-only", func() {
			info, err := os.Stat(filepath.Join(dir, "agent_private.key"))
			So(err, ShouldBeNil)
			So(info.Mode().Perm(), ShouldEqual, os.FileMode(0o600))
		})

		Convey("Then loading restores a signing identity", func() {
			loaded, err := Load(dir)
			So(err, ShouldBeNil)
			So(loaded.AgentID, ShouldEqual, id.AgentID)
			So(loaded.CanSign(), ShouldBeTrue)

			message := []byte("round trip")
			signature, err := loaded.Sign(message)
			So(err, ShouldBeNil)
			So(id.Verify(message, signature), ShouldBeTrue)
		})

		Convey("Then loading without the private key yields a stub", func() {
			So(os.Remove(filepath.Join(dir, "agent_private.key")), ShouldBeNil)
			loaded, err := Load(dir)
			So(err, ShouldBeNil)
			So(loaded.CanSign(), ShouldBeFalse)
		})
	})
}

func TestSchemeFor(t *testing.T) {
	Convey("Given the scheme registry", t, func() {
		Convey("Then the default algorithm resolves", func() {
			scheme, err := SchemeFor(DefaultAlgorithm)
			So(err, ShouldBeNil)
			So(scheme, ShouldNotBeNil)
		})

		Convey("Then an unknown algorithm is rejected", func() {
			_, err := SchemeFor("ROT13-XL")
			So(err, ShouldNotBeNil)
			So(errors.ErrUnknownScheme.Is(err), ShouldBeTrue)
		})
	})
}
