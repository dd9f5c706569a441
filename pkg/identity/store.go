package identity

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/hivebrain/synapse-go/pkg/errors"
)

const (
	privateKeyFile = "agent_private.key"
	publicKeyFile  = "agent_public.key"
	agentIDFile    = "agent_id.txt"
)

/*
Save persists the identity under dir. The private key is written with
owner-only permissions; the public key and agent id are world-readable.
Loss of the private key is unrecoverable, so callers should treat dir as
durable storage.
*/
func (id *Identity) Save(dir string) error {
	if id.private == nil {
		return errors.ErrUnavailablePrivateKey
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.NewError(err)
	}

	private, err := id.private.MarshalBinary()

	if err != nil {
		return errors.NewError(err)
	}

	if err := os.WriteFile(filepath.Join(dir, privateKeyFile), private, 0o600); err != nil {
		return errors.NewError(err)
	}

	if err := os.WriteFile(filepath.Join(dir, publicKeyFile), id.PublicKeyBytes(), 0o644); err != nil {
		return errors.NewError(err)
	}

	if err := os.WriteFile(filepath.Join(dir, agentIDFile), []byte(id.AgentID), 0o644); err != nil {
		return errors.NewError(err)
	}

	log.Info("identity saved", "dir", dir, "agent_id", id.AgentID)
	return nil
}

/*
Load reads an identity previously written by Save. When the private key file
is absent but the public key exists, a verification-only stub is returned.
*/
func Load(dir string) (*Identity, error) {
	return LoadWithAlgorithm(dir, DefaultAlgorithm)
}

/*
LoadWithAlgorithm is Load under an explicit scheme identifier.
*/
func LoadWithAlgorithm(dir, algorithm string) (*Identity, error) {
	scheme, err := SchemeFor(algorithm)

	if err != nil {
		return nil, err
	}

	publicRaw, err := os.ReadFile(filepath.Join(dir, publicKeyFile))

	if err != nil {
		return nil, errors.NewError(err)
	}

	id, err := FromPublicKey(algorithm, publicRaw)

	if err != nil {
		return nil, err
	}

	privateRaw, err := os.ReadFile(filepath.Join(dir, privateKeyFile))

	if os.IsNotExist(err) {
		log.Warn("no private key found, identity is verification-only", "dir", dir)
		return id, nil
	}

	if err != nil {
		return nil, errors.NewError(err)
	}

	private, err := scheme.UnmarshalBinaryPrivateKey(privateRaw)

	if err != nil {
		return nil, errors.NewError(err)
	}

	id.private = private
	return id, nil
}

/*
Exists reports whether dir already holds a key pair.
*/
func Exists(dir string) bool {
	_, privErr := os.Stat(filepath.Join(dir, privateKeyFile))
	_, pubErr := os.Stat(filepath.Join(dir, publicKeyFile))
	return privErr == nil && pubErr == nil
}
