package contract

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Metadata is what a Source knows about one deployment.
type Metadata struct {
	Name      string
	NetworkID string
	Address   common.Address
	ABI       abi.ABI
	Entries   []ABIEntry
}

// Source resolves contract metadata for a network.
type Source interface {
	Resolve(name, networkID string) (*Metadata, error)
}

// ArtifactSource reads <Dir>/<name>.json build artifacts. Records in
// Registry, when set, take precedence over the artifact.
type ArtifactSource struct {
	Dir      string
	Registry *Registry
}

// NewArtifactSource creates an ArtifactSource.
func NewArtifactSource(dir string, reg *Registry) *ArtifactSource {
	return &ArtifactSource{Dir: dir, Registry: reg}
}

// Resolve implements Source.
func (s *ArtifactSource) Resolve(name, networkID string) (*Metadata, error) {
	if s.Registry != nil {
		if e, err := s.Registry.Get(name, networkID); err == nil {
			return s.fromEntry(e)
		}
	}

	path := filepath.Join(s.Dir, name+".json")
	a, err := LoadArtifact(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errors.Wrapf(ErrArtifactNotFound, "%s", path)
		}
		return nil, err
	}

	addr := a.Address(networkID)
	if addr == "" {
		return nil, ErrNotDeployed
	}
	return newMetadata(name, networkID, addr, a.ABI)
}

func (s *ArtifactSource) fromEntry(e *Entry) (*Metadata, error) {
	entries := e.ABI
	if len(entries) == 0 {
		// Fall back to the artifact ABI, then to a builtin of the same name.
		if a, err := LoadArtifact(filepath.Join(s.Dir, e.Name+".json")); err == nil {
			entries = a.ABI
		} else if b, ok := GetBuiltin(e.Name); ok {
			entries = b.ABI
		} else {
			return nil, errors.Newf("no ABI for %s: record has none and no artifact or builtin matches", e.Name)
		}
	}
	return newMetadata(e.Name, e.Network, e.Address, entries)
}

func newMetadata(name, networkID, address string, entries []ABIEntry) (*Metadata, error) {
	if !common.IsHexAddress(address) {
		return nil, errors.Newf("invalid contract address %q", address)
	}
	parsed, err := compileABI(entries)
	if err != nil {
		return nil, err
	}
	return &Metadata{
		Name:      name,
		NetworkID: networkID,
		Address:   common.HexToAddress(address),
		ABI:       parsed,
		Entries:   entries,
	}, nil
}
