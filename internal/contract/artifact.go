package contract

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Artifact is a Truffle or Hardhat build artifact: the ABI plus the address
// the contract was deployed at on each network id.
type Artifact struct {
	ContractName string                     `json:"contractName"`
	ABI          []ABIEntry                 `json:"abi"`
	Networks     map[string]ArtifactNetwork `json:"networks"`
}

// ArtifactNetwork is one deployment record inside an artifact.
type ArtifactNetwork struct {
	Address         string `json:"address"`
	TransactionHash string `json:"transactionHash,omitempty"`
}

// LoadArtifact reads a build artifact from path.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("artifact file is empty: %s", path)
	}

	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("invalid artifact JSON in %s: %w", path, err)
	}
	if err := validateABI(a.ABI, path); err != nil {
		return nil, err
	}
	return &a, nil
}

// Address returns the deployment address on networkID, or "" when the
// artifact has none.
func (a *Artifact) Address(networkID string) string {
	n, ok := a.Networks[networkID]
	if !ok {
		return ""
	}
	return strings.TrimSpace(n.Address)
}

// LoadFromArtifact loads an ABI from a local file that is either:
//   - a raw ABI JSON array: [{"type":"function",...}, ...]
//   - a build artifact: {"abi":[...],"networks":{...},...}
func LoadFromArtifact(path string) ([]ABIEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read ABI file: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("ABI file is empty: %s", path)
	}

	var artifact struct {
		ABI json.RawMessage `json:"abi"`
	}
	if json.Unmarshal(data, &artifact) == nil && len(artifact.ABI) > 1 && artifact.ABI[0] == '[' {
		data = artifact.ABI
	}

	entries, err := parseABI(data)
	if err != nil {
		return nil, err
	}
	if err := validateABI(entries, path); err != nil {
		return nil, err
	}
	return entries, nil
}

// validateABI checks that the parsed ABI has at least one function or event.
func validateABI(entries []ABIEntry, path string) error {
	if len(entries) == 0 {
		return fmt.Errorf("ABI is empty (no functions or events found): %s", path)
	}
	for _, e := range entries {
		if e.Type == "function" || e.Type == "event" || e.Type == "constructor" {
			return nil
		}
	}
	return fmt.Errorf("ABI has %d entries but none are functions or events: %s", len(entries), path)
}
