package contract

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
)

// ErrContractNotFound is returned when a contract is not in the registry.
var ErrContractNotFound = errors.New("contract not found")

// Entry is a manual deployment record. It overrides the build artifact for
// one contract on one network.
type Entry struct {
	Name    string     `json:"name"`
	Network string     `json:"network"` // network id (net_version)
	Address string     `json:"address"`
	ABI     []ABIEntry `json:"abi,omitempty"`
}

// Registry stores and retrieves deployment records.
type Registry struct {
	path      string
	contracts map[string]*Entry // key: "name@network"
}

// NewRegistry creates a Registry backed by a JSON file.
func NewRegistry(path string) *Registry {
	return &Registry{
		path:      path,
		contracts: make(map[string]*Entry),
	}
}

// Load reads stored records from disk. A missing file is an empty registry.
func (r *Registry) Load() error {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parsing %s: %w", r.path, err)
	}

	for i := range entries {
		e := &entries[i]
		r.contracts[key(e.Name, e.Network)] = e
	}
	return nil
}

// Save writes all records to disk.
func (r *Registry) Save() error {
	data, err := json.MarshalIndent(r.sorted(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.path, data, 0o600)
}

// Add adds or replaces a record.
func (r *Registry) Add(e *Entry) {
	r.contracts[key(e.Name, e.Network)] = e
}

// Get returns the record for name on network.
func (r *Registry) Get(name, network string) (*Entry, error) {
	e, ok := r.contracts[key(name, network)]
	if !ok {
		return nil, fmt.Errorf("%w: %s on %s", ErrContractNotFound, name, network)
	}
	return e, nil
}

// GetByName returns the records for name across all networks.
func (r *Registry) GetByName(name string) []*Entry {
	var out []*Entry
	for _, e := range r.sorted() {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

// All returns every record, ordered by name then network.
func (r *Registry) All() []*Entry {
	return r.sorted()
}

// Remove deletes a record.
func (r *Registry) Remove(name, network string) error {
	k := key(name, network)
	if _, ok := r.contracts[k]; !ok {
		return fmt.Errorf("%w: %s on %s", ErrContractNotFound, name, network)
	}
	delete(r.contracts, k)
	return nil
}

func (r *Registry) sorted() []*Entry {
	out := make([]*Entry, 0, len(r.contracts))
	for _, e := range r.contracts {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return key(out[i].Name, out[i].Network) < key(out[j].Name, out[j].Network)
	})
	return out
}

func key(name, network string) string {
	return name + "@" + network
}
