package dsl

import (
	"fmt"
	"sort"
)

// Networks maps logical network names to the physical names the runtime
// assigns them.
type Networks struct {
	byName map[string]string
	names  []string
}

// NewNetworks builds the lookup table from the networks section of the
// merged configuration. The map may be empty but not nil entries.
func NewNetworks(networks map[string]string) (*Networks, error) {
	byName := make(map[string]string, len(networks))
	names := make([]string, 0, len(networks))
	for logical, physical := range networks {
		if logical == "" {
			return nil, &ConstructionError{Handler: "networks", Field: "name", Reason: "logical name must not be empty"}
		}
		if physical == "" {
			return nil, &ConstructionError{Handler: "networks", Field: logical, Reason: "physical name must not be empty"}
		}
		byName[logical] = physical
		names = append(names, logical)
	}
	sort.Strings(names)
	return &Networks{byName: byName, names: names}, nil
}

// Lookup resolves a logical network name to its physical name.
func (n *Networks) Lookup(name string) (string, error) {
	physical, ok := n.byName[name]
	if !ok {
		return "", fmt.Errorf("network %q is not defined", name)
	}
	return physical, nil
}

// Names lists the logical network names in sorted order.
func (n *Networks) Names() []string {
	out := make([]string, len(n.names))
	copy(out, n.names)
	return out
}
