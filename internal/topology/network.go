// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package topology

import (
	"fmt"
	"iter"
	"strings"

	"github.com/vk/dynagrid/internal/component"
)

// Network is a read-only connectivity index over buses, branches and static
// injections. It holds the components it was built from and never mutates
// them.
type Network struct {
	buses      []*Bus
	busIndex   map[string]*Bus
	branches   map[string][]Branch
	injections map[string][]StaticInjection
}

// NewNetwork indexes the topology components in comps. Other kinds are
// ignored, as are references to buses that are not part of the sequence.
func NewNetwork(comps iter.Seq[component.Component]) *Network {
	n := &Network{
		busIndex:   make(map[string]*Bus),
		branches:   make(map[string][]Branch),
		injections: make(map[string][]StaticInjection),
	}
	var (
		branches []Branch
		injs     []StaticInjection
	)
	for c := range comps {
		switch v := c.(type) {
		case *Bus:
			n.buses = append(n.buses, v)
			n.busIndex[v.Name] = v
		case Branch:
			branches = append(branches, v)
		case StaticInjection:
			injs = append(injs, v)
		}
	}
	for _, br := range branches {
		a := br.Ends()
		if _, ok := n.busIndex[a.From]; ok {
			n.branches[a.From] = append(n.branches[a.From], br)
		}
		if _, ok := n.busIndex[a.To]; ok {
			n.branches[a.To] = append(n.branches[a.To], br)
		}
	}
	for _, inj := range injs {
		bus := inj.Terminal().Bus
		if _, ok := n.busIndex[bus]; ok {
			n.injections[bus] = append(n.injections[bus], inj)
		}
	}
	return n
}

// Buses returns the indexed buses in sequence order.
func (n *Network) Buses() []*Bus {
	return append([]*Bus(nil), n.buses...)
}

// Degree returns the number of branches incident to bus, regardless of
// availability.
func (n *Network) Degree(bus string) int {
	return len(n.branches[bus])
}

// BranchesAt returns the branches incident to bus.
func (n *Network) BranchesAt(bus string) []Branch {
	return append([]Branch(nil), n.branches[bus]...)
}

// InjectionsAt returns the static injections connected to bus.
func (n *Network) InjectionsAt(bus string) []StaticInjection {
	return append([]StaticInjection(nil), n.injections[bus]...)
}

// OrphanBuses returns the buses with no incident branch.
func (n *Network) OrphanBuses() []*Bus {
	var out []*Bus
	for _, b := range n.buses {
		if n.Degree(b.Name) == 0 {
			out = append(out, b)
		}
	}
	return out
}

// Island is a maximal set of buses connected by available branches.
type Island struct {
	// Buses are listed in the order they were first reached, starting from
	// the earliest bus of the island.
	Buses []*Bus
}

// Names returns the bus names of the island.
func (i Island) Names() []string {
	out := make([]string, len(i.Buses))
	for k, b := range i.Buses {
		out[k] = b.Name
	}
	return out
}

// References returns the REF buses of the island.
func (i Island) References() []*Bus {
	var out []*Bus
	for _, b := range i.Buses {
		if b.Type == BusREF {
			out = append(out, b)
		}
	}
	return out
}

// Islands partitions the buses. Unavailable branches do not connect.
func (n *Network) Islands() []Island {
	seen := make(map[string]bool, len(n.buses))
	var out []Island
	for _, start := range n.buses {
		if seen[start.Name] {
			continue
		}
		seen[start.Name] = true
		island := Island{}
		queue := []*Bus{start}
		for len(queue) > 0 {
			b := queue[0]
			queue = queue[1:]
			island.Buses = append(island.Buses, b)
			for _, br := range n.branches[b.Name] {
				if !br.Meta().Available {
					continue
				}
				a := br.Ends()
				next := a.To
				if next == b.Name {
					next = a.From
				}
				if nb, ok := n.busIndex[next]; ok && !seen[next] {
					seen[next] = true
					queue = append(queue, nb)
				}
			}
		}
		out = append(out, island)
	}
	return out
}

// Issue is one connectivity finding.
type Issue struct {
	Island Island
	Detail string
}

func (i Issue) String() string {
	return fmt.Sprintf("island [%s]: %s", strings.Join(i.Island.Names(), ", "), i.Detail)
}

// Report is the result of a connectivity check. An empty report means every
// island has exactly one reference bus.
type Report struct {
	Islands []Island
	Issues  []Issue
}

// OK reports whether no issue was found.
func (r Report) OK() bool { return len(r.Issues) == 0 }

// ValidateConnectivity checks that each island has exactly one REF bus.
func (n *Network) ValidateConnectivity() Report {
	r := Report{Islands: n.Islands()}
	for _, island := range r.Islands {
		refs := island.References()
		switch len(refs) {
		case 1:
		case 0:
			r.Issues = append(r.Issues, Issue{Island: island, Detail: "no reference bus"})
		default:
			names := make([]string, len(refs))
			for k, b := range refs {
				names[k] = b.Name
			}
			r.Issues = append(r.Issues, Issue{
				Island: island,
				Detail: fmt.Sprintf("%d reference buses (%s)", len(refs), strings.Join(names, ", ")),
			})
		}
	}
	return r
}
