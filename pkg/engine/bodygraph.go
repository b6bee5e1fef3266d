package engine

import (
	"fmt"
	"sort"
)

// centerGates lists the gates owned by each center. Every gate appears once.
var centerGates = map[Center][]Gate{
	CenterHead:        {64, 61, 63},
	CenterAjna:        {47, 24, 4, 17, 43, 11},
	CenterThroat:      {62, 23, 56, 35, 12, 45, 33, 8, 31, 20, 16},
	CenterG:           {1, 13, 25, 46, 2, 15, 10, 7},
	CenterEgo:         {21, 40, 26, 51},
	CenterSacral:      {5, 14, 29, 59, 9, 3, 42, 27, 34},
	CenterSpleen:      {48, 57, 44, 50, 32, 28, 18},
	CenterRoot:        {53, 60, 52, 19, 39, 41, 38, 54, 58},
	CenterSolarPlexus: {6, 37, 22, 36, 30, 55, 49},
}

type channelDef struct {
	gate1, gate2 Gate
	name         string
}

// canonicalChannels is sorted by (gate1, gate2).
var canonicalChannels = []channelDef{
	{2, 14, "Channel of the Beat"},
	{3, 60, "Channel of Mutation"},
	{8, 1, "Channel of Inspiration"},
	{9, 52, "Channel of Concentration"},
	{10, 34, "Channel of Exploration"},
	{10, 57, "Channel of Perfected Form"},
	{11, 56, "Channel of Curiosity"},
	{12, 22, "Channel of Openness"},
	{15, 5, "Channel of Rhythm"},
	{16, 48, "Channel of Talents"},
	{17, 62, "Channel of Acceptance"},
	{18, 58, "Channel of Judgment"},
	{19, 49, "Channel of Synthesis"},
	{20, 10, "Channel of Awakening"},
	{20, 34, "Channel of Charisma"},
	{20, 57, "Channel of Brainwave"},
	{25, 51, "Channel of Initiation"},
	{26, 44, "Channel of Surrender"},
	{27, 50, "Channel of Preservation"},
	{28, 38, "Channel of Struggle"},
	{31, 7, "Channel of Alpha"},
	{32, 54, "Channel of Transformation"},
	{33, 13, "Channel of the Prodigal"},
	{34, 57, "Channel of Power"},
	{35, 36, "Channel of Transitoriness"},
	{39, 55, "Channel of Emoting"},
	{40, 37, "Channel of Community"},
	{41, 30, "Channel of Recognition"},
	{42, 53, "Channel of Maturation"},
	{43, 23, "Channel of Structuring"},
	{45, 21, "Channel of Money"},
	{46, 29, "Channel of Discovery"},
	{59, 6, "Channel of Mating"},
	{61, 24, "Channel of Awareness"},
	{63, 4, "Channel of Logic"},
	{64, 47, "Channel of Abstraction"},
}

// CanonicalChannelCount is the number of channels in the bodygraph.
const CanonicalChannelCount = 36

// gateCenter is indexed by gate number; index 0 is unused.
var gateCenter [GateCount + 1]Center

func init() {
	if err := buildTables(); err != nil {
		panic(fmt.Sprintf("engine: invalid bodygraph tables: %v", err))
	}
}

// buildTables derives the gate lookup and checks the static tables.
func buildTables() error {
	for _, center := range AllCenters {
		for _, g := range centerGates[center] {
			if !g.Valid() {
				return fmt.Errorf("center %s lists invalid gate %d", center, g)
			}
			if owner := gateCenter[g]; owner != "" {
				return fmt.Errorf("gate %d listed under both %s and %s", g, owner, center)
			}
			gateCenter[g] = center
		}
	}
	for g := Gate(1); g <= GateCount; g++ {
		if gateCenter[g] == "" {
			return fmt.Errorf("gate %d belongs to no center", g)
		}
	}

	if len(canonicalChannels) != CanonicalChannelCount {
		return fmt.Errorf("expected %d channels, got %d", CanonicalChannelCount, len(canonicalChannels))
	}
	seen := make(map[[2]Gate]bool, len(canonicalChannels))
	for _, ch := range canonicalChannels {
		key := pairKey(ch.gate1, ch.gate2)
		if seen[key] {
			return fmt.Errorf("duplicate channel %d-%d", ch.gate1, ch.gate2)
		}
		seen[key] = true
		if gateCenter[ch.gate1] == gateCenter[ch.gate2] {
			return fmt.Errorf("channel %d-%d does not join two centers", ch.gate1, ch.gate2)
		}
	}
	if !sort.SliceIsSorted(canonicalChannels, func(i, j int) bool {
		a, b := canonicalChannels[i], canonicalChannels[j]
		if a.gate1 != b.gate1 {
			return a.gate1 < b.gate1
		}
		return a.gate2 < b.gate2
	}) {
		return fmt.Errorf("channel table is not sorted")
	}
	return nil
}

func pairKey(a, b Gate) [2]Gate {
	if a > b {
		a, b = b, a
	}
	return [2]Gate{a, b}
}

// CenterOf returns the center owning a gate, or "" for an invalid gate.
func CenterOf(g Gate) Center {
	if !g.Valid() {
		return ""
	}
	return gateCenter[g]
}

// GatesOf returns a copy of the gates owned by a center.
func GatesOf(c Center) []Gate {
	return append([]Gate(nil), centerGates[c]...)
}

// CanonicalChannels returns every channel of the bodygraph, undefined and unconscious.
func CanonicalChannels() []Channel {
	out := make([]Channel, len(canonicalChannels))
	for i, ch := range canonicalChannels {
		out[i] = Channel{Gate1: ch.gate1, Gate2: ch.gate2, Name: ch.name}
	}
	return out
}

// DefinedChannels returns the canonical channels whose two gates are both
// activated, in canonical order. A channel is conscious when a personality
// activation sits on either of its gates.
func DefinedChannels(activations []GateActivation) []Channel {
	active := make(map[Gate]bool, len(activations))
	conscious := make(map[Gate]bool, len(activations))
	for _, a := range activations {
		active[a.Gate] = true
		if a.Conscious {
			conscious[a.Gate] = true
		}
	}

	channels := make([]Channel, 0)
	for _, ch := range canonicalChannels {
		if !active[ch.gate1] || !active[ch.gate2] {
			continue
		}
		channels = append(channels, Channel{
			Gate1:     ch.gate1,
			Gate2:     ch.gate2,
			Name:      ch.name,
			Conscious: conscious[ch.gate1] || conscious[ch.gate2],
		})
	}
	return channels
}

// centerGraph is the undirected multigraph of centers joined by defined channels.
type centerGraph struct {
	adjacency map[Center][]Center
}

func newCenterGraph(channels []Channel) *centerGraph {
	g := &centerGraph{adjacency: make(map[Center][]Center, len(AllCenters))}
	for _, c := range AllCenters {
		g.adjacency[c] = make([]Center, 0)
	}
	for _, ch := range channels {
		c1, c2 := CenterOf(ch.Gate1), CenterOf(ch.Gate2)
		if c1 == "" || c2 == "" || c1 == c2 {
			continue
		}
		g.adjacency[c1] = append(g.adjacency[c1], c2)
		g.adjacency[c2] = append(g.adjacency[c2], c1)
	}
	return g
}

func (g *centerGraph) degree(c Center) int {
	return len(g.adjacency[c])
}

// components returns the connected groups of centers with at least one edge,
// each in AllCenters order.
func (g *centerGraph) components() [][]Center {
	visited := make(map[Center]bool, len(AllCenters))
	groups := make([][]Center, 0)

	for _, start := range AllCenters {
		if visited[start] || g.degree(start) == 0 {
			continue
		}
		member := make(map[Center]bool)
		stack := []Center{start}
		visited[start] = true
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			member[cur] = true
			for _, next := range g.adjacency[cur] {
				if !visited[next] {
					visited[next] = true
					stack = append(stack, next)
				}
			}
		}
		group := make([]Center, 0, len(member))
		for _, c := range AllCenters {
			if member[c] {
				group = append(group, c)
			}
		}
		groups = append(groups, group)
	}
	return groups
}

// DefinedCenters reports all nine centers. A center is defined when at least
// one defined channel joins it to another center.
func DefinedCenters(channels []Channel) []DefinedCenter {
	g := newCenterGraph(channels)
	out := make([]DefinedCenter, 0, len(AllCenters))
	for _, c := range AllCenters {
		out = append(out, DefinedCenter{Center: c, Defined: g.degree(c) > 0})
	}
	return out
}

// Definition names the split of the defined centers into connected areas.
func Definition(channels []Channel) string {
	switch n := len(newCenterGraph(channels).components()); n {
	case 0:
		return "No Definition"
	case 1:
		return "Single Definition"
	case 2:
		return "Split Definition"
	case 3:
		return "Triple Split Definition"
	default:
		return "Quadruple Split Definition"
	}
}

// IsDefined reports the definition status of center in centers.
func IsDefined(center Center, centers []DefinedCenter) bool {
	for _, dc := range centers {
		if dc.Center == center {
			return dc.Defined
		}
	}
	return false
}
