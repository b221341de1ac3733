package sememe

import (
	"log/slog"
	"maps"
	"slices"
)

// HierarchyRecord is one line of the hierarchy resource. Parent is a
// position in the resource's own record order, not a sememe ID. A record
// whose Parent equals its own position is a root.
type HierarchyRecord struct {
	Name   string
	Parent int
}

// Anomaly describes a hierarchy record that could not be linked as written.
// The affected sememe is treated as a root.
type Anomaly struct {
	Position int
	Name     string
	Reason   string
}

// ParentMap maps each non-root sememe name to its immediate parent name.
// Roots have no entry. Following Parent from any name always terminates.
type ParentMap struct {
	parents map[string]string
}

// Parent returns the parent of name. ok is false for roots and for names
// outside the hierarchy.
func (m *ParentMap) Parent(name string) (parent string, ok bool) {
	parent, ok = m.parents[name]
	return parent, ok
}

// Len returns the number of sememes that have a parent.
func (m *ParentMap) Len() int {
	return len(m.parents)
}

// Ancestors returns the chain of parents above name, nearest first.
func (m *ParentMap) Ancestors(name string) []string {
	var chain []string
	for p, ok := m.parents[name]; ok; p, ok = m.parents[p] {
		chain = append(chain, p)
	}
	return chain
}

// Depth returns the number of hierarchy levels between name and its root.
func (m *ParentMap) Depth(name string) int {
	return len(m.Ancestors(name))
}

// sortedNames lists every linked name in byte order.
func (m *ParentMap) sortedNames() []string {
	return slices.Sorted(maps.Keys(m.parents))
}

// Equal reports whether both maps link the same names to the same parents.
func (m *ParentMap) Equal(other *ParentMap) bool {
	return maps.Equal(m.parents, other.parents)
}

// BuildParentMap resolves positional parent indexes into parent names in a
// single pass over records. Out-of-range indexes and cycles are reported as
// anomalies, logged at warn level, and the sememe becomes a root. When a
// name occurs on several records the last record wins.
func BuildParentMap(records []HierarchyRecord, logger *slog.Logger) (*ParentMap, []Anomaly) {
	if logger == nil {
		logger = slog.Default()
	}

	var anomalies []Anomaly
	report := func(a Anomaly) {
		anomalies = append(anomalies, a)
		logger.Warn("hierarchy record treated as root",
			slog.Int("position", a.Position),
			slog.String("sememe", a.Name),
			slog.String("reason", a.Reason))
	}

	parents := make(map[string]string, len(records))
	position := make(map[string]int, len(records))
	for i, rec := range records {
		position[rec.Name] = i
		p := rec.Parent
		switch {
		case p == i:
			delete(parents, rec.Name)
		case p < 0 || p >= len(records):
			delete(parents, rec.Name)
			report(Anomaly{Position: i, Name: rec.Name, Reason: "parent index out of range"})
		default:
			parents[rec.Name] = records[p].Name
		}
	}

	// Forward references in raw data can form loops; cut each one at the
	// sememe whose parent link closes it.
	const (
		unvisited = iota
		onPath
		done
	)
	state := make(map[string]int, len(parents))
	var path []string
	for _, rec := range records {
		path = path[:0]
		cur := rec.Name
		for {
			if state[cur] == done {
				break
			}
			if state[cur] == onPath {
				closer := path[len(path)-1]
				delete(parents, closer)
				report(Anomaly{Position: position[closer], Name: closer, Reason: "parent chain forms a cycle"})
				break
			}
			state[cur] = onPath
			path = append(path, cur)
			next, ok := parents[cur]
			if !ok {
				break
			}
			cur = next
		}
		for _, name := range path {
			state[name] = done
		}
	}

	return &ParentMap{parents: parents}, anomalies
}
