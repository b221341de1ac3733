package sememe

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestBuildParentMap_Positional(t *testing.T) {
	records := []HierarchyRecord{
		{Name: "root", Parent: 0},
		{Name: "a", Parent: 0},
		{Name: "b", Parent: 1},
		{Name: "c", Parent: 2},
	}

	m, anomalies := BuildParentMap(records, quietLogger())
	require.Empty(t, anomalies)

	_, ok := m.Parent("root")
	assert.False(t, ok, "self-referencing record is a root")

	p, ok := m.Parent("c")
	require.True(t, ok)
	assert.Equal(t, "b", p)

	assert.Equal(t, []string{"b", "a", "root"}, m.Ancestors("c"))
	assert.Equal(t, 3, m.Depth("c"))
	assert.Equal(t, 0, m.Depth("root"))
	assert.Equal(t, 3, m.Len())
}

func TestBuildParentMap_UnknownName(t *testing.T) {
	m, _ := BuildParentMap(nil, quietLogger())
	_, ok := m.Parent("anything")
	assert.False(t, ok)
	assert.Empty(t, m.Ancestors("anything"))
}

func TestBuildParentMap_OutOfRangeBecomesRoot(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	records := []HierarchyRecord{
		{Name: "root", Parent: 0},
		{Name: "lost", Parent: 9},
		{Name: "neg", Parent: -1},
	}
	m, anomalies := BuildParentMap(records, logger)

	require.Len(t, anomalies, 2)
	assert.Equal(t, Anomaly{Position: 1, Name: "lost", Reason: "parent index out of range"}, anomalies[0])
	assert.Equal(t, "neg", anomalies[1].Name)

	_, ok := m.Parent("lost")
	assert.False(t, ok, "no dangling parent reference")
	assert.Contains(t, logs.String(), "lost")
	assert.Contains(t, logs.String(), "level=WARN")
}

func TestBuildParentMap_BreaksCycles(t *testing.T) {
	// Forward references: a -> b -> c -> a.
	records := []HierarchyRecord{
		{Name: "a", Parent: 1},
		{Name: "b", Parent: 2},
		{Name: "c", Parent: 0},
		{Name: "d", Parent: 0},
	}
	m, anomalies := BuildParentMap(records, quietLogger())

	require.Len(t, anomalies, 1)
	assert.Equal(t, "parent chain forms a cycle", anomalies[0].Reason)

	for _, rec := range records {
		steps := 0
		for cur, ok := m.Parent(rec.Name); ok; cur, ok = m.Parent(cur) {
			steps++
			require.LessOrEqual(t, steps, len(records), "chain from %s does not terminate", rec.Name)
		}
	}
}

func TestBuildParentMap_DuplicateNameSelfLoop(t *testing.T) {
	records := []HierarchyRecord{
		{Name: "x", Parent: 0},
		{Name: "x", Parent: 0},
	}
	m, anomalies := BuildParentMap(records, quietLogger())

	require.Len(t, anomalies, 1)
	_, ok := m.Parent("x")
	assert.False(t, ok)
}

func TestBuildParentMap_LastRecordWins(t *testing.T) {
	records := []HierarchyRecord{
		{Name: "r1", Parent: 0},
		{Name: "r2", Parent: 1},
		{Name: "s", Parent: 0},
		{Name: "s", Parent: 1},
	}
	m, anomalies := BuildParentMap(records, quietLogger())
	require.Empty(t, anomalies)

	p, ok := m.Parent("s")
	require.True(t, ok)
	assert.Equal(t, "r2", p)
}

func TestParentMap_Equal(t *testing.T) {
	records := []HierarchyRecord{{Name: "r", Parent: 0}, {Name: "a", Parent: 0}}
	m1, _ := BuildParentMap(records, quietLogger())
	m2, _ := BuildParentMap(records, quietLogger())
	m3, _ := BuildParentMap(records[:1], quietLogger())

	assert.True(t, m1.Equal(m2))
	assert.False(t, m1.Equal(m3))
}
