package dataset

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapVectorizer map[string][]float64

func (m mapVectorizer) Vector(word string) ([]float64, bool) {
	v, ok := m[word]
	return v, ok
}

var testVectors = mapVectorizer{
	"好": {3, 4},
	"坏": {0, 2},
	"零": {0, 0},
}

func quietLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func parseFloats(t *testing.T, line string) []float64 {
	t.Helper()
	var out []float64
	for _, f := range strings.Fields(line) {
		x, err := strconv.ParseFloat(f, 64)
		require.NoError(t, err)
		out = append(out, x)
	}
	return out
}

func TestTranslate(t *testing.T) {
	samples := strings.Join([]string{
		"好 坏 1",
		"",
		"好 未知 0",
		"只有一个",
		"坏 好 -1 extra",
		"零 好 0",
	}, "\n")

	var input, target bytes.Buffer
	stats, err := Translate(strings.NewReader(samples), &input, &target, testVectors, quietLogger())
	require.NoError(t, err)

	assert.Equal(t, TranslateStats{Written: 2, Unknown: 2, Malformed: 1}, stats)
	assert.Equal(t, "1\n-1\n", target.String(), "labels are copied verbatim")

	lines := strings.Split(strings.TrimSuffix(input.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.InDeltaSlice(t, []float64{0.6, 0.8, 0, 1}, parseFloats(t, lines[0]), 1e-12)
	assert.InDeltaSlice(t, []float64{0, 1, 0.6, 0.8}, parseFloats(t, lines[1]), 1e-12)
}

func TestTranslate_LogsUnknownWords(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	var input, target bytes.Buffer
	_, err := Translate(strings.NewReader("缺失 好 1\n"), &input, &target, testVectors, logger)
	require.NoError(t, err)

	assert.Contains(t, logs.String(), "缺失")
	assert.Empty(t, input.String())
	assert.Empty(t, target.String())
}

func TestTranslateFile(t *testing.T) {
	dir := t.TempDir()
	data, input, target := FoldPaths(filepath.Join(dir, "train-"), "-", 3)
	assert.Equal(t, filepath.Join(dir, "train-3"), data)
	assert.Equal(t, filepath.Join(dir, "input-train-3"), input)
	assert.Equal(t, filepath.Join(dir, "target-train-3"), target)
	require.NoError(t, os.WriteFile(data, []byte("好 坏 yes\n"), 0o644))

	stats, err := TranslateFile(data, input, target, testVectors, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Written)

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "yes\n", string(got))

	_, err = TranslateFile(filepath.Join(dir, "missing"), input, target, testVectors, quietLogger())
	assert.Error(t, err)
}

func TestFoldPaths(t *testing.T) {
	data, input, target := FoldPaths("train-", "-", 0)
	assert.Equal(t, "train-0", data)
	assert.Equal(t, "input-train-0", input)
	assert.Equal(t, "target-train-0", target)
}
