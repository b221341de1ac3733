package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adalundhe/sememe/core/sememe"
)

// =============================================================================
// Test Helpers
// =============================================================================

var testHierarchy = []string{
	"0 - 是非 0",
	"1 ├ 肯定 0",
	"2 └ 否定 0",
	"3 - 属性 3",
	"4 └ 颜色 3",
	"5 └ 红 4",
}

var testGlossary = []string{
	"对\tADJ\t肯定",
	"错\tADJ\t否定",
	"红\tADJ\t红,颜色",
	"对\tV\t肯定,是非",
}

// testEnv holds the files of one CLI run.
type testEnv struct {
	dir      string
	config   string
	cacheDir string
}

// newTestEnv writes resources and a config file pointing at them.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	for _, key := range []string{
		"SEMEME_HIERARCHY", "SEMEME_GLOSSARY", "SEMEME_CACHE_DIR",
		"SEMEME_CACHE_ENABLED", "SEMEME_VECTOR_CACHE_SIZE",
		"SEMEME_LOG_LEVEL", "SEMEME_LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}

	dir := t.TempDir()
	env := &testEnv{
		dir:      dir,
		config:   filepath.Join(dir, "config.yaml"),
		cacheDir: filepath.Join(dir, "cache"),
	}
	hPath := filepath.Join(dir, "WHOLE.DAT")
	gPath := filepath.Join(dir, "glossary.dat")
	require.NoError(t, os.WriteFile(hPath, []byte(strings.Join(testHierarchy, "\n")+"\n"), 0o644))
	require.NoError(t, os.WriteFile(gPath, []byte(strings.Join(testGlossary, "\n")+"\n"), 0o644))

	cfg := fmt.Sprintf(`resources:
  hierarchy: %s
  glossary: %s
cache:
  enabled: true
  dir: %s
log:
  level: error
`, hPath, gPath, env.cacheDir)
	require.NoError(t, os.WriteFile(env.config, []byte(cfg), 0o644))
	return env
}

// resetFlags restores every flag variable to its default between runs.
func resetFlags() {
	configPath, hierarchyPath, glossaryPath, cacheDir = "", "", "", ""
	noCache, verbose = false, false
	metricsFile = ""
	buildRebuild, buildJSON = false, false
	vectorNormalize, vectorExplain, vectorJSON = false, false, false
	translateFolds, translatePrefix, translateSep = 0, "train-", "-"
	splitTrain, splitTest, splitSep = "train", "test", "-"
	splitRate, splitFolds, splitSeed = 0.2, 10, 0
}

// run executes the root command with args and returns stdout.
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	t.Cleanup(resetFlags)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append([]string{"--config", e.config}, args...))
	err := rootCmd.Execute()
	return stdout.String(), err
}

// =============================================================================
// Command Definition Tests
// =============================================================================

func TestRootCmd_Definition(t *testing.T) {
	t.Run("command is defined", func(t *testing.T) {
		assert.Equal(t, "sememe", rootCmd.Use)
		assert.NotNil(t, rootCmd.PersistentPreRunE)
		assert.NotNil(t, rootCmd.PersistentPostRunE)
	})

	t.Run("has subcommands", func(t *testing.T) {
		found := make(map[string]bool)
		for _, c := range rootCmd.Commands() {
			found[c.Name()] = true
		}
		for _, name := range []string{"build", "vector", "similarity", "translate", "split"} {
			assert.True(t, found[name], "%s subcommand should exist", name)
		}
	})

	t.Run("has persistent flags", func(t *testing.T) {
		pflags := rootCmd.PersistentFlags()
		for _, name := range []string{"config", "hierarchy", "glossary", "cache-dir", "no-cache", "metrics-file"} {
			assert.NotNil(t, pflags.Lookup(name), "flag %s", name)
		}
		verboseFlag := pflags.Lookup("verbose")
		require.NotNil(t, verboseFlag)
		assert.Equal(t, "v", verboseFlag.Shorthand)
	})
}

func TestSubcommand_Flags(t *testing.T) {
	tests := []struct {
		cmd      *cobra.Command
		flag     string
		defValue string
	}{
		{buildCmd, "rebuild", "false"},
		{buildCmd, "json", "false"},
		{vectorCmd, "normalize", "false"},
		{vectorCmd, "explain", "false"},
		{translateCmd, "folds", "0"},
		{translateCmd, "prefix", "train-"},
		{splitCmd, "rate", "0.2"},
		{splitCmd, "folds", "10"},
	}
	for _, tt := range tests {
		t.Run(tt.cmd.Name()+"/"+tt.flag, func(t *testing.T) {
			f := tt.cmd.Flags().Lookup(tt.flag)
			require.NotNil(t, f)
			assert.Equal(t, tt.defValue, f.DefValue)
		})
	}

	assert.Equal(t, "n", vectorCmd.Flags().Lookup("normalize").Shorthand)
}

// =============================================================================
// Execution Tests
// =============================================================================

func TestBuildCmd(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "build", "--json")
	require.NoError(t, err)

	var stats sememe.Stats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, 6, stats.Sememes)
	assert.Equal(t, 3, stats.Words)
	assert.Equal(t, 4, stats.Senses)
	assert.Equal(t, sememe.SourceBuild, stats.Source)

	t.Run("second run restores from cache", func(t *testing.T) {
		out, err := env.run(t, "build", "--json")
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal([]byte(out), &stats))
		assert.Equal(t, sememe.SourceCache, stats.Source)
	})

	t.Run("rebuild ignores the cache", func(t *testing.T) {
		out, err := env.run(t, "build", "--rebuild")
		require.NoError(t, err)
		assert.Contains(t, out, "Source:            build")
	})

	t.Run("no-cache writes nothing", func(t *testing.T) {
		fresh := newTestEnv(t)
		_, err := fresh.run(t, "build", "--no-cache")
		require.NoError(t, err)
		assert.NoDirExists(t, fresh.cacheDir)
	})
}

func TestVectorCmd(t *testing.T) {
	env := newTestEnv(t)

	t.Run("raw vectors", func(t *testing.T) {
		out, err := env.run(t, "vector", "对", "红")
		require.NoError(t, err)
		assert.Equal(t, "对\t1 0 0 0 1 0\n红\t0 0 1 1 0 0.5\n", out)
	})

	t.Run("unknown word is reported", func(t *testing.T) {
		out, err := env.run(t, "vector", "对", "不存在词")
		assert.ErrorIs(t, err, errUnknownWords)
		assert.Contains(t, out, "不存在词\t<unknown>")
		assert.Contains(t, out, "对\t1 0 0 0 1 0")
	})

	t.Run("explain", func(t *testing.T) {
		out, err := env.run(t, "vector", "--explain", "红")
		require.NoError(t, err)
		assert.Contains(t, out, "红\n")
		assert.Contains(t, out, "属性")
		assert.NotContains(t, out, "是非")
	})

	t.Run("normalized json", func(t *testing.T) {
		out, err := env.run(t, "vector", "--json", "-n", "错")
		require.NoError(t, err)

		var got []vectorOutput
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		require.Len(t, got, 1)
		assert.True(t, got[0].Known)

		var sum float64
		for _, x := range got[0].Vector {
			sum += x * x
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
	})
}

func TestSimilarityCmd(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "similarity", "对", "错")
	require.NoError(t, err)
	assert.Equal(t, "0.316228\n", out)

	_, err = env.run(t, "similarity", "对", "不存在词")
	assert.ErrorIs(t, err, errUnknownWords)
}

func TestTranslateCmd(t *testing.T) {
	env := newTestEnv(t)
	data := filepath.Join(env.dir, "pairs.txt")
	input := filepath.Join(env.dir, "input.txt")
	target := filepath.Join(env.dir, "target.txt")
	require.NoError(t, os.WriteFile(data, []byte("对 错 1\n对 不存在词 0\n"), 0o644))

	out, err := env.run(t, "translate", data, input, target)
	require.NoError(t, err)
	assert.Contains(t, out, "1 written, 1 unknown, 0 malformed")

	labels, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "1\n", string(labels))

	features, err := os.ReadFile(input)
	require.NoError(t, err)
	assert.Len(t, strings.Fields(string(features)), 12)
}

func TestTranslateCmd_Folds(t *testing.T) {
	env := newTestEnv(t)
	prefix := filepath.Join(env.dir, "train-")
	for i := 0; i < 2; i++ {
		require.NoError(t, os.WriteFile(fmt.Sprintf("%s%d", prefix, i), []byte("红 错 x\n"), 0o644))
	}

	_, err := env.run(t, "translate", "--folds", "2", "--prefix", prefix)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		assert.FileExists(t, filepath.Join(env.dir, fmt.Sprintf("input-train-%d", i)))
		assert.FileExists(t, filepath.Join(env.dir, fmt.Sprintf("target-train-%d", i)))
	}
}

func TestSplitCmd(t *testing.T) {
	env := newTestEnv(t)
	input := filepath.Join(env.dir, "samples.txt")
	require.NoError(t, os.WriteFile(input, []byte("a\nb\nc\nd\ne\n"), 0o644))

	_, err := env.run(t, "split", input,
		"--train", filepath.Join(env.dir, "tr"),
		"--test", filepath.Join(env.dir, "te"),
		"--folds", "2", "--rate", "0.4", "--seed", "9")
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		test, err := os.ReadFile(filepath.Join(env.dir, fmt.Sprintf("te-%d", i)))
		require.NoError(t, err)
		assert.Equal(t, 2, strings.Count(string(test), "\n"))
	}
}

func TestMetricsFile(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(env.dir, "metrics.prom")

	_, err := env.run(t, "vector", "--metrics-file", path, "对")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "sememe_vectors_total")
	assert.Contains(t, string(data), "sememe_db_open_total")
}
