package sememe

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeResources writes hierarchy and glossary fixtures into a temp dir and
// returns their paths.
func writeResources(t *testing.T, hierarchy, glossary []string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	hPath := filepath.Join(dir, "WHOLE.DAT")
	gPath := filepath.Join(dir, "glossary.dat")
	require.NoError(t, os.WriteFile(hPath, []byte(strings.Join(hierarchy, "\n")+"\n"), 0o644))
	require.NoError(t, os.WriteFile(gPath, []byte(strings.Join(glossary, "\n")+"\n"), 0o644))
	return hPath, gPath
}

// sampleHierarchy is a small tree:
//
//	是非 (0)
//	├── 肯定 (1)
//	└── 否定 (2)
//	属性 (3)
//	└── 颜色 (4)
//	    └── 红 (5)
var sampleHierarchy = []string{
	"0 - 是非 0",
	"1 ├ 肯定 0",
	"2 └ 否定 0",
	"3 - 属性 3",
	"4 └ 颜色 3",
	"5 └ 红 4",
}

var sampleGlossary = []string{
	"对\tADJ\t肯定",
	"错\tADJ\t否定",
	"红\tADJ\t红,颜色",
	"对\tV\t肯定,是非",
}

func buildSample(t *testing.T) *Database {
	t.Helper()
	hPath, gPath := writeResources(t, sampleHierarchy, sampleGlossary)
	db, err := Build(NewLoader(hPath, gPath), nil)
	require.NoError(t, err)
	return db
}
