package lox_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/loxlang/golox/internal/diagnostics"
	"github.com/loxlang/golox/internal/lox"
	"github.com/stretchr/testify/require"
)

// TestMain lets go-snaps prune snapshot entries that no longer correspond
// to a fixture, the way the library's own docs recommend.
func TestMain(m *testing.M) {
	v := m.Run()
	snaps.Clean(m)
	os.Exit(v)
}

// TestFixtures runs every testdata/fixtures/*.lox program end to end and
// snapshots its combined stdout + diagnostic output, following the
// go-snaps fixture pattern CWBudde-go-dws's interp package uses.
func TestFixtures(t *testing.T) {
	entries, err := os.ReadDir("testdata/fixtures")
	require.NoError(t, err)

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lox" {
			continue
		}

		t.Run(entry.Name(), func(t *testing.T) {
			source, err := os.ReadFile(filepath.Join("testdata/fixtures", entry.Name()))
			require.NoError(t, err)

			var stdout, stderr bytes.Buffer
			sink := diagnostics.NewSink(&stderr, false)
			pipeline := lox.New(&stdout)
			pipeline.Run(string(source), sink)

			combined := "stdout >>>>\n" + stdout.String() + "stderr >>>>\n" + stderr.String()
			snaps.MatchSnapshot(t, combined)
		})
	}
}
