package rootfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"mergeout/internal/rootfile/rootfiletest"
)

func TestValidate_AcceptsCompleteSkimFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skim_0.root")
	rootfiletest.Write(t, path, rootfiletest.SkimFile(5))

	require.NoError(t, Check(path))
	require.True(t, Validate(path))
}

func TestValidate_RejectsAnyMissingSection(t *testing.T) {
	for _, missing := range RequiredSections {
		t.Run(missing, func(t *testing.T) {
			sections := make([]string, 0, len(RequiredSections)-1)
			for _, s := range RequiredSections {
				if s != missing {
					sections = append(sections, s)
				}
			}
			path := filepath.Join(t.TempDir(), "skim.root")
			rootfiletest.Write(t, path, rootfiletest.File{Sections: sections, EventEntries: 3})

			require.False(t, Validate(path))
		})
	}
}

func TestValidate_RejectsEmptyEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skim.root")
	rootfiletest.Write(t, path, rootfiletest.SkimFile(0))

	err := Check(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "empty")
}

func TestValidate_RejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skim.root")
	rootfiletest.WriteCorrupt(t, path)

	require.False(t, Validate(path))
}

func TestPruneInvalid(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "skim_0.root")
	bad := filepath.Join(dir, "skim_1.root")
	rootfiletest.Write(t, good, rootfiletest.SkimFile(2))
	rootfiletest.WriteCorrupt(t, bad)

	removed, err := PruneInvalid(dir, nil)
	require.NoError(t, err)
	require.Equal(t, []string{bad}, removed)

	_, err = os.Stat(good)
	require.NoError(t, err)
	_, err = os.Stat(bad)
	require.True(t, os.IsNotExist(err))
}
