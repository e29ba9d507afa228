// Package rootfile inspects skim and histogram ROOT files.
package rootfile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/rtree"
	"go.uber.org/zap"
)

// RequiredSections are the top-level keys every skim file must carry.
var RequiredSections = []string{
	"MetaData",
	"ParameterSets",
	"Parentage",
	"Events",
	"LuminosityBlocks",
	"Runs",
}

const eventsTree = "Events"

// Check returns nil when the file opens, has every required section and a
// non-empty Events tree.
func Check(path string) error {
	f, err := groot.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	for _, name := range RequiredSections {
		if _, err := f.Get(name); err != nil {
			return fmt.Errorf("%s: missing %s", path, name)
		}
	}

	obj, err := f.Get(eventsTree)
	if err != nil {
		return fmt.Errorf("%s: missing %s", path, eventsTree)
	}
	tree, ok := obj.(rtree.Tree)
	if !ok {
		return fmt.Errorf("%s: %s is a %s, not a tree", path, eventsTree, obj.Class())
	}
	if tree.Entries() <= 0 {
		return fmt.Errorf("%s: %s tree is empty", path, eventsTree)
	}
	return nil
}

func Validate(path string) bool {
	return Check(path) == nil
}

// PruneInvalid removes every *.root file in dir that fails Check and returns
// the removed paths.
func PruneInvalid(dir string, log *zap.Logger) ([]string, error) {
	if log == nil {
		log = zap.NewNop()
	}
	matches, err := filepath.Glob(filepath.Join(dir, "*.root"))
	if err != nil {
		return nil, fmt.Errorf("list skim files in %s: %w", dir, err)
	}
	sort.Strings(matches)

	removed := []string{}
	for _, p := range matches {
		if err := Check(p); err != nil {
			log.Warn("removing invalid skim file", zap.String("file", p), zap.Error(err))
			if rmErr := os.Remove(p); rmErr != nil {
				return removed, fmt.Errorf("remove invalid skim file %s: %w", p, rmErr)
			}
			removed = append(removed, p)
		}
	}
	return removed, nil
}
