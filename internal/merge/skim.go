package merge

import (
	"path/filepath"

	"go.uber.org/zap"

	"mergeout/internal/model"
	"mergeout/internal/rootfile"
	"mergeout/internal/runstore"
)

const (
	OriginalEventsFile = "OriginalNumberOfEvents.txt"
	SkimEventsFile     = "SkimNumberOfEvents.txt"
)

// writeSkimBookkeeping records event counts in every channel skim directory
// of a dataset and removes skim files that fail validation.
func writeSkimBookkeeping(dir string, original float64, counts model.EventCounts, log *zap.Logger) error {
	subdirs, err := runstore.ListSubdirs(dir)
	if err != nil {
		return err
	}
	for _, sub := range subdirs {
		channel := filepath.Base(sub)
		if err := runstore.WriteCount(filepath.Join(sub, OriginalEventsFile), original); err != nil {
			return err
		}
		skimmed, ok := counts.Channels[channel]
		if !ok {
			log.Warn("no cut flow for skim directory", zap.String("dir", sub))
		} else if err := runstore.WriteCount(filepath.Join(sub, SkimEventsFile), skimmed); err != nil {
			return err
		}
		if _, err := rootfile.PruneInvalid(sub, log); err != nil {
			return err
		}
	}
	return nil
}
