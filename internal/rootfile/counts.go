package rootfile

import (
	"strings"

	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/riofs"
	"go.uber.org/zap"

	"mergeout/internal/model"
)

const (
	cutFlowMarker    = "CutFlow"
	cutFlowDirSuffix = "CutFlowPlotter"
	directoryClass   = "TDirectoryFile"
	eventCounterName = "eventCounter"
	cutFlowHistName  = "cutFlow"
	firstBin         = 1
)

// binned covers the rhist 1-dim histograms; bin 0 is the underflow.
type binned interface {
	NbinsX() int
	XBinContent(i int) float64
}

// ChannelName strips the plotter suffix from a cut-flow directory name.
func ChannelName(dir string) string {
	return strings.TrimSuffix(dir, cutFlowDirSuffix)
}

// CountEvents reads the per-channel bookkeeping histograms of every file.
// Files that cannot be opened are dropped; the second return value lists
// the files that survived, in input order.
func CountEvents(paths []string, log *zap.Logger) (model.EventCounts, []string) {
	if log == nil {
		log = zap.NewNop()
	}
	counts := model.NewEventCounts()
	survivors := make([]string, 0, len(paths))
	for _, p := range paths {
		if err := countFile(p, &counts, log); err != nil {
			log.Warn("bad root file", zap.String("file", p), zap.Error(err))
			continue
		}
		survivors = append(survivors, p)
	}
	return counts, survivors
}

func countFile(path string, counts *model.EventCounts, log *zap.Logger) error {
	f, err := groot.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	top := riofs.Dir(f)
	seen := make(map[string]bool)
	counted := false
	for _, key := range top.Keys() {
		name := key.Name()
		if seen[name] || key.ClassName() != directoryClass || !strings.Contains(name, cutFlowMarker) {
			continue
		}
		seen[name] = true

		channel := ChannelName(name)
		counts.AddChannel(channel)

		obj, err := top.Get(name)
		if err != nil {
			log.Warn("could not read channel directory", zap.String("file", path), zap.String("dir", name), zap.Error(err))
			continue
		}
		dir, ok := obj.(riofs.Directory)
		if !ok {
			continue
		}

		original, ok := histogram(dir, eventCounterName)
		if !ok {
			log.Warn("could not find eventCounter histogram", zap.String("file", path), zap.String("channel", channel))
			continue
		}
		if !counted {
			counts.Total += original.XBinContent(firstBin)
			counted = true
		}

		skim, ok := histogram(dir, cutFlowHistName)
		if !ok {
			log.Warn("could not find cutFlow histogram", zap.String("file", path), zap.String("channel", channel))
			continue
		}
		counts.Channels[channel] += skim.XBinContent(skim.NbinsX())
	}
	if !counted {
		log.Warn("no event counter found, file adds no events", zap.String("file", path))
	}
	return nil
}

func histogram(dir riofs.Directory, name string) (binned, bool) {
	obj, err := dir.Get(name)
	if err != nil {
		return nil, false
	}
	h, ok := obj.(binned)
	return h, ok
}
