// Package rootfiletest writes small ROOT files shaped like skim and
// histogram job outputs.
package rootfiletest

import (
	"os"
	"testing"

	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/rhist"
	"go-hep.org/x/hep/groot/riofs"
	"go-hep.org/x/hep/groot/rtree"
	"go-hep.org/x/hep/hbook"
)

// Channel is one <name>CutFlowPlotter directory. A nil EventCounter or
// CutFlow leaves that histogram out.
type Channel struct {
	Name         string
	EventCounter *float64
	CutFlow      []float64
}

// SkimSections mirrors the top-level trees of a skim file.
var SkimSections = []string{
	"MetaData",
	"ParameterSets",
	"Parentage",
	"Events",
	"LuminosityBlocks",
	"Runs",
}

type File struct {
	// Sections are written as trees; Events gets EventEntries entries and
	// the others one entry each.
	Sections     []string
	EventEntries int
	Channels     []Channel
}

func Count(v float64) *float64 {
	return &v
}

// HistogramFile is a job output with one channel per name.
func HistogramFile(original float64, skim map[string]float64, order ...string) File {
	f := File{}
	for _, name := range order {
		f.Channels = append(f.Channels, Channel{
			Name:         name,
			EventCounter: Count(original),
			CutFlow:      []float64{original, skim[name]},
		})
	}
	return f
}

// SkimFile has all required sections and n events.
func SkimFile(n int) File {
	return File{Sections: SkimSections, EventEntries: n}
}

func Write(t testing.TB, path string, shape File) {
	t.Helper()
	f, err := groot.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	top := riofs.Dir(f)

	for _, name := range shape.Sections {
		n := 1
		if name == "Events" {
			n = shape.EventEntries
		}
		writeTree(t, f, name, n)
	}

	for _, ch := range shape.Channels {
		dir, err := top.Mkdir(ch.Name + "CutFlowPlotter")
		if err != nil {
			t.Fatalf("mkdir %s: %v", ch.Name, err)
		}
		if ch.EventCounter != nil {
			h := hbook.NewH1D(1, -0.5, 0.5)
			h.Fill(0, *ch.EventCounter)
			if err := dir.Put("eventCounter", rhist.NewH1DFrom(h)); err != nil {
				t.Fatalf("put eventCounter: %v", err)
			}
		}
		if ch.CutFlow != nil {
			h := hbook.NewH1D(len(ch.CutFlow), 0, float64(len(ch.CutFlow)))
			for i, v := range ch.CutFlow {
				h.Fill(float64(i)+0.5, v)
			}
			if err := dir.Put("cutFlow", rhist.NewH1DFrom(h)); err != nil {
				t.Fatalf("put cutFlow: %v", err)
			}
		}
	}

	if err := f.Close(); err != nil {
		t.Fatalf("close %s: %v", path, err)
	}
}

// WriteCorrupt writes bytes that are not a ROOT file.
func WriteCorrupt(t testing.TB, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("not a root file"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func writeTree(t testing.TB, dir riofs.Directory, name string, entries int) {
	t.Helper()
	var run int32
	w, err := rtree.NewWriter(dir, name, []rtree.WriteVar{{Name: "run", Value: &run}})
	if err != nil {
		t.Fatalf("create tree %s: %v", name, err)
	}
	for i := 0; i < entries; i++ {
		run = int32(i)
		if _, err := w.Write(); err != nil {
			t.Fatalf("write tree %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close tree %s: %v", name, err)
	}
}
