package runstore

import (
	"os"
	"path/filepath"
	"testing"

	"mergeout/internal/model"
)

func TestCountRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "OriginalNumberOfEvents.txt")
	if err := WriteCount(path, 1500); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "1500\n" {
		t.Fatalf("unexpected file content %q", data)
	}
	got, err := ReadCount(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != 1500 {
		t.Fatalf("got %v want 1500", got)
	}
}

func TestListSubdirs_SkipsFilesAndHidden(t *testing.T) {
	dir := t.TempDir()
	for _, d := range []string{"b", "a", ".mergeout.lock"} {
		if err := Mkdir(filepath.Join(dir, d)); err != nil {
			t.Fatal(err)
		}
	}
	if err := WriteBytes(filepath.Join(dir, "file.txt"), []byte("x")); err != nil {
		t.Fatal(err)
	}

	got, err := ListSubdirs(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || filepath.Base(got[0]) != "a" || filepath.Base(got[1]) != "b" {
		t.Fatalf("unexpected subdirs: %v", got)
	}
}

func TestListSubdirs_MissingDirIsEmpty(t *testing.T) {
	got, err := ListSubdirs(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no dirs, got %v", got)
	}
}

func TestWriteExecutable_SetsMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "merge.sh")
	if err := WriteExecutable(path, []byte("#!/usr/bin/env bash\n")); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm()&0o100 == 0 {
		t.Fatalf("expected executable bit, got %v", info.Mode())
	}
}

func TestOutputInfoRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := OutputInfoPath(dir, "TTbar")
	if filepath.Base(path) != "outputInfo_TTbar.json" {
		t.Fatalf("unexpected path %s", path)
	}
	in := model.OutputInfo{
		SchemaVersion:     1,
		Dataset:           "TTbar",
		InputFiles:        []string{"hist_0.root", "hist_2.root"},
		InputFileString:   "hist_0.root hist_2.root",
		InputWeightString: "0.5,0.5",
		Weight:            0.5,
	}
	if err := SaveOutputInfo(path, in); err != nil {
		t.Fatal(err)
	}
	out, err := LoadOutputInfo(path)
	if err != nil {
		t.Fatal(err)
	}
	if out.InputWeightString != in.InputWeightString || len(out.InputFiles) != 2 {
		t.Fatalf("unexpected output info: %+v", out)
	}
}
