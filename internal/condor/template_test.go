package condor

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func keys(opts []Option) []string {
	out := make([]string, 0, len(opts))
	for _, o := range opts {
		out = append(out, o.Key)
	}
	return out
}

func TestMerge_ReplacesInPlaceAndLeavesTemplateUntouched(t *testing.T) {
	template := DefaultTemplate()
	merged := Merge(template, []Option{
		{Key: "universe", Value: "local"},
		{Key: "Requirements", Value: "Memory > 1024"},
	})

	require.Equal(t, keys(template), keys(merged))
	v, ok := Lookup(merged, "Universe")
	require.True(t, ok)
	require.Equal(t, "local", v)

	orig, _ := Lookup(template, "Universe")
	require.Equal(t, "vanilla", orig)
	require.Equal(t, "vanilla", DefaultTemplate()[1].Value)
}

func TestMerge_AppendsNewKeysBeforeQueue(t *testing.T) {
	merged := Merge(DefaultTemplate(), []Option{
		{Key: "request_memory", Value: "2GB"},
		{Key: "notification", Value: "Never"},
		{Key: "request_memory", Value: "4GB"},
	})

	got := keys(merged)
	want := []string{
		"Executable", "Universe", "Getenv", "Requirements", "Arguments",
		"Output", "Error", "Log", "Transfer_Input_files", "+IsLocalJob", "Rank",
		"request_memory", "notification", "Queue",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected key order (-want +got):\n%s", diff)
	}
	v, _ := Lookup(merged, "request_memory")
	require.Equal(t, "4GB", v)
}

func TestRenderMergeSubmission(t *testing.T) {
	got := RenderMergeSubmission(MergeSubmission{
		Options:   DefaultTemplate(),
		Datasets:  []string{"TTbar", "WJets"},
		InputInfo: []string{"./TTbar/outputInfo_TTbar.json", "./WJets/outputInfo_WJets.json"},
	})

	want := "Executable = merge.sh\n" +
		"Universe = vanilla\n" +
		"Getenv = True\n" +
		"Requirements = \n" +
		"Arguments = $(Process)\n" +
		"\n" +
		"Output = condor_$(Process).out\n" +
		"Error = condor_$(Process).err\n" +
		"Log = condor_$(Process).log\n" +
		"\n" +
		"Transfer_Input_files = merge.sh,./TTbar/outputInfo_TTbar.json,./WJets/outputInfo_WJets.json\n" +
		"+IsLocalJob = true\n" +
		"Rank = TARGET.IsLocalSlot\n" +
		"\n" +
		"Queue 2\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected submit description (-want +got):\n%s", diff)
	}
}

func TestRenderMergeSubmission_ExplicitExecutableKept(t *testing.T) {
	opts := Merge(DefaultTemplate(), []Option{{Key: "Executable", Value: "wrapper.sh"}})
	got := RenderMergeSubmission(MergeSubmission{Options: opts, Datasets: []string{"A"}})
	require.Contains(t, got, "Executable = wrapper.sh\n")
	require.Contains(t, got, "Queue 1\n")
}

func TestRenderCompanionScript(t *testing.T) {
	got := RenderCompanionScript(CompanionScript{
		Binary:   "/opt/bin/mergeout",
		Datasets: []string{"TTbar", "it's"},
	})
	require.Contains(t, got, "#!/usr/bin/env bash\n")
	require.Contains(t, got, "  'TTbar'\n")
	require.Contains(t, got, `  'it'\''s'`)
	require.NotContains(t, got, "cd '")
	require.Contains(t, got, `'/opt/bin/mergeout' replay --info "outputInfo_${dataset}.json" --output "../${dataset}.root"`)
}

func TestRenderCompanionScript_EntersWorkDir(t *testing.T) {
	got := RenderCompanionScript(CompanionScript{
		Binary:   "mergeout",
		WorkDir:  "/data/condor/run1",
		Datasets: []string{"TTbar"},
	})
	require.Contains(t, got, "cd '/data/condor/run1'\ncd \"${dataset}\"\n")
}
