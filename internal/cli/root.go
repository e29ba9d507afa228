package cli

import "fmt"

func Run(args []string) error {
	if len(args) == 0 {
		printRootUsage()
		return nil
	}

	switch args[0] {
	case "merge":
		return runMerge(args[1:])
	case "replay":
		return runReplay(args[1:])
	case "status":
		return runStatus(args[1:])
	case "inspect":
		return runInspect(args[1:])
	case "resubmit":
		return runResubmit(args[1:])
	case "weight":
		return runWeight(args[1:])
	case "doctor":
		return runDoctor(args[1:])
	case "help", "-h", "--help":
		printRootUsage()
		return nil
	default:
		printRootUsage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func printRootUsage() {
	fmt.Println("mergeout: merge per-job histogram files of a condor skim run")
	fmt.Println()
	fmt.Println("Quick Start:")
	fmt.Println("  mergeout merge -w <work-dir> -l localConfig.yaml")
	fmt.Println("  mergeout merge -w <work-dir> -d <dataset> -L <int-lumi>")
	fmt.Println("  mergeout merge -w <work-dir> -l localConfig.yaml -c")
	fmt.Println("  mergeout status -w <work-dir>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  merge     scan job logs, weight and merge every dataset (locally or with condor)")
	fmt.Println("  replay    run the merge recorded in an outputInfo file (used by condor merge jobs)")
	fmt.Println("  status    job and merge state of each dataset, read only")
	fmt.Println("  inspect   interactive status table")
	fmt.Println("  resubmit  write condor_resubmit.sub for the failed jobs of one dataset")
	fmt.Println("  weight    compute a normalization weight from numbers")
	fmt.Println("  doctor    check the merge tool, condor_submit and the work directory")
	fmt.Println()
	fmt.Println("Notes:")
	fmt.Println("  - Work directories resolve to <cwd>/<condor-root>/<work-dir> (condor-root defaults to condor)")
	fmt.Println("  - MERGEOUT_MERGE_TOOL and MERGEOUT_CONDOR_SUBMIT override the external binaries (.env is read)")
	fmt.Println("  - Use --json on commands for machine-readable output")
}
