package main

import (
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const modulePrefix = "mergeout/internal/"

// allowed maps each internal package to the internal packages its
// non-test files may import. Layers only point downwards: cli -> merge ->
// domain packages -> runstore/model.
var allowed = map[string][]string{
	"cli":                   {"condor", "config", "joblog", "merge", "model", "weight"},
	"merge":                 {"condor", "config", "joblog", "mergetool", "model", "rootfile", "runstore", "weight"},
	"condor":                {"runstore"},
	"config":                {"model", "runstore"},
	"joblog":                {"model"},
	"mergetool":             {"weight"},
	"rootfile":              {"model"},
	"rootfile/rootfiletest": {},
	"runstore":              {"model"},
	"weight":                {"model"},
	"model":                 {},
}

func main() {
	violations := []string{}

	err := filepath.WalkDir("internal", func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") {
			return nil
		}
		isTest := strings.HasSuffix(path, "_test.go")

		srcPkg := sourcePackage(path)
		allowList, ok := allowed[srcPkg]
		if !ok {
			violations = append(violations, fmt.Sprintf("%s: unknown source package %q", path, srcPkg))
			return nil
		}

		fset := token.NewFileSet()
		file, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return err
		}

		for _, imp := range file.Imports {
			tgtPkg, ok := targetPackage(strings.Trim(imp.Path.Value, "\""))
			if !ok || tgtPkg == srcPkg {
				continue
			}
			if isTestHelper(tgtPkg) {
				if !isTest {
					violations = append(violations, fmt.Sprintf("%s: test helper %s imported outside tests", path, tgtPkg))
				}
				continue
			}
			// Tests may reach sideways for fixtures but never up into cli.
			if isTest && tgtPkg != "cli" {
				continue
			}
			if !contains(allowList, tgtPkg) {
				violations = append(violations, fmt.Sprintf("%s: %s -> %s is forbidden", path, srcPkg, tgtPkg))
			}
		}
		return nil
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "boundary walk failed: %v\n", err)
		os.Exit(1)
	}

	if len(violations) > 0 {
		sort.Strings(violations)
		fmt.Fprintln(os.Stderr, "architecture boundary violations detected:")
		for _, v := range violations {
			fmt.Fprintf(os.Stderr, "- %s\n", v)
		}
		os.Exit(1)
	}

	fmt.Println("architecture boundary check: OK")
}

// sourcePackage returns the package path below internal/, e.g.
// "rootfile/rootfiletest".
func sourcePackage(path string) string {
	rel, err := filepath.Rel("internal", filepath.Dir(path))
	if err != nil {
		return ""
	}
	return filepath.ToSlash(rel)
}

func targetPackage(importPath string) (string, bool) {
	if !strings.HasPrefix(importPath, modulePrefix) {
		return "", false
	}
	rest := strings.TrimPrefix(importPath, modulePrefix)
	return rest, rest != ""
}

func isTestHelper(pkg string) bool {
	return strings.HasSuffix(pkg, "test")
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
