package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"mergeout/internal/model"
	"mergeout/internal/runstore"
)

type datasetInfoFile struct {
	CrossSection           *float64 `yaml:"cross_section"`
	OriginalNumberOfEvents *float64 `yaml:"original_number_of_events"`
	SkimNumberOfEvents     *float64 `yaml:"skim_number_of_events"`
}

func DatasetInfoYAMLName(dataset string) string {
	return "datasetInfo_" + dataset + "_cfg.yaml"
}

func DatasetInfoPyName(dataset string) string {
	return "datasetInfo_" + dataset + "_cfg.py"
}

// LoadDatasetInfo reads the dataset info written next to the job outputs,
// preferring the YAML form over the legacy python assignments.
func LoadDatasetInfo(dir, dataset string) (model.Dataset, error) {
	yamlPath := filepath.Join(dir, DatasetInfoYAMLName(dataset))
	var raw datasetInfoFile
	switch err := runstore.ReadYAML(yamlPath, &raw); {
	case err == nil:
	case errors.Is(err, os.ErrNotExist):
		pyPath := filepath.Join(dir, DatasetInfoPyName(dataset))
		raw, err = readPyDatasetInfo(pyPath)
		if err != nil {
			return model.Dataset{}, err
		}
	default:
		return model.Dataset{}, err
	}

	if raw.CrossSection == nil {
		return model.Dataset{}, fmt.Errorf("dataset info for %s has no cross section", dataset)
	}
	ds := model.Dataset{Name: dataset, CrossSection: *raw.CrossSection}
	if raw.OriginalNumberOfEvents != nil && raw.SkimNumberOfEvents != nil {
		ds.Skim = &model.SkimCounts{
			Original: *raw.OriginalNumberOfEvents,
			Skimmed:  *raw.SkimNumberOfEvents,
		}
	}
	return ds, nil
}

var pyKeys = map[string]string{
	"crossSection":           "cross_section",
	"originalNumberOfEvents": "original_number_of_events",
	"skimNumberOfEvents":     "skim_number_of_events",
}

// readPyDatasetInfo understands the flat `name = number` assignments the
// skim step writes; every other line is ignored.
func readPyDatasetInfo(path string) (datasetInfoFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return datasetInfoFile{}, fmt.Errorf("read dataset info %s: %w", path, err)
	}
	defer f.Close()

	var out datasetInfoFile
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key, known := pyKeys[strings.TrimSpace(name)]
		if !known {
			continue
		}
		v, err := strconv.ParseFloat(strings.Trim(strings.TrimSpace(value), `"'`), 64)
		if err != nil {
			return datasetInfoFile{}, fmt.Errorf("%s: parse %s: %w", path, strings.TrimSpace(name), err)
		}
		switch key {
		case "cross_section":
			out.CrossSection = &v
		case "original_number_of_events":
			out.OriginalNumberOfEvents = &v
		case "skim_number_of_events":
			out.SkimNumberOfEvents = &v
		}
	}
	if err := scanner.Err(); err != nil {
		return datasetInfoFile{}, fmt.Errorf("read dataset info %s: %w", path, err)
	}
	return out, nil
}
