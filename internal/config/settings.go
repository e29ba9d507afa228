package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	EnvMergeTool    = "MERGEOUT_MERGE_TOOL"
	EnvCondorSubmit = "MERGEOUT_CONDOR_SUBMIT"

	DefaultMergeTool    = "mergeTFileServiceHistograms"
	DefaultCondorSubmit = "condor_submit"
	DefaultCondorRoot   = "condor"
)

type Settings struct {
	MergeTool    string `json:"merge_tool"`
	CondorSubmit string `json:"condor_submit"`
}

// LoadDotEnv loads KEY=VALUE pairs from path without overriding variables
// already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if strings.TrimSpace(path) == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func LoadSettings() Settings {
	return Settings{
		MergeTool:    getenv(EnvMergeTool, DefaultMergeTool),
		CondorSubmit: getenv(EnvCondorSubmit, DefaultCondorSubmit),
	}
}

func getenv(k, fallback string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return fallback
	}
	return v
}
