// Package config loads the local analysis config, per-dataset info files and
// environment settings.
package config

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"mergeout/internal/runstore"
)

var (
	ErrNoDatasets         = errors.New("there are no datasets to merge")
	ErrMissingLocalConfig = errors.New("no local configuration file is provided")
)

// Composite is a logical dataset made of several split datasets.
type Composite struct {
	Name    string
	Members []string
}

type Composites []Composite

// UnmarshalYAML keeps the mapping order of composite_datasets.
func (c *Composites) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: composite_datasets must be a mapping", node.Line)
	}
	out := make(Composites, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var members []string
		if err := node.Content[i+1].Decode(&members); err != nil {
			return fmt.Errorf("composite %q: %w", node.Content[i].Value, err)
		}
		out = append(out, Composite{Name: node.Content[i].Value, Members: members})
	}
	*c = out
	return nil
}

func (c Composites) Lookup(name string) (Composite, bool) {
	for _, comp := range c {
		if comp.Name == name {
			return comp, true
		}
	}
	return Composite{}, false
}

// Pair is one ordered key/value entry.
type Pair struct {
	Key   string
	Value string
}

type Pairs []Pair

// UnmarshalYAML keeps the mapping order of condor_arguments.
func (p *Pairs) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", node.Line)
	}
	out := make(Pairs, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		out = append(out, Pair{Key: node.Content[i].Value, Value: node.Content[i+1].Value})
	}
	*p = out
	return nil
}

type LocalConfig struct {
	Datasets        []string   `yaml:"datasets"`
	Composites      Composites `yaml:"composite_datasets"`
	IntLumi         float64    `yaml:"int_lumi"`
	CondorArguments Pairs      `yaml:"condor_arguments"`
}

func LoadLocal(path string) (LocalConfig, error) {
	p := strings.TrimSpace(path)
	if p == "" {
		return LocalConfig{}, ErrMissingLocalConfig
	}
	var cfg LocalConfig
	if err := runstore.ReadYAML(p, &cfg); err != nil {
		return LocalConfig{}, err
	}
	if len(cfg.Datasets) == 0 {
		return LocalConfig{}, fmt.Errorf("%s: %w", p, ErrNoDatasets)
	}
	if cfg.IntLumi < 0 {
		return LocalConfig{}, fmt.Errorf("%s: int_lumi must be >= 0", p)
	}
	return cfg, nil
}

// SplitDatasets expands every composite in Datasets into its members.
func (c LocalConfig) SplitDatasets() []string {
	out := make([]string, 0, len(c.Datasets))
	for _, ds := range c.Datasets {
		if comp, ok := c.Composites.Lookup(ds); ok {
			out = append(out, comp.Members...)
			continue
		}
		out = append(out, ds)
	}
	return out
}

// CompositeDatasets lists the entries of Datasets that are composites.
func (c LocalConfig) CompositeDatasets() []Composite {
	out := []Composite{}
	for _, ds := range c.Datasets {
		if comp, ok := c.Composites.Lookup(ds); ok {
			out = append(out, comp)
		}
	}
	return out
}
