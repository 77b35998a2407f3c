package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/jhump/attrdef/processor"
)

// options are the settings for a run of attrgen. They can be given as flags
// or in a YAML config file.
type options struct {
	Packages     []string `yaml:"packages"`
	Types        []string `yaml:"types"`
	OutputDir    string   `yaml:"output_dir"`
	IncludeTests bool     `yaml:"include_tests"`
}

// loadConfig reads options from the given YAML file. Environment variables
// in the file, like ${HOME}, are expanded.
func loadConfig(path string) (*options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	data = []byte(os.ExpandEnv(string(data)))

	var opts options
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &opts, nil
}

// merge returns the options from flags, using values from o for any that were
// not set. The set map holds the names of flags given on the command-line.
func (o *options) merge(flags options, set map[string]bool) options {
	result := flags
	if len(result.Packages) == 0 {
		result.Packages = o.Packages
	}
	if !set["type"] {
		result.Types = o.Types
	}
	if !set["output_dir"] {
		result.OutputDir = o.OutputDir
	}
	if !set["include_tests"] {
		result.IncludeTests = o.IncludeTests
	}
	return result
}

func (o options) processorConfig(procs []processor.Processor, logger *zerolog.Logger) processor.Config {
	importPkgs := map[string]bool{}
	for _, pkgPath := range o.Packages {
		importPkgs[pkgPath] = o.IncludeTests
	}
	return processor.Config{
		ImportPkgs:    importPkgs,
		Processors:    procs,
		OutputFactory: processor.DefaultOutputFactory(o.OutputDir),
		Logger:        logger,
	}
}
