package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jhump/attrdef/processor"
)

var (
	// Global flags
	cfgFile      string
	typeNames    []string
	includeTests bool
	outputDir    string
	verbose      bool

	watch bool
)

// rootCmd generates code when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "attrgen [flags] <package>...",
	Short: "Generate field definitions for attribute struct types",
	Long: `attrgen derives field definitions from struct types and generates code
to validate, extract and strip the corresponding attributes.

By default, every struct type with an @attrdef(...) attribute in its doc
comment is processed. Use --type to name the types instead.

Examples:
  attrgen github.com/foo/bar
  attrgen --type Server,Endpoint github.com/foo/bar
  attrgen --config attrgen.yaml --watch
  attrgen describe github.com/foo/bar`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE:         runGenerate,
}

// Execute runs the root command, exiting on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to a YAML file with packages and options;"+
		" flags given on the command-line take precedence")
	rootCmd.PersistentFlags().StringSliceVarP(&typeNames, "type", "t", nil, "names of the types to process")
	rootCmd.PersistentFlags().BoolVar(&includeTests, "include_tests", false, "process test files")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output_dir", "", "root directory where generated files are written;"+
		" like GOPATH, files are created under its 'src' sub-directory, organized by package path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-run whenever Go sources in the processed packages change")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	opts, err := resolveOptions(cmd, args)
	if err != nil {
		return err
	}
	logger := newLogger()

	processor.RegisterProcessor(processor.DeriveProcessor(opts.Types...))
	run := func() error {
		cfg := opts.processorConfig(processor.AllRegisteredProcessors(), &logger)
		return cfg.Execute()
	}

	if !watch {
		return run()
	}
	if err := run(); err != nil {
		logger.Error().Err(err).Msg("processing failed")
	}
	return watchPackages(opts.Packages, logger, run, nil)
}

// resolveOptions combines the flags, positional args and config file into the
// options for a run.
func resolveOptions(cmd *cobra.Command, args []string) (options, error) {
	opts := options{
		Packages:     args,
		Types:        typeNames,
		OutputDir:    outputDir,
		IncludeTests: includeTests,
	}
	if cfgFile != "" {
		cfg, err := loadConfig(cfgFile)
		if err != nil {
			return options{}, err
		}
		set := map[string]bool{}
		for _, name := range []string{"type", "output_dir", "include_tests"} {
			set[name] = cmd.Flags().Changed(name)
		}
		opts = cfg.merge(opts, set)
	}

	if len(opts.Packages) == 0 {
		return options{}, fmt.Errorf("must supply at least one package name")
	}
	if err := checkOutputDir(opts.OutputDir); err != nil {
		return options{}, err
	}
	return opts, nil
}

func checkOutputDir(dir string) error {
	if dir == "" {
		return nil
	}
	_, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return fmt.Errorf("specified directory, %s, does not exist", dir)
	} else if err != nil {
		return fmt.Errorf("failed to check specified directory, %s: %w", dir, err)
	}
	return nil
}

func newLogger() zerolog.Logger {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if verbose {
		return logger.Level(zerolog.DebugLevel)
	}
	return logger.Level(zerolog.InfoLevel)
}
