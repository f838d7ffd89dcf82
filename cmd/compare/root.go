package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/RishiKendai/textaegis/internal/config"
	"github.com/RishiKendai/textaegis/internal/logger"
	"github.com/RishiKendai/textaegis/internal/plagiarism"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type compareFlags struct {
	window      int
	threshold   int
	exclude     int
	color       bool
	strategy    string
	cacheSize   int
	cachePolicy string
	configPath  string
	summary     bool
	logLevel    string
}

func newRootCommand() *cobra.Command {
	var flags compareFlags
	defaults := plagiarism.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "compare [file1 [file2 [outfile]]]",
		Short: "Compare two text files for similarities",
		Long: `Compare two text files for similarities.

A missing input file, or "-", is read from standard input. Matches are
written to outfile, or to standard output when it is missing or "-".`,
		Args:          cobra.MaximumNArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(cmd, args, &flags)
		},
	}

	f := cmd.Flags()
	f.IntVarP(&flags.window, "range", "r", defaults.WindowSize, "number of words to compare at a time")
	f.IntVarP(&flags.threshold, "threshold", "t", defaults.Threshold, "minimum number of matching words to identify a similarity in a range")
	f.IntVarP(&flags.exclude, "exclude", "e", defaults.ExcludeCount, "exclude the e most common english words from similarity")
	f.BoolVarP(&flags.color, "color", "c", defaults.Highlight, "output similarities in color")
	f.StringVar(&flags.strategy, "strategy", string(defaults.Strategy), "window strategy: sliding or partition")
	f.IntVar(&flags.cacheSize, "cache-size", defaults.CacheSize, "maximum number of cached window alignments")
	f.StringVar(&flags.cachePolicy, "cache-policy", string(defaults.CachePolicy), "cache eviction policy: lru or clear")
	f.StringVar(&flags.configPath, "config", "", "TOML file with a [matching] table")
	f.BoolVar(&flags.summary, "summary", false, "print a similarity summary table to stderr")
	f.StringVar(&flags.logLevel, "log-level", "", "log level (defaults to LOG_LEVEL or info)")

	return cmd
}

// loadConfig layers environment, config file and explicitly set flags
func loadConfig(cmd *cobra.Command, flags *compareFlags) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.LoadFile(flags.configPath); err != nil {
		return nil, err
	}

	f := cmd.Flags()
	if f.Changed("range") {
		cfg.Matching.WindowSize = flags.window
	}
	if f.Changed("threshold") {
		cfg.Matching.Threshold = flags.threshold
	}
	if f.Changed("exclude") {
		cfg.Matching.ExcludeCount = flags.exclude
	}
	if f.Changed("color") {
		cfg.Matching.Highlight = flags.color
	}
	if f.Changed("strategy") {
		cfg.Matching.Strategy = plagiarism.Strategy(flags.strategy)
	}
	if f.Changed("cache-size") {
		cfg.Matching.CacheSize = flags.cacheSize
	}
	if f.Changed("cache-policy") {
		cfg.Matching.CachePolicy = plagiarism.CachePolicy(flags.cachePolicy)
	}
	if f.Changed("log-level") {
		cfg.LogLevel = flags.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runCompare(cmd *cobra.Command, args []string, flags *compareFlags) (err error) {
	cfg, err := loadConfig(cmd, flags)
	if err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	logger.InitWithWriter(cfg.LogLevel, true, stderr)
	for _, warning := range cfg.Matching.Warnings() {
		log.Warn().Err(warning).Msg("No match can be reported with these options")
	}

	matcher := plagiarism.NewMatcher(cfg.Matching)
	normalizer := matcher.Normalizer()

	doc1, err := readDocument(cmd, argAt(args, 0), "FILE1", normalizer)
	if err != nil {
		return err
	}
	doc2, err := readDocument(cmd, argAt(args, 1), "FILE2", normalizer)
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(cmd, argAt(args, 2))
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, closeOut())
	}()

	if cfg.Matching.Highlight && !isTerminal(out) {
		log.Warn().Msg("Color output is enabled but the output is not a terminal")
	}

	formatter := plagiarism.NewFormatter(cfg.Matching)
	w := bufio.NewWriter(out)
	var matches []plagiarism.Match
	err = matcher.Each(doc1, doc2, func(match plagiarism.Match) error {
		matches = append(matches, match)
		return formatter.Write(w, match, doc1, doc2)
	})
	if flushErr := w.Flush(); err == nil && flushErr != nil {
		err = fmt.Errorf("failed to write output: %w", flushErr)
	}
	if err != nil {
		return err
	}

	stats := matcher.CacheStats()
	log.Debug().
		Int("tokens1", doc1.Len()).
		Int("tokens2", doc2.Len()).
		Uint64("comparisons", matcher.Comparisons()).
		Uint64("cacheHits", stats.Hits).
		Uint64("cacheMisses", stats.Misses).
		Uint64("cacheEvictions", stats.Evictions).
		Msg("Comparison finished")
	if len(matches) == 0 {
		log.Info().Msg("No matches found")
	}

	if flags.summary {
		summary := plagiarism.Summarize(matches, doc1, doc2)
		fmt.Fprintln(stderr, renderSummary(summary, stats))
	}
	return nil
}

func argAt(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

// readDocument parses path, or standard input when path is empty or "-"
func readDocument(cmd *cobra.Command, path, label string, n *plagiarism.Normalizer) (*plagiarism.Document, error) {
	if path == "" || path == "-" {
		in := cmd.InOrStdin()
		if isTerminal(in) {
			fmt.Fprintf(cmd.ErrOrStderr(), "Enter %s text, finish with Ctrl-D:\n", label)
		}
		doc, err := plagiarism.ParseDocument(in, n)
		if err != nil {
			return nil, fmt.Errorf("read %s from stdin: %w", label, err)
		}
		return doc, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", label, err)
	}
	defer file.Close()

	doc, err := plagiarism.ParseDocument(file, n)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return doc, nil
}

// openOutput returns the report destination and a function releasing it
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	return file, file.Close, nil
}
