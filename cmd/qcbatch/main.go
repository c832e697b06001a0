// qcbatch parses one QC report per sample across a whole batch and
// writes the aggregated per-sample table.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/seqpipe/qcparse/internal/batch"
	"github.com/seqpipe/qcparse/internal/parse"
	"github.com/seqpipe/qcparse/internal/table"
)

var version = "dev"

const (
	exitSuccess = 0
	exitError   = 1
)

type config struct {
	manifestFile string
	tool         string
	outputFile   string
	workers      int
	verbose      bool
}

// manifest is the YAML batch description: the tool to run and the
// per-sample report files.
type manifest struct {
	Tool    string      `yaml:"tool"`
	Samples []batch.Job `yaml:"samples"`
}

func main() {
	os.Exit(run())
}

func run() int {
	cfg, done := parseFlags()
	if done {
		return exitSuccess
	}

	level := slog.LevelInfo
	if cfg.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if cfg.manifestFile == "" {
		fmt.Fprintln(os.Stderr, "error: -manifest is required")
		flag.Usage()
		return exitError
	}

	m, err := loadManifest(cfg.manifestFile)
	if err != nil {
		logger.Error("cannot load manifest", "error", err)
		return exitError
	}
	tool := cfg.tool
	if tool == "" {
		tool = m.Tool
	}
	fn, ok := parse.RecordTool(tool)
	if !ok {
		logger.Error("unknown or non-aggregatable tool", "tool", tool)
		return exitError
	}

	logger.Debug("starting batch", "tool", tool, "samples", len(m.Samples), "workers", cfg.workers)
	results, err := batch.Run(context.Background(), m.Samples, batch.RecordFunc(fn), cfg.workers)
	if err != nil {
		logger.Error("batch failed", "error", err)
		return exitError
	}
	for _, res := range results {
		if res.Skipped {
			logger.Warn("no data, sample skipped", "sample", res.Job.Sample, "path", res.Job.Path)
		} else {
			logger.Debug("parsed", "sample", res.Job.Sample)
		}
	}

	output, cleanup, err := openOutput(cfg.outputFile)
	if err != nil {
		logger.Error("cannot open output", "error", err)
		return exitError
	}
	defer cleanup()

	if err := table.WriteTSV(output, batch.Aggregate(results)); err != nil {
		logger.Error("cannot write aggregate table", "error", err)
		return exitError
	}
	return exitSuccess
}

func parseFlags() (config, bool) {
	var cfg config
	var showVersion, showHelp bool

	flag.StringVar(&cfg.manifestFile, "manifest", "", "YAML manifest of samples and report paths")
	flag.StringVar(&cfg.tool, "tool", "", "report format to parse (overrides the manifest)")
	flag.StringVar(&cfg.outputFile, "o", "", "output file (default: stdout)")
	flag.IntVar(&cfg.workers, "w", 0, "parse workers (default: NumCPU)")
	flag.BoolVar(&cfg.verbose, "v", false, "verbose logging")
	flag.BoolVar(&showVersion, "version", false, "show version and exit")
	flag.BoolVar(&showHelp, "h", false, "show help")

	flag.Usage = usage
	flag.Parse()

	if showHelp {
		flag.Usage()
		return cfg, true
	}
	if showVersion {
		fmt.Printf("qcbatch version %s\n", version)
		return cfg, true
	}
	return cfg, false
}

func usage() {
	fmt.Fprintf(os.Stderr, `qcbatch - aggregate QC reports across samples

Usage:
  qcbatch -manifest samples.yaml [-tool <name>] [-o aggregate.tsv]

Manifest format:
  tool: samtools_stats
  samples:
    - sample: s1
      path: reports/s1.stats.txt
    - sample: s2
      path: reports/s2.stats.txt

Options:
`)
	flag.PrintDefaults()
}

func loadManifest(path string) (*manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read manifest: %w", err)
	}
	var m manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("cannot parse manifest: %w", err)
	}
	if len(m.Samples) == 0 {
		return nil, fmt.Errorf("manifest %s lists no samples", path)
	}
	return &m, nil
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "" || path == "-" {
		bw := bufio.NewWriterSize(os.Stdout, 1<<20)
		return bw, func() { _ = bw.Flush() }, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot create output: %w", err)
	}
	bw := bufio.NewWriterSize(f, 1<<20)
	return bw, func() { _ = bw.Flush(); _ = f.Close() }, nil
}
