// qcparse parses one QC tool report into a normalized TSV table.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/seqpipe/qcparse/internal/parse"
	qctable "github.com/seqpipe/qcparse/internal/table"
)

var version = "dev"

const (
	exitSuccess = 0
	exitError   = 1
)

type config struct {
	tool       string
	sample     string
	inputFile  string
	outputFile string
	pretty     bool
}

func main() {
	os.Exit(run())
}

func run() int {
	cfg, done := parseFlags()
	if done {
		return exitSuccess
	}

	if cfg.tool == "" || cfg.sample == "" || cfg.inputFile == "" {
		fmt.Fprintln(os.Stderr, "error: -tool, -sample and -i are required")
		flag.Usage()
		return exitError
	}

	dataset, err := runTool(cfg.tool, cfg.sample, cfg.inputFile)
	if err != nil {
		if errors.Is(err, parse.ErrNoData) {
			fmt.Fprintf(os.Stderr, "%s: no data for sample %s\n", cfg.inputFile, cfg.sample)
			return exitSuccess
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return exitError
	}

	output, cleanup, err := openOutput(cfg.outputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return exitError
	}
	defer cleanup()

	if cfg.pretty {
		err = renderPretty(output, dataset)
	} else {
		err = qctable.WriteTSV(output, dataset)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return exitError
	}
	return exitSuccess
}

func parseFlags() (config, bool) {
	var cfg config
	var showVersion, showHelp bool

	flag.StringVar(&cfg.tool, "tool", "", "report format to parse (see -tools)")
	flag.StringVar(&cfg.sample, "sample", "", "sample identifier for the output row index")
	flag.StringVar(&cfg.inputFile, "i", "", "input report file")
	flag.StringVar(&cfg.outputFile, "o", "", "output file (default: stdout)")
	flag.BoolVar(&cfg.pretty, "pretty", false, "render a human-readable table instead of TSV")
	var showTools bool
	flag.BoolVar(&showTools, "tools", false, "list supported tools and exit")
	flag.BoolVar(&showVersion, "version", false, "show version and exit")
	flag.BoolVar(&showHelp, "h", false, "show help")

	flag.Usage = usage
	flag.Parse()

	if showHelp {
		flag.Usage()
		return cfg, true
	}
	if showVersion {
		fmt.Printf("qcparse version %s\n", version)
		return cfg, true
	}
	if showTools {
		fmt.Println(strings.Join(parse.ToolNames(), "\n"))
		return cfg, true
	}

	// Handle positional argument
	args := flag.Args()
	if len(args) > 0 && cfg.inputFile == "" {
		cfg.inputFile = args[0]
	}

	return cfg, false
}

func usage() {
	fmt.Fprintf(os.Stderr, `qcparse - normalize QC tool reports into tabular records

Usage:
  qcparse -tool <name> -sample <id> -i report.txt [-o out.tsv]

Options:
`)
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, `
Examples:
  qcparse -tool samtools_stats -sample s1 -i s1.stats.txt
  qcparse -tool fastqc_per_base_quality -sample s1 -i s1_fastqc.zip
  qcparse -tool atropos -sample s1 -i s1.trim.txt -pretty
`)
}

func runTool(tool, sample, path string) (qctable.Dataset, error) {
	if fn, ok := parse.RecordTool(tool); ok {
		return fn(sample, path)
	}
	if fn, ok := parse.TableTool(tool); ok {
		return fn(sample, path)
	}
	return nil, fmt.Errorf("unknown tool %q (see -tools)", tool)
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

func renderPretty(w io.Writer, d qctable.Dataset) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)

	header := table.Row{}
	for _, col := range d.Header() {
		header = append(header, col)
	}
	t.AppendHeader(header)

	for _, cells := range d.RowStrings() {
		row := table.Row{}
		for _, cell := range cells {
			row = append(row, cell)
		}
		t.AppendRow(row)
	}
	t.Render()
	return nil
}
