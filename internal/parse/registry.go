package parse

import (
	"sort"

	"github.com/seqpipe/qcparse/internal/table"
)

// RecordFunc is a parser producing one record per report.
type RecordFunc func(sample, path string) (*table.Record, error)

// TableFunc is a parser producing a multi-row table per report.
type TableFunc func(sample, path string) (*table.Table, error)

// recordTools maps public tool names to single-record parsers.
var recordTools = map[string]RecordFunc{
	"atropos": func(sample, path string) (*table.Record, error) {
		rec, _, err := Atropos(sample, path)
		return rec, err
	},
	"samtools_stats":          SamtoolsStats,
	"bamtools_stats":          BamtoolsStats,
	"fastq_screen":            FastqScreen,
	"featurecounts_summary":   FeatureCountsSummary,
	"picard_rnaseq_summary":   PicardRnaSeqSummary,
	"picard_rnaseq_hist":      PicardRnaSeqHist,
	"rseqc_infer_experiment":  RseqcInferExperiment,
	"rseqc_bam_stat":          RseqcBamStat,
	"rseqc_genebody_coverage": RseqcGeneBodyCoverage,
	"rseqc_tin":               RseqcTIN,
	"fastqc_summary": fastqcRecord(func(r *FastQCReport) (*table.Record, error) {
		return r.Summary(), nil
	}),
	"fastqc_basic_stats":     fastqcRecord((*FastQCReport).BasicStats),
	"fastqc_per_seq_quality": fastqcRecord((*FastQCReport).PerSequenceQuality),
}

// tableTools maps public tool names to multi-row table parsers.
var tableTools = map[string]TableFunc{
	"atropos_lengths": func(sample, path string) (*table.Table, error) {
		_, hist, err := Atropos(sample, path)
		if err != nil {
			return nil, err
		}
		if hist == nil {
			return nil, ErrNoData
		}
		return hist, nil
	},
	"dupradar":                    Dupradar,
	"featurecounts":               FeatureCountsCounts,
	"picard_markduplicates":       PicardMarkDuplicates,
	"fastqc_per_base_quality":     fastqcTable((*FastQCReport).PerBaseQuality),
	"fastqc_adapter_content":      fastqcTable((*FastQCReport).AdapterContent),
	"fastqc_per_base_seq_content": fastqcTable((*FastQCReport).PerBaseSeqContent),
	"fastqc_per_base_n_content":   fastqcTable((*FastQCReport).PerBaseNContent),
	"fastqc_sequence_length":      fastqcTable((*FastQCReport).SequenceLengthDistribution),
	"fastqc_overrepresented_seq":  fastqcTable((*FastQCReport).OverrepresentedSequences),
	"fastqc_per_seq_gc_content":   fastqcTable((*FastQCReport).PerSequenceGC),
	"fastqc_seq_dup_levels":       fastqcTable((*FastQCReport).SequenceDuplicationLevels),
	"fastqc_kmer_content":         fastqcTable((*FastQCReport).KmerContent),
}

func fastqcRecord(f func(*FastQCReport) (*table.Record, error)) RecordFunc {
	return func(sample, path string) (*table.Record, error) {
		r, err := ParseFastQC(sample, path)
		if err != nil {
			return nil, err
		}
		return f(r)
	}
}

func fastqcTable(f func(*FastQCReport) (*table.Table, error)) TableFunc {
	return func(sample, path string) (*table.Table, error) {
		r, err := ParseFastQC(sample, path)
		if err != nil {
			return nil, err
		}
		return f(r)
	}
}

// RecordTool looks up a single-record parser by public tool name.
func RecordTool(name string) (RecordFunc, bool) {
	fn, ok := recordTools[name]
	return fn, ok
}

// TableTool looks up a multi-row table parser by public tool name.
func TableTool(name string) (TableFunc, bool) {
	fn, ok := tableTools[name]
	return fn, ok
}

// ToolNames returns every registered tool name, sorted.
func ToolNames() []string {
	names := make([]string, 0, len(recordTools)+len(tableTools))
	for name := range recordTools {
		names = append(names, name)
	}
	for name := range tableTools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
