package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/domgalati/tfind/pkg/config"
	"github.com/domgalati/tfind/pkg/detector"
	"github.com/domgalati/tfind/pkg/grammar"
)

// DetectOptions holds command-line options for the detect command.
type DetectOptions struct {
	ConfigPath string
	Output     string
	Sample     int
	Threshold  float64
	ShowAll    bool
}

// NewDetectCommand creates the detect command.
func NewDetectCommand() *cobra.Command {
	opts := &DetectOptions{}

	cmd := &cobra.Command{
		Use:   "detect <log-file>",
		Short: "Detect the timestamp format of a log file",
		Long: `Analyze a log file to automatically detect its timestamp format.

Samples lines from the file prefix and tests against common timestamp
patterns, reporting the detected format with a confidence score, a
sample match, and the anchor date that would complete time-only
timestamps.

Supports:
  - ISO 8601 variants (with/without timezone, fractional seconds)
  - Syslog format (BSD and with year)
  - Apache/NGINX common log format
  - Unix timestamps (seconds, milliseconds, microseconds)
  - Bracketed and space-separated datetime formats
  - Bare clock times

Example:
  tfind detect /var/log/myapp.log
  tfind detect --sample 500 /var/log/large.log
  tfind detect -o json /var/log/app.log`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Config file (default ~/.tfind.yaml)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().IntVarP(&opts.Sample, "sample", "n", 0, "Number of lines to sample")
	cmd.Flags().Float64Var(&opts.Threshold, "threshold", 0, "Minimum fraction of sampled lines the format must parse")
	cmd.Flags().BoolVar(&opts.ShowAll, "all", false, "Show all matching formats, not just the best")

	return cmd
}

func runDetect(cmd *cobra.Command, args []string, opts *DetectOptions) error {
	logFile := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	f, err := os.Open(logFile) // #nosec G304 -- the log file path is the tool's input
	if err != nil {
		return fail(cmd, err)
	}
	defer func() { _ = f.Close() }()

	dopts := []detector.Option{
		detector.WithGrammars(grammar.BuiltinWithEpoch(cfg.Epoch.Thresholds())),
		detector.WithSampleLines(cfg.Detect.SampleLines),
		detector.WithSampleBytes(cfg.Detect.SampleBytes),
		detector.WithThreshold(cfg.Detect.Threshold),
	}
	if opts.Sample > 0 {
		dopts = append(dopts, detector.WithSampleLines(opts.Sample))
	}
	if opts.Threshold > 0 {
		dopts = append(dopts, detector.WithThreshold(opts.Threshold))
	}

	result, err := detector.New(dopts...).Detect(ctx, f)
	if err != nil {
		return fail(cmd, fmt.Errorf("%s: %w", logFile, err))
	}

	switch opts.Output {
	case "json":
		return outputDetectJSON(cmd, result, logFile, opts)
	case "text":
		return outputDetectText(cmd, result, logFile, opts)
	default:
		return fmt.Errorf("unknown output format %q (use text or json)", opts.Output)
	}
}

func outputDetectText(cmd *cobra.Command, result *detector.Result, logFile string, opts *DetectOptions) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "File: %s\n", logFile)
	fmt.Fprintf(w, "Lines sampled: %d\n", result.SampledLines)
	fmt.Fprintf(w, "Lines with timestamps: %d\n", result.ParsedLines)
	fmt.Fprintln(w)

	sel := selectedMatch(result)
	fmt.Fprintf(w, "Detected format: %s\n", result.Grammar.Name)
	fmt.Fprintf(w, "Confidence: %.1f%% (%d/%d lines matched)\n",
		sel.Rate*100, sel.Count, result.SampledLines)
	fmt.Fprintf(w, "Sample match:\n  %s\n", sel.SampleLine)
	fmt.Fprintf(w, "Parsed as: %s\n", sel.SampleTime.Format("2006-01-02 15:04:05.000"))

	if result.Anchor.IsZero() {
		fmt.Fprintln(w, "Anchor date: none found")
	} else {
		fmt.Fprintf(w, "Anchor date: %s\n", result.Anchor)
	}

	if opts.ShowAll && len(result.Matches) > 1 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Alternative formats:")
		n := 2
		for _, m := range result.Matches {
			if m.Grammar == result.Grammar {
				continue
			}
			fmt.Fprintf(w, "%d. %s (%.1f%% confidence)\n", n, m.Grammar.Name, m.Rate*100)
			n++
		}
	}

	return nil
}

// selectedMatch returns the match stats for the grammar that won
// selection. Matches are sorted by rate for reporting while selection
// honors priority order, so the winner is not always Matches[0]: a more
// permissive pattern can out-match the specific one that was chosen.
func selectedMatch(result *detector.Result) detector.Match {
	for _, m := range result.Matches {
		if m.Grammar == result.Grammar {
			return m
		}
	}
	return result.Matches[0]
}

// detectJSONMatch is one format match in JSON output.
type detectJSONMatch struct {
	Name       string  `json:"name"`
	Pattern    string  `json:"pattern"`
	Layout     string  `json:"layout,omitempty"`
	Confidence float64 `json:"confidence"`
	MatchCount int     `json:"match_count"`
	SampleLine string  `json:"sample_line"`
}

// detectJSONOutput is the full JSON output of the detect command.
type detectJSONOutput struct {
	File         string            `json:"file"`
	Matches      []detectJSONMatch `json:"matches"`
	Anchor       string            `json:"anchor_date,omitempty"`
	SampledLines int               `json:"sampled_lines"`
	ParsedLines  int               `json:"parsed_lines"`
}

func outputDetectJSON(cmd *cobra.Command, result *detector.Result, logFile string, opts *DetectOptions) error {
	out := detectJSONOutput{
		File:         logFile,
		SampledLines: result.SampledLines,
		ParsedLines:  result.ParsedLines,
		Matches:      make([]detectJSONMatch, 0),
	}
	if !result.Anchor.IsZero() {
		out.Anchor = result.Anchor.String()
	}

	matches := result.Matches
	if !opts.ShowAll && len(matches) > 1 {
		matches = []detector.Match{selectedMatch(result)}
	}

	for _, m := range matches {
		out.Matches = append(out.Matches, detectJSONMatch{
			Name:       m.Grammar.Name,
			Pattern:    m.Grammar.Pattern.String(),
			Layout:     m.Grammar.Layout,
			Confidence: m.Rate,
			MatchCount: m.Count,
			SampleLine: m.SampleLine,
		})
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
