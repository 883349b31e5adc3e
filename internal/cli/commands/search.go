package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/domgalati/tfind/pkg/config"
	"github.com/domgalati/tfind/pkg/grammar"
	"github.com/domgalati/tfind/pkg/locator"
	"github.com/domgalati/tfind/pkg/output"
	"github.com/domgalati/tfind/pkg/search"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

// SearchOptions holds command-line options for the root search command.
type SearchOptions struct {
	ConfigPath string
	Pattern    string
	Layout     string
	Example    string
	Highlight  string
	Color      string
	Sample     int
	Threshold  float64
	ScanCap    int
}

// AddFlags registers the search flags on a command.
func (o *SearchOptions) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.ConfigPath, "config", "c", "", "Config file (default ~/.tfind.yaml)")
	cmd.Flags().StringVar(&o.Pattern, "pattern", "", "Timestamp regex, first capture group is the timestamp (requires --layout)")
	cmd.Flags().StringVar(&o.Layout, "layout", "", "Go time layout for --pattern")
	cmd.Flags().StringVar(&o.Example, "example", "", "Sample timestamp to derive the format from")
	cmd.Flags().StringVar(&o.Highlight, "highlight", "", fmt.Sprintf("Highlight color for timestamps (%v)", output.ColorNames()))
	cmd.Flags().StringVar(&o.Color, "color", "", "When to colorize output (auto|always|never)")
	cmd.Flags().IntVarP(&o.Sample, "sample", "n", 0, "Number of lines sampled for format detection")
	cmd.Flags().Float64Var(&o.Threshold, "threshold", 0, "Minimum fraction of sampled lines the format must parse")
	cmd.Flags().IntVar(&o.ScanCap, "scan-cap", 0, "Max lines scanned forward past a probe for a timestamp")
}

// RunSearch implements `tfind <logfile> <start> <end>`: detect the
// timestamp format, binary-search for the boundary lines, and print
// every line in the range.
//
// Exit codes:
//
//	0 - Range printed (possibly empty)
//	1 - Format undetected, no timestamps, no anchor date, unparseable
//	    boundary, or an I/O failure on the log file
//	2 - Usage or configuration error
func RunSearch(cmd *cobra.Command, args []string, opts *SearchOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadSearchConfig(cmd, opts)
	if err != nil {
		return err
	}

	explicit, err := cfg.Format.Explicit()
	if err != nil {
		return fmt.Errorf("building timestamp format: %w", err)
	}

	mode, err := output.ParseColorMode(cfg.Output.Color)
	if err != nil {
		return err
	}

	logFile := args[0]
	rawStart, rawEnd := args[1], args[2]

	f, err := os.Open(logFile) // #nosec G304 -- the log file path is the tool's input
	if err != nil {
		return fail(cmd, err)
	}
	defer func() { _ = f.Close() }()

	// A time-only boundary cannot be completed without a dated line
	// somewhere in the file, so force the detector to find one.
	anchorRequired := grammar.IsTimeOnly(rawStart) || grammar.IsTimeOnly(rawEnd)

	epoch := cfg.Epoch.Thresholds()
	sc, err := search.DetectFormat(ctx, f, search.DetectOptions{
		Explicit:       explicit,
		Grammars:       grammar.BuiltinWithEpoch(epoch),
		SampleLines:    cfg.Detect.SampleLines,
		SampleBytes:    cfg.Detect.SampleBytes,
		Threshold:      cfg.Detect.Threshold,
		AnchorRequired: anchorRequired,
		Epoch:          epoch,
	})
	if err != nil {
		return fail(cmd, fmt.Errorf("%s: %w", logFile, err))
	}

	start, err := search.ParseBoundary(sc, rawStart)
	if err != nil {
		return fail(cmd, fmt.Errorf("start boundary %q: %w", rawStart, err))
	}
	end, err := search.ParseBoundary(sc, rawEnd)
	if err != nil {
		return fail(cmd, fmt.Errorf("end boundary %q: %w", rawEnd, err))
	}
	if end.Compare(start) < 0 {
		start, end = end, start
	}

	startOffset, inverted, err := search.LocateInstant(f, sc, start, locator.LowerBound, cfg.Search.ScanCap)
	if err != nil {
		return fail(cmd, fmt.Errorf("locating start of range: %w", err))
	}

	s, err := search.StreamRange(f, startOffset, end, sc)
	if err != nil {
		return fail(cmd, err)
	}

	enabled := output.Enabled(mode, os.Stdout)
	r, err := output.NewRenderer(cmd.OutOrStdout(), sc.Grammar, cfg.Output.Highlight, enabled)
	if err != nil {
		return err
	}

	for {
		line, err := s.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fail(cmd, fmt.Errorf("reading %s: %w", logFile, err))
		}
		if err := r.Render(line); err != nil {
			return fail(cmd, err)
		}
	}

	if inverted || s.ObservedInversion() {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s has out-of-order timestamps; the range may be incomplete\n", logFile)
	}

	return nil
}

// loadSearchConfig loads the config file and layers flag overrides on
// top, re-validating the merged result.
func loadSearchConfig(cmd *cobra.Command, opts *SearchOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("pattern") {
		cfg.Format.Pattern = opts.Pattern
	}
	if flags.Changed("layout") {
		cfg.Format.Layout = opts.Layout
	}
	if flags.Changed("example") {
		cfg.Format.Example = opts.Example
	}
	if flags.Changed("highlight") {
		cfg.Output.Highlight = opts.Highlight
	}
	if flags.Changed("color") {
		cfg.Output.Color = opts.Color
	}
	if flags.Changed("sample") {
		cfg.Detect.SampleLines = opts.Sample
	}
	if flags.Changed("threshold") {
		cfg.Detect.Threshold = opts.Threshold
	}
	if flags.Changed("scan-cap") {
		cfg.Search.ScanCap = opts.ScanCap
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// fail reports a fatal error on a well-formed invocation: the message
// goes to stderr and the process exits 1, distinct from the usage
// errors cobra reports with exit 2.
func fail(cmd *cobra.Command, err error) error {
	fmt.Fprintf(cmd.ErrOrStderr(), "tfind: %v\n", err)
	ExitCode = 1
	return nil
}
