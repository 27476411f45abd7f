package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dd-tools/databook/pkg/export"
	"github.com/dd-tools/databook/pkg/models/domain"
	"github.com/dd-tools/databook/pkg/services/config"
	"github.com/dd-tools/databook/pkg/services/engine"
	"github.com/dd-tools/databook/pkg/services/fec"
	"github.com/dd-tools/databook/pkg/services/mapper"
	"github.com/dd-tools/databook/pkg/services/qoe"
)

type AnalyzeCmd struct {
	files          []string
	mappingPath    string
	qoePath        string
	format         string
	errorThreshold float64
	settings       *config.Settings
	output         io.Writer
}

func NewAnalyzeCmd(settings *config.Settings, output io.Writer) *cobra.Command {
	ac := &AnalyzeCmd{settings: settings, output: output}
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Parse FEC files and build the multi-year databook",
		RunE:  ac.run,
	}

	cmd.Flags().StringSliceVar(&ac.files, "file", nil, "FEC file to analyze (repeatable)")
	cmd.Flags().StringVar(&ac.mappingPath, "mapping", "", "Custom account mapping file (YAML)")
	cmd.Flags().StringVar(&ac.qoePath, "qoe", "", "Quality-of-earnings adjustments file (YAML)")
	cmd.Flags().StringVar(&ac.format, "format", "text", "Output format: text, json or csv")
	cmd.Flags().Float64Var(&ac.errorThreshold, "error-threshold", fec.DefaultErrorThreshold,
		"Percentage of rejected rows above which a file fails")

	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func (ac *AnalyzeCmd) run(cmd *cobra.Command, args []string) error {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	accountMapper := mapper.NewDefault()
	if ac.mappingPath != "" {
		m, err := mapper.LoadFile(ac.mappingPath)
		if err != nil {
			return fmt.Errorf("failed to load account mapping: %w", err)
		}
		accountMapper = m
	}

	var adjustments qoe.Adjustments
	if ac.qoePath != "" {
		adj, err := qoe.Load(ac.qoePath)
		if err != nil {
			return fmt.Errorf("failed to load adjustments: %w", err)
		}
		adjustments = adj
	}

	var entries []domain.JournalEntry
	for _, path := range ac.files {
		result, err := fec.NewParser(path).WithErrorThreshold(ac.errorThreshold).Parse()
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if result.HasErrors() {
			logger.Warn().
				Str("file", path).
				Int("rejected", len(result.Errors)).
				Float64("success_rate", result.SuccessRate()).
				Msg("rows rejected during parsing")
		}
		entries = append(entries, result.Entries...)
	}

	opts := engine.AnalyzerOptions{
		Mapper:         accountMapper,
		QoEAdjustments: adjustments,
	}
	if ac.settings != nil {
		opts.VATRate = ac.settings.VATRateDecimal()
		opts.TrialBalanceTolerance = ac.settings.TrialBalanceToleranceDecimal()
	}
	analysis := engine.NewAnalyzer(opts).Run(ctx, entries)

	format := export.Format(ac.format)
	if !format.Supported() {
		return fmt.Errorf("unsupported format %q (want text, json or csv)", ac.format)
	}
	switch format {
	case export.FormatJSON:
		return export.NewJSONWriter(ac.output).Handle(analysis)
	case export.FormatCSV:
		return export.NewCSVWriter(ac.output).Handle(analysis)
	default:
		return export.NewReporter(ac.output).Handle(analysis)
	}
}
