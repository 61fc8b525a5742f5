package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/anime-shed/localens-go/internal/analyzer"
	"github.com/anime-shed/localens-go/internal/config"
	"github.com/anime-shed/localens-go/internal/factory"
	"github.com/anime-shed/localens-go/internal/logger"
	"github.com/anime-shed/localens-go/internal/observer"
	"github.com/anime-shed/localens-go/internal/service"
	"github.com/anime-shed/localens-go/internal/storage"
	"github.com/anime-shed/localens-go/pkg/export"
	"github.com/anime-shed/localens-go/pkg/issueindex"
	"github.com/anime-shed/localens-go/pkg/models"
	"github.com/anime-shed/localens-go/pkg/validation"
)

type analyzeOptions struct {
	api       string
	provider  string
	inputType string
	strict    bool
	asJSON    bool
	alts      bool
	save      string
	filter    issueindex.Filter
	report    reportOptions
}

// reportOptions are shared by every command that writes a report
type reportOptions struct {
	format string
	name   string
	outDir string
}

func newAnalyzeCmd() *cobra.Command {
	o := &analyzeOptions{}
	var severity, issueType string
	cmd := &cobra.Command{
		Use:   "analyze <files...>",
		Short: "Analyze screenshots or one video for localization issues",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o.filter.Severity = models.Severity(severity)
			o.filter.Type = models.IssueType(issueType)
			return runAnalyze(cmd, args, o)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.api, "api", "", "analysis API base URL; the mock backend is used when empty and USE_MOCK is set")
	f.StringVarP(&o.provider, "provider", "p", string(models.ProviderGemini), "AI provider: gemini or claude")
	f.StringVarP(&o.inputType, "type", "t", "", "input type: image or video (detected from the files by default)")
	f.BoolVar(&o.strict, "strict", false, "fail instead of switching providers that cannot handle the input")
	f.BoolVar(&o.asJSON, "json", false, "print the raw result as JSON")
	f.BoolVar(&o.alts, "alternatives", false, "also fetch ranked shorter wordings for every listed issue")
	f.StringVar(&o.save, "save", "", "write the result JSON to this file")
	f.StringVar(&severity, "severity", "", "only list issues of this severity (HIGH, MEDIUM, LOW)")
	f.StringVar(&issueType, "issue-type", "", "only list issues of this type, e.g. TEXT_OVERFLOW")
	f.StringVar(&o.filter.File, "file", "", "only list issues found in this file")
	addReportFlags(cmd, &o.report, "")
	return cmd
}

func addReportFlags(cmd *cobra.Command, r *reportOptions, defaultFormat string) {
	cmd.Flags().StringVarP(&r.format, "export", "e", defaultFormat, "report format: json, csv or markdown")
	cmd.Flags().StringVar(&r.name, "name", export.DefaultBaseName, "report base name")
	cmd.Flags().StringVarP(&r.outDir, "out", "o", "", "write reports to this directory instead of REPORT_SINK")
}

func runAnalyze(cmd *cobra.Command, paths []string, o *analyzeOptions) error {
	cfg, backend, err := loadBackend(o.api)
	if err != nil {
		return err
	}
	uploads, err := readUploads(paths)
	if err != nil {
		return err
	}

	opts := analyzer.DefaultOptions().WithProvider(models.Provider(o.provider))
	if o.inputType != "" {
		opts = opts.WithInputType(models.InputType(o.inputType))
	}
	if o.strict {
		opts = opts.WithStrictProvider()
	}

	pub := observer.NewEventPublisher()
	pub.Subscribe(observer.NewLoggingObserver(logger.Logger))
	defer pub.Wait()

	svc := service.NewAnalysisService(backend,
		validation.NewFileValidatorWithLimits(cfg.MaxImageSize, cfg.MaxVideoSize), nil, pub)

	ctx, cancel := context.WithTimeout(commandContext(cmd), cfg.AnalysisTimeout)
	defer cancel()
	result, err := svc.Analyze(ctx, uploads, opts)
	if err != nil {
		return err
	}

	if o.save != "" {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(o.save, data, 0o644); err != nil {
			return fmt.Errorf("save result: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	if o.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	} else {
		listed := issueindex.FilterBy(result.AllIssues(), o.filter)
		writeSummary(out, result)
		if err := writeIssueTable(out, listed); err != nil {
			return err
		}
		if o.alts {
			alts := service.NewAlternativesService(backend, pub, cfg.Workers).Prefetch(ctx, listed)
			writeAlternatives(out, listed, alts)
		}
	}

	if o.report.format != "" {
		loc, err := storeReport(ctx, cfg, o.report, result.AllIssues())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", loc)
	}
	return nil
}

// loadBackend reads the environment and builds the backend. A non-empty api
// forces the remote client.
func loadBackend(api string) (*config.Config, analyzer.Backend, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if api != "" {
		cfg.UseMock = false
		cfg.APIBase = api
	}
	backend, err := factory.NewAnalyzerFactory(cfg).CreateBackend(factory.BackendTypeFor(cfg))
	if err != nil {
		return nil, nil, err
	}
	return cfg, backend, nil
}

func readUploads(paths []string) ([]models.Upload, error) {
	uploads := make([]models.Upload, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		uploads = append(uploads, models.Upload{
			Filename:    filepath.Base(p),
			ContentType: mime.TypeByExtension(filepath.Ext(p)),
			Data:        data,
		})
	}
	return uploads, nil
}

// storeReport renders issues and hands them to the configured sink, or to a
// local directory when r.outDir is set
func storeReport(ctx context.Context, cfg *config.Config, r reportOptions, issues []models.Issue) (string, error) {
	format, err := export.ParseFormat(r.format)
	if err != nil {
		return "", err
	}
	data, err := export.Render(issues, format)
	if err != nil {
		return "", err
	}

	var sink storage.ReportSink
	if r.outDir != "" {
		sink, err = storage.NewLocalSink(r.outDir)
	} else {
		sink, err = factory.NewStorageFactory(cfg).CreateStorage(factory.StorageType(cfg.ReportSink))
	}
	if err != nil {
		return "", err
	}
	return sink.Put(ctx, export.FileName(r.name, format), data, format.ContentType())
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
