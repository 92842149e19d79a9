package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/mizuki-dev/subrefine/internal/config"
	"github.com/mizuki-dev/subrefine/internal/repository"
	"github.com/mizuki-dev/subrefine/internal/service/common"
	"github.com/mizuki-dev/subrefine/internal/service/dictionary"
	"github.com/mizuki-dev/subrefine/internal/service/learning"
	"github.com/mizuki-dev/subrefine/internal/service/pipeline"
	"github.com/mizuki-dev/subrefine/internal/service/review"
	"github.com/mizuki-dev/subrefine/internal/service/subtitle"
	"github.com/mizuki-dev/subrefine/internal/service/translation"
)

const reviewAttemptTimeout = 5 * time.Minute

// processCmd represents the process command
var processCmd = &cobra.Command{
	Use:   "process [TRANSCRIPT_FILE]",
	Short: "Run the full subtitle pipeline",
	Long: `Merge transcript and diarization intervals into segments, apply the
correction dictionary, translate, review, and write the refined subtitles.`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().String("diarization", "", "Diarization intervals file (JSON)")
	processCmd.Flags().String("output", "", "Output directory (defaults to output_dir from config)")
	processCmd.Flags().String("media-name", "", "Media name stored with the run (defaults to transcript file name)")
	processCmd.Flags().String("source-lang", "", "Source language code (overrides config)")
	processCmd.Flags().String("target-lang", "", "Target language code (overrides config)")
	processCmd.Flags().Bool("consolidate", false, "Merge adjacent same-speaker segments")
	processCmd.Flags().Float64("max-gap", 1.0, "Maximum gap in seconds when consolidating")
	processCmd.Flags().Float64("max-duration", 10.0, "Maximum segment duration in seconds when consolidating")
	processCmd.Flags().Bool("no-save", false, "Skip persisting run artifacts to the database")
	processCmd.Flags().Bool("subtitles-only", false, "Write only the source text to the subtitle file")
}

func runProcess(cmd *cobra.Command, args []string) error {
	transcriptPath := args[0]
	diarizationPath, _ := cmd.Flags().GetString("diarization")
	outputDir, _ := cmd.Flags().GetString("output")
	mediaName, _ := cmd.Flags().GetString("media-name")
	sourceLang, _ := cmd.Flags().GetString("source-lang")
	targetLang, _ := cmd.Flags().GetString("target-lang")
	consolidate, _ := cmd.Flags().GetBool("consolidate")
	maxGap, _ := cmd.Flags().GetFloat64("max-gap")
	maxDuration, _ := cmd.Flags().GetFloat64("max-duration")
	noSave, _ := cmd.Flags().GetBool("no-save")
	subtitlesOnly, _ := cmd.Flags().GetBool("subtitles-only")

	cfg, err := config.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if outputDir == "" {
		outputDir = cfg.OutputDir
	}
	if sourceLang == "" {
		sourceLang = cfg.SourceLang
	}
	if targetLang == "" {
		targetLang = cfg.TargetLang
	}
	if mediaName == "" {
		mediaName = strings.TrimSuffix(filepath.Base(transcriptPath), filepath.Ext(transcriptPath))
	}

	input, err := pipeline.LoadInput(transcriptPath, diarizationPath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	p, cleanup, err := buildPipeline(ctx, cfg, noSave)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := p.Run(ctx, input, pipeline.Options{
		MediaName:   mediaName,
		SourceLang:  sourceLang,
		TargetLang:  targetLang,
		Consolidate: consolidate,
		MaxGap:      maxGap,
		MaxDuration: maxDuration,
	})
	if err != nil {
		return err
	}

	resultPath := filepath.Join(outputDir, mediaName+".refined.json")
	if err := pipeline.WriteResult(resultPath, result); err != nil {
		return err
	}
	subtitlePath := filepath.Join(outputDir, mediaName+".ass")
	if err := subtitle.WriteFile(subtitlePath, result.Segments, !subtitlesOnly); err != nil {
		return err
	}

	cmd.Printf("\nProcessed %d segments (%d with issues, %d suggestions dropped in %d failed batches)\n",
		result.Stats.TotalSegments, result.Stats.SegmentsWithIssues,
		len(result.Suggestions), result.Stats.FailedBatches)
	cmd.Printf("Result: %s\n", resultPath)
	cmd.Printf("Subtitles: %s\n", subtitlePath)

	return nil
}

// buildPipeline wires repositories and services into a pipeline. The returned
// cleanup closes the database pool.
func buildPipeline(ctx context.Context, cfg *config.Config, noSave bool) (*pipeline.Pipeline, func(), error) {
	dbPool, err := config.NewDatabasePool(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	lockPath, err := config.LockFilePath()
	if err != nil {
		dbPool.Close()
		return nil, nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	client := common.NewHTTPClient(cfg.APIBaseURL, cfg.APIKey, cfg.Model)

	deps := assembleDeps(cfg, dbPool, client, &consoleSink{}, logger, noSave)
	deps.Lock = flock.New(lockPath)

	p, err := pipeline.New(deps)
	if err != nil {
		dbPool.Close()
		return nil, nil, err
	}

	cleanup := func() {
		dbPool.Close()
	}
	return p, cleanup, nil
}

// assembleDeps wires services and repositories over an open pool. The same
// progress sink feeds both the pipeline stage checkpoints and the per-check
// review notifications.
func assembleDeps(cfg *config.Config, pool repository.Pool, client common.Client, sink common.ProgressSink, logger *slog.Logger, noSave bool) pipeline.Deps {
	reviewer := review.NewReviewer(cfg.Workers, reviewAttemptTimeout, logger)
	aggregator := review.NewAggregator(reviewer, client, cfg.ReviewBatchSize, sink, logger)

	pendingRepo := repository.NewPendingRepository(pool)
	dictRepo := repository.NewDictionaryRepository(pool)

	deps := pipeline.Deps{
		Dictionary: dictRepo,
		Applier:    dictionary.NewApplier(),
		Translator: translation.NewService(client, cfg.TranslationBatchSize, logger),
		Aggregator: aggregator,
		Tracker:    learning.NewTracker(pendingRepo, dictRepo),
		Sink:       sink,
		Logger:     logger,
	}
	if !noSave {
		deps.Runs = repository.NewRunRepository(pool)
	}
	return deps
}

// consoleSink prints pipeline progress to stdout.
type consoleSink struct{}

func (s *consoleSink) Notify(label string, fraction float64) {
	fmt.Printf("[%3.0f%%] %s\n", fraction*100, label)
}
