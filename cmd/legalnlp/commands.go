package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/phosphorco/legalnlp/internal/legal/pipeline"
	"github.com/phosphorco/legalnlp/internal/lnlp/document"
	"github.com/phosphorco/legalnlp/internal/lnlp/snapshot"
	"github.com/phosphorco/legalnlp/pkg/logging"
)

// --- Global flags ---
var (
	configPath string
	logger     *logging.Logger

	rootCmd = &cobra.Command{
		Use:   "legalnlp",
		Short: "Extract definitions, references, obligations, and accountability from contract text",
		Long: `legalnlp tokenizes contract text, runs it through a layered resolver
pipeline, and projects the result into a canonical, serializable snapshot
suitable for diffing, caching, and downstream tooling.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(configPath); err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger = logging.New(logging.Config{
				Service: "cli",
				LogDir:  cfg.LogDir,
				JSON:    cfg.LogJSON,
			})
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				logger.Close()
			}
		},
	}

	// --- analyze ---
	analyzeFile   string
	analyzeView   string
	analyzeJSON   bool
	analyzeRedact bool

	analyzeCmd = &cobra.Command{
		Use:     "analyze [text]",
		Short:   "Analyze contract text and print its snapshot",
		Aliases: []string{"a"},
		RunE:    runAnalyze,
	}

	// --- serve ---
	serveAddr         string
	serveCacheDir     string
	serveMetrics      bool
	serveDebugMetrics bool

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP/WebSocket analysis API",
		RunE:  runServe,
	}

	// --- diff ---
	diffCmd = &cobra.Command{
		Use:   "diff [old-snapshot] [new-snapshot]",
		Short: "Compare two serialized snapshots",
		Args:  cobra.ExactArgs(2),
		RunE:  runDiff,
	}

	// --- batch ---
	batchConcurrency int
	batchOutDir      string

	batchCmd = &cobra.Command{
		Use:   "batch [path...]",
		Short: "Analyze many documents concurrently",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runBatch,
	}

	// --- review ---
	reviewCmd = &cobra.Command{
		Use:   "review [path]",
		Short: "Interactively review a document's snapshot, live-updating on file changes",
		Args:  cobra.ExactArgs(1),
		RunE:  runReview,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to config.yaml")

	analyzeCmd.Flags().StringVarP(&analyzeFile, "file", "f", "", "read contract text from this file instead of the argument")
	analyzeCmd.Flags().StringVar(&analyzeView, "view", "semantic", "render view: semantic, annotated, or graph (ignored with --json)")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the raw serialized snapshot instead of a rendered view")
	analyzeCmd.Flags().BoolVar(&analyzeRedact, "redact", false, "replace each span's source description with [redacted] before printing")
	rootCmd.AddCommand(analyzeCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "bind address (defaults to config's serve_addr, then :8080)")
	serveCmd.Flags().StringVar(&serveCacheDir, "cache-dir", "", "badger cache directory (defaults to config's cache_dir, in-memory if unset)")
	serveCmd.Flags().BoolVar(&serveMetrics, "metrics", true, "expose GET /metrics")
	serveCmd.Flags().BoolVar(&serveDebugMetrics, "debug-metrics", false, "also dump metrics to stdout periodically")
	rootCmd.AddCommand(serveCmd)

	rootCmd.AddCommand(diffCmd)

	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 4, "maximum concurrent analyses")
	batchCmd.Flags().StringVar(&batchOutDir, "out", "", "write one serialized snapshot per input file to this directory instead of stdout")
	rootCmd.AddCommand(batchCmd)

	rootCmd.AddCommand(reviewCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	text, err := readAnalyzeInput(args)
	if err != nil {
		return err
	}

	doc, err := document.FromText(text)
	if err != nil {
		logger.LogPipelineError("tokenize", err)
		return err
	}
	snap, err := analyze(doc)
	if err != nil {
		logger.LogPipelineError("analyze", err)
		return err
	}
	if analyzeRedact {
		snap = snapshot.Redact(snap)
	}

	return printSnapshot(snap, analyzeJSON, analyzeView)
}

func readAnalyzeInput(args []string) (string, error) {
	if analyzeFile != "" {
		data, err := os.ReadFile(analyzeFile)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	if len(args) > 0 {
		return args[0], nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func printSnapshot(snap *snapshot.Snapshot, asJSON bool, view string) error {
	if asJSON {
		data, err := snapshot.Serialize(snap)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	reg := pipeline.SnapshotRegistry()
	rcfg := snapshot.DefaultRenderConfig()
	switch view {
	case "annotated":
		fmt.Print(snapshot.AnnotatedView(snap, rcfg))
	case "graph":
		fmt.Print(snapshot.GraphView(snap, reg, rcfg))
	case "semantic", "":
		fmt.Print(snapshot.SemanticView(snap, reg, rcfg))
	default:
		return fmt.Errorf("unknown view %q: want semantic, annotated, or graph", view)
	}
	return nil
}
