package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/phosphorco/legalnlp/internal/lnlp/batch"
	"github.com/phosphorco/legalnlp/internal/lnlp/snapshot"
)

func runBatch(cmd *cobra.Command, args []string) error {
	jobs := make([]batch.Job, 0, len(args))
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		jobs = append(jobs, batch.Job{Name: path, Text: string(data)})
	}

	results, err := batch.Run(context.Background(), jobs, analyze, batch.Options{Concurrency: batchConcurrency})
	if err != nil {
		return err
	}

	for _, r := range results {
		if r.Err != nil {
			logger.LogPipelineError("batch:"+r.Name, r.Err)
			fmt.Fprintf(os.Stderr, "%s: %v\n", r.Name, r.Err)
			continue
		}
		if err := writeBatchResult(r); err != nil {
			return err
		}
	}
	return nil
}

func writeBatchResult(r batch.Result) error {
	data, err := snapshot.Serialize(r.Snapshot)
	if err != nil {
		return err
	}
	if batchOutDir == "" {
		fmt.Printf("%s:\n%s\n", r.Name, data)
		return nil
	}
	if err := os.MkdirAll(batchOutDir, 0o755); err != nil {
		return err
	}
	outPath := filepath.Join(batchOutDir, filepath.Base(r.Name)+".snapshot.json")
	return os.WriteFile(outPath, data, 0o644)
}
