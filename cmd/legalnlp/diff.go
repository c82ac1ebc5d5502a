package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/phosphorco/legalnlp/internal/lnlp/snapshot"
	"github.com/phosphorco/legalnlp/internal/lnlp/snapshotdiff"
)

func runDiff(cmd *cobra.Command, args []string) error {
	oldPath, newPath := args[0], args[1]

	oldSnap, err := readSnapshot(oldPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", oldPath, err)
	}
	newSnap, err := readSnapshot(newPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", newPath, err)
	}

	result, err := snapshotdiff.Compare(oldSnap, newSnap, oldPath, newPath)
	if err != nil {
		return err
	}

	if len(result.Spans) == 0 {
		fmt.Println("no span differences")
	}
	for _, sd := range result.Spans {
		fmt.Printf("%s: +%d -%d ~%d\n", sd.TypeName, len(sd.Added), len(sd.Removed), len(sd.Changed))
	}
	if result.UnifiedFor != "" {
		fmt.Printf("\n%d hunk(s), +%d -%d lines\n", result.HunkCount, result.LinesAdded, result.LinesRemoved)
		fmt.Println(result.UnifiedFor)
	}
	return nil
}

func readSnapshot(path string) (*snapshot.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return snapshot.Parse(data)
}
