package batch_test

import (
	"context"
	"strings"
	"testing"

	"github.com/phosphorco/legalnlp/internal/lnlp/batch"
	"github.com/phosphorco/legalnlp/internal/lnlp/document"
	"github.com/phosphorco/legalnlp/internal/lnlp/snapshot"
)

func countingAnalyzer(t *testing.T) batch.Analyzer {
	t.Helper()
	return func(doc *document.Document) (*snapshot.Snapshot, error) {
		if strings.Contains(doc.Lines[0].Line.Text(), "fail") {
			return nil, context.DeadlineExceeded
		}
		return &snapshot.Snapshot{Version: 1}, nil
	}
}

func TestRun_ProcessesAllJobsConcurrently(t *testing.T) {
	jobs := []batch.Job{
		{Name: "a", Text: "Tenant shall pay rent."},
		{Name: "b", Text: "Landlord shall maintain the property."},
		{Name: "c", Text: "This document should fail."},
	}

	results, err := batch.Run(context.Background(), jobs, countingAnalyzer(t), batch.Options{Concurrency: 2})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Err != nil || results[0].Snapshot == nil {
		t.Errorf("job a: expected success, got %+v", results[0])
	}
	if results[1].Err != nil || results[1].Snapshot == nil {
		t.Errorf("job b: expected success, got %+v", results[1])
	}
	if results[2].Err == nil {
		t.Errorf("job c: expected failure, got success")
	}
}

func TestRun_EmptyJobList(t *testing.T) {
	results, err := batch.Run(context.Background(), nil, countingAnalyzer(t), batch.Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}
