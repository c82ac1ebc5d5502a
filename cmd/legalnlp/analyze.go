package main

import (
	"github.com/phosphorco/legalnlp/internal/legal/pipeline"
	"github.com/phosphorco/legalnlp/internal/lnlp/cursor"
	"github.com/phosphorco/legalnlp/internal/lnlp/document"
	"github.com/phosphorco/legalnlp/internal/lnlp/snapshot"
)

// analyze runs the standard resolver preset over every line of doc and
// builds the resulting Component H snapshot. It is the Analyzer every
// subcommand and the serve/batch packages close over, so the resolver
// chain is wired in exactly one place.
func analyze(doc *document.Document) (*snapshot.Snapshot, error) {
	p, err := pipeline.NewStandard()
	if err != nil {
		return nil, err
	}

	lines := make([]string, len(doc.Lines))
	for i, dl := range doc.Lines {
		sel := cursor.Whole(dl.Line, dl.Store)
		if err := p.Run(sel); err != nil {
			return nil, err
		}
		lines[i] = dl.Line.Text()
	}

	reg := pipeline.SnapshotRegistry()
	return snapshot.Build(doc, reg, snapshot.InlineInput(lines))
}
