package resolver

import (
	"reflect"
	"testing"

	"github.com/phosphorco/legalnlp/internal/lnlp/attrstore"
	"github.com/phosphorco/legalnlp/internal/lnlp/cursor"
	"github.com/phosphorco/legalnlp/internal/lnlp/token"
)

type fakeKeyword struct{ Name string }
type fakeDefinedTerm struct{ Name string }

type keywordResolver struct{ ran *int }

func (r keywordResolver) Name() string             { return "keyword" }
func (r keywordResolver) Reads() []reflect.Type     { return nil }
func (r keywordResolver) Produces() []reflect.Type  { return []reflect.Type{attrstore.TypeOf[fakeKeyword]()} }
func (r keywordResolver) Run(sel cursor.Selection) error {
	*r.ran++
	typed := attrstore.For[fakeKeyword](sel.Store)
	typed.Insert(token.Range{Start: 0, End: 0}, fakeKeyword{Name: "Shall"}, nil)
	return nil
}

type definedTermResolver struct{ ran *int }

func (r definedTermResolver) Name() string            { return "defined-term" }
func (r definedTermResolver) Reads() []reflect.Type    { return []reflect.Type{attrstore.TypeOf[fakeKeyword]()} }
func (r definedTermResolver) Produces() []reflect.Type { return []reflect.Type{attrstore.TypeOf[fakeDefinedTerm]()} }
func (r definedTermResolver) Run(sel cursor.Selection) error {
	*r.ran++
	typed := attrstore.For[fakeDefinedTerm](sel.Store)
	typed.Insert(token.Range{Start: 1, End: 1}, fakeDefinedTerm{Name: "Company"}, nil)
	return nil
}

func TestBuild_ValidOrder(t *testing.T) {
	var n int
	p, err := Build("test", keywordResolver{ran: &n}, definedTermResolver{ran: &n})
	if err != nil {
		t.Fatalf("unexpected dependency error: %v", err)
	}
	if p.Name() != "test" {
		t.Fatalf("expected name test, got %v", p.Name())
	}
	if len(p.Resolvers()) != 2 {
		t.Fatalf("expected 2 resolvers, got %d", len(p.Resolvers()))
	}
}

func TestBuild_MissingDependency(t *testing.T) {
	var n int
	_, err := Build("test", definedTermResolver{ran: &n})
	if err == nil {
		t.Fatal("expected dependency error when defined-term runs before keyword")
	}
	depErr, ok := err.(*DependencyError)
	if !ok {
		t.Fatalf("expected *DependencyError, got %T", err)
	}
	if depErr.Resolver != "defined-term" {
		t.Fatalf("expected resolver name defined-term, got %v", depErr.Resolver)
	}
}

func TestPipeline_Run_InOrder(t *testing.T) {
	var n int
	p, err := Build("test", keywordResolver{ran: &n}, definedTermResolver{ran: &n})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	store := attrstore.New()
	line := token.NewLine("", []token.Token{
		{Text: "Shall", Class: token.ClassWord, Index: 0},
		{Text: "Company", Class: token.ClassWord, Index: 1},
	})
	sel := cursor.Whole(line, store)
	if err := p.Run(sel); err != nil {
		t.Fatalf("unexpected run error: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected both resolvers to run, ran count = %d", n)
	}
	if len(attrstore.For[fakeKeyword](store).ValuesAt(token.Range{Start: 0, End: 0})) != 1 {
		t.Fatal("expected keyword attribute to be inserted")
	}
	if len(attrstore.For[fakeDefinedTerm](store).ValuesAt(token.Range{Start: 1, End: 1})) != 1 {
		t.Fatal("expected defined-term attribute to be inserted")
	}
}
