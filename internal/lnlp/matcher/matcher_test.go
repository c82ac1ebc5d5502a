package matcher

import (
	"testing"

	"github.com/phosphorco/legalnlp/internal/lnlp/attrstore"
	"github.com/phosphorco/legalnlp/internal/lnlp/token"
)

// buildLine tokenizes a tiny fixed vocabulary of space-separated words into
// a token.Line, inserting a single whitespace token between each word. It
// does not attempt to be a general tokenizer; it only needs to produce
// predictable ranges for the patterns under test.
func buildLine(words ...string) token.Line {
	var toks []token.Token
	idx := 0
	pos := 0
	for i, w := range words {
		class := token.ClassWord
		if len(w) == 1 {
			r := []rune(w)[0]
			if r == '.' || r == ',' {
				class = token.ClassPunctuation
			} else if r == '$' {
				class = token.ClassSymbol
			}
		}
		toks = append(toks, token.Token{Text: w, Class: class, Start: pos, End: pos + len(w), Index: idx})
		idx++
		pos += len(w)
		if i != len(words)-1 {
			toks = append(toks, token.Token{Text: " ", Class: token.ClassWhitespace, Start: pos, End: pos + 1, Index: idx})
			idx++
			pos++
		}
	}
	return token.NewLine("", toks)
}

func TestTokenText_SkipsWhitespace(t *testing.T) {
	line := buildLine("Tenant", "shall")
	p := TokenText()
	val, ok := p.Match(line, nil, token.Range{Start: 0, End: 0})
	if !ok || val != "Tenant" {
		t.Fatalf("expected match Tenant, got %v %v", val, ok)
	}
	_, ok = p.Match(line, nil, token.Range{Start: 1, End: 1})
	if ok {
		t.Fatal("expected whitespace token to not match TokenText")
	}
}

func TestWhitespace(t *testing.T) {
	line := buildLine("a", "b")
	p := Whitespace()
	_, ok := p.Match(line, nil, token.Range{Start: 1, End: 1})
	if !ok {
		t.Fatal("expected whitespace match at index 1")
	}
	_, ok = p.Match(line, nil, token.Range{Start: 0, End: 0})
	if ok {
		t.Fatal("expected word token to not match Whitespace")
	}
}

func TestTextEquals(t *testing.T) {
	line := buildLine("Tenant", "SHALL")
	p := TextEquals("tenant", true)
	if _, ok := p.Match(line, nil, token.Range{Start: 0, End: 0}); !ok {
		t.Fatal("expected case-insensitive match")
	}
	p2 := TextEquals("tenant", false)
	if _, ok := p2.Match(line, nil, token.Range{Start: 0, End: 0}); ok {
		t.Fatal("expected case-sensitive mismatch")
	}
}

func TestTokenHasAny(t *testing.T) {
	line := buildLine("rent", ".")
	p := TokenHasAny([]rune{'.', ','})
	val, ok := p.Match(line, nil, token.Range{Start: 2, End: 2})
	if !ok || val != '.' {
		t.Fatalf("expected match on '.', got %v %v", val, ok)
	}
	if _, ok := p.Match(line, nil, token.Range{Start: 0, End: 0}); ok {
		t.Fatal("expected word token to not match TokenHasAny")
	}
}

type fakeDefinedTerm struct{ Name string }

func TestAttrEqAndAttr(t *testing.T) {
	line := buildLine("Tenant")
	store := attrstore.New()
	typed := attrstore.For[fakeDefinedTerm](store)
	rng := token.Range{Start: 0, End: 0}
	typed.Insert(rng, fakeDefinedTerm{Name: "Tenant"}, nil)

	eq := AttrEq(store, fakeDefinedTerm{Name: "Tenant"})
	if _, ok := eq.Match(line, store, rng); !ok {
		t.Fatal("expected AttrEq to match stored value")
	}
	neq := AttrEq(store, fakeDefinedTerm{Name: "Landlord"})
	if _, ok := neq.Match(line, store, rng); ok {
		t.Fatal("expected AttrEq to not match differing value")
	}

	any := Attr[fakeDefinedTerm]()
	val, ok := any.Match(line, store, rng)
	if !ok || val.Name != "Tenant" {
		t.Fatalf("expected Attr to return stored value, got %v %v", val, ok)
	}
}

func TestAll2(t *testing.T) {
	line := buildLine("Tenant")
	store := attrstore.New()
	rng := token.Range{Start: 0, End: 0}
	attrstore.For[fakeDefinedTerm](store).Insert(rng, fakeDefinedTerm{Name: "Tenant"}, nil)

	combined := All2(TokenText(), Attr[fakeDefinedTerm]())
	val, ok := combined.Match(line, store, rng)
	if !ok {
		t.Fatal("expected All2 to match when both patterns match same range")
	}
	if val.A != "Tenant" || val.B.Name != "Tenant" {
		t.Fatalf("unexpected pair %+v", val)
	}
}

func TestSeq2(t *testing.T) {
	line := buildLine("the", "Tenant")
	seq := Seq2(TextEquals("the", true), Whitespace())
	val, ok := seq.Match(line, nil, token.Range{Start: 0, End: 0})
	if !ok {
		t.Fatal("expected Seq2 to match 'the' followed by whitespace")
	}
	if val.A != "the" {
		t.Fatalf("expected A = the, got %v", val.A)
	}
	if seq.Width != 2 {
		t.Fatalf("expected combined width 2, got %d", seq.Width)
	}

	// Out of bounds: starting at the last token leaves no room for the
	// second sub-pattern.
	if _, ok := seq.Match(line, nil, token.Range{Start: 2, End: 2}); ok {
		t.Fatal("expected Seq2 to fail when second sub-range is out of bounds")
	}
}

func TestNot(t *testing.T) {
	line := buildLine("Tenant")
	inv := Not(TextEquals("Landlord", false))
	if _, ok := inv.Match(line, nil, token.Range{Start: 0, End: 0}); !ok {
		t.Fatal("expected Not to match when inner pattern fails")
	}
	inv2 := Not(TextEquals("Tenant", false))
	if _, ok := inv2.Match(line, nil, token.Range{Start: 0, End: 0}); ok {
		t.Fatal("expected Not to fail when inner pattern matches")
	}
}
