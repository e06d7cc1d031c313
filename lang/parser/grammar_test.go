package parser

import (
	"os"
	"testing"

	"golang.org/x/exp/ebnf"
)

// TestGrammar checks grammar.ebnf is self-consistent: every nonterminal it
// references is defined, and the whole thing is reachable from Program.
// Same technique as the teacher's lang/grammar/grammar_test.go.
func TestGrammar(t *testing.T) {
	f, err := os.Open("grammar.ebnf")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	g, err := ebnf.Parse("grammar.ebnf", f)
	if err != nil {
		t.Fatal(err)
	}
	if err := ebnf.Verify(g, "Program"); err != nil {
		t.Fatal(err)
	}
}
