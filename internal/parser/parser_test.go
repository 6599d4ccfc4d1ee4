package parser_test

import (
	"errors"
	"os"
	"strings"
	"testing"

	"bfc/internal/ast"
	"bfc/internal/lexer"
	"bfc/internal/parser"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// parseInput scans and parses source, failing the test on any error.
func parseInput(t *testing.T, input string) []ast.Node {
	t.Helper()
	symbols := lexer.Scan(strings.NewReader(input), "test.bf", "/tmp")
	nodes, err := parser.Parse(symbols)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	return nodes
}

// parseBad scans and parses source that is expected to fail, returning the
// positional error.
func parseBad(t *testing.T, input string) *parser.UnmatchedLoopError {
	t.Helper()
	symbols := lexer.Scan(strings.NewReader(input), "test.bf", "/tmp")
	nodes, err := parser.Parse(symbols)
	if err == nil {
		t.Fatalf("expected parse error, got %d nodes", len(nodes))
	}
	if nodes != nil {
		t.Fatalf("failed parse should produce no tree, got %d nodes", len(nodes))
	}
	var unmatched *parser.UnmatchedLoopError
	if !errors.As(err, &unmatched) {
		t.Fatalf("error type: got %T, want *parser.UnmatchedLoopError", err)
	}
	return unmatched
}

func kindName(n ast.Node) string {
	switch n.(type) {
	case *ast.IncPtr:
		return "IncPtr"
	case *ast.DecPtr:
		return "DecPtr"
	case *ast.Increment:
		return "Increment"
	case *ast.Decrement:
		return "Decrement"
	case *ast.Output:
		return "Output"
	case *ast.Input:
		return "Input"
	case *ast.Loop:
		return "Loop"
	default:
		return "<unknown>"
	}
}

func maxDepth(nodes []ast.Node) int {
	depth := 0
	for _, n := range nodes {
		if loop, ok := n.(*ast.Loop); ok {
			if d := 1 + maxDepth(loop.Body); d > depth {
				depth = d
			}
		}
	}
	return depth
}

// ---------------------------------------------------------------------------
// Structure
// ---------------------------------------------------------------------------

func TestFlatProgram(t *testing.T) {
	nodes := parseInput(t, "+-><.,")
	expected := []string{"Increment", "Decrement", "IncPtr", "DecPtr", "Output", "Input"}
	if len(nodes) != len(expected) {
		t.Fatalf("node count: got %d, want %d", len(nodes), len(expected))
	}
	for i, exp := range expected {
		if kindName(nodes[i]) != exp {
			t.Errorf("node[%d]: got %s, want %s", i, kindName(nodes[i]), exp)
		}
	}
}

func TestUnitCounts(t *testing.T) {
	// The parser never merges runs; that is the optimizer's job.
	nodes := parseInput(t, "+++")
	if len(nodes) != 3 {
		t.Fatalf("node count: got %d, want 3", len(nodes))
	}
	for i, n := range nodes {
		inc, ok := n.(*ast.Increment)
		if !ok {
			t.Fatalf("node[%d]: got %s, want Increment", i, kindName(n))
		}
		if inc.Count != 1 {
			t.Errorf("node[%d].Count: got %d, want 1", i, inc.Count)
		}
	}
}

func TestLoopBodyOwnership(t *testing.T) {
	nodes := parseInput(t, "+[>.<]-")
	if len(nodes) != 3 {
		t.Fatalf("top-level node count: got %d, want 3", len(nodes))
	}
	loop, ok := nodes[1].(*ast.Loop)
	if !ok {
		t.Fatalf("node[1]: got %s, want Loop", kindName(nodes[1]))
	}
	body := []string{"IncPtr", "Output", "DecPtr"}
	if len(loop.Body) != len(body) {
		t.Fatalf("loop body count: got %d, want %d", len(loop.Body), len(body))
	}
	for i, exp := range body {
		if kindName(loop.Body[i]) != exp {
			t.Errorf("body[%d]: got %s, want %s", i, kindName(loop.Body[i]), exp)
		}
	}
}

func TestSiblingLoops(t *testing.T) {
	nodes := parseInput(t, "[[][]]")
	if len(nodes) != 1 {
		t.Fatalf("top-level node count: got %d, want 1", len(nodes))
	}
	outer := nodes[0].(*ast.Loop)
	if len(outer.Body) != 2 {
		t.Fatalf("outer body count: got %d, want 2", len(outer.Body))
	}
	for i, n := range outer.Body {
		inner, ok := n.(*ast.Loop)
		if !ok {
			t.Fatalf("outer body[%d]: got %s, want Loop", i, kindName(n))
		}
		if len(inner.Body) != 0 {
			t.Errorf("inner loop %d should be empty, has %d nodes", i, len(inner.Body))
		}
	}
}

func TestNestingDepthMatchesBrackets(t *testing.T) {
	for _, depth := range []int{1, 2, 5, 17, 40} {
		src := strings.Repeat("[", depth) + "+" + strings.Repeat("]", depth)
		nodes := parseInput(t, src)
		if got := maxDepth(nodes); got != depth {
			t.Errorf("depth %d: nesting depth got %d, want %d", depth, got, depth)
		}
	}
}

func TestEmptyInput(t *testing.T) {
	nodes := parseInput(t, "")
	if len(nodes) != 0 {
		t.Errorf("empty input should produce no nodes, got %d", len(nodes))
	}
}

func TestCommentOnlyProgram(t *testing.T) {
	nodes := parseInput(t, "no commands here at all")
	if len(nodes) != 0 {
		t.Errorf("comment-only input should produce no nodes, got %d", len(nodes))
	}
}

// ---------------------------------------------------------------------------
// Unmatched brackets
// ---------------------------------------------------------------------------

func TestUnmatchedOpenPosition(t *testing.T) {
	// The error points at the '[' that never closed, not at end of input.
	err := parseBad(t, "++[+\n+")
	if err.Pos.Line != 1 || err.Pos.Column != 3 {
		t.Errorf("error position: got %d:%d, want 1:3", err.Pos.Line, err.Pos.Column)
	}
}

func TestUnmatchedOpenOutermost(t *testing.T) {
	// "[[]" closes the inner loop, so the unmatched bracket is the outer one.
	err := parseBad(t, "[[]")
	if err.Pos.Line != 1 || err.Pos.Column != 1 {
		t.Errorf("error position: got %d:%d, want 1:1", err.Pos.Line, err.Pos.Column)
	}
}

func TestUnmatchedOpenInnermost(t *testing.T) {
	// "[[" fails in the innermost body first.
	err := parseBad(t, "[[")
	if err.Pos.Line != 1 || err.Pos.Column != 2 {
		t.Errorf("error position: got %d:%d, want 1:2", err.Pos.Line, err.Pos.Column)
	}
}

func TestStrayClosePosition(t *testing.T) {
	// A ']' with nothing to close is reported at its own position.
	err := parseBad(t, "+]")
	if err.Pos.Line != 1 || err.Pos.Column != 2 {
		t.Errorf("error position: got %d:%d, want 1:2", err.Pos.Line, err.Pos.Column)
	}
}

func TestErrorMatchesSentinel(t *testing.T) {
	symbols := lexer.Scan(strings.NewReader("["), "test.bf", "/tmp")
	_, err := parser.Parse(symbols)
	if !errors.Is(err, parser.ErrUnmatchedLoop) {
		t.Errorf("errors.Is(err, ErrUnmatchedLoop) = false for %v", err)
	}
	if !strings.Contains(err.Error(), "test.bf:1:1") {
		t.Errorf("error text should carry the position, got %q", err.Error())
	}
}

// ---------------------------------------------------------------------------
// Debug dump
// ---------------------------------------------------------------------------

func TestDumpShowsNesting(t *testing.T) {
	dump := ast.Dump(parseInput(t, "+[-]."))
	for _, want := range []string{"Increment(1)", "Loop [1 nodes]", "  Decrement(1)", "Output"} {
		if !strings.Contains(dump, want) {
			t.Errorf("dump missing %q:\n%s", want, dump)
		}
	}
}

// ---------------------------------------------------------------------------
// Integration
// ---------------------------------------------------------------------------

func TestExampleBfProgram(t *testing.T) {
	f, err := os.Open("../../example.bf")
	if err != nil {
		t.Skipf("skipping integration test: %v", err)
	}
	defer f.Close()

	symbols := lexer.Scan(f, "example.bf", "../..")
	nodes, parseErr := parser.Parse(symbols)
	if parseErr != nil {
		t.Fatalf("example program failed to parse: %v", parseErr)
	}
	if len(nodes) == 0 {
		t.Fatal("example program produced an empty tree")
	}
	foundLoop := false
	for _, n := range nodes {
		if _, ok := n.(*ast.Loop); ok {
			foundLoop = true
			break
		}
	}
	if !foundLoop {
		t.Error("expected at least one top-level loop in the example program")
	}
}
