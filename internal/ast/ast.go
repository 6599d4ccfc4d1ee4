package ast

import (
	"fmt"
	"strings"

	"bfc/internal/lexer"
)

// ---------------------------------------------------------------------------
// Interfaces
// ---------------------------------------------------------------------------

// Node is implemented by every instruction node.
type Node interface {
	GetPos() *lexer.DebugInfo
}

// ---------------------------------------------------------------------------
// Instruction nodes
// ---------------------------------------------------------------------------

// IncPtr moves the cursor right: one or more '>'.
type IncPtr struct {
	Count uint
	Pos   *lexer.DebugInfo
}

func (n *IncPtr) GetPos() *lexer.DebugInfo { return n.Pos }

// DecPtr moves the cursor left: one or more '<'.
type DecPtr struct {
	Count uint
	Pos   *lexer.DebugInfo
}

func (n *DecPtr) GetPos() *lexer.DebugInfo { return n.Pos }

// Increment adds Count to the addressed cell: one or more '+'.
// Count is a byte because cell arithmetic wraps at 256.
type Increment struct {
	Count uint8
	Pos   *lexer.DebugInfo
}

func (n *Increment) GetPos() *lexer.DebugInfo { return n.Pos }

// Decrement subtracts Count from the addressed cell: one or more '-'.
type Decrement struct {
	Count uint8
	Pos   *lexer.DebugInfo
}

func (n *Decrement) GetPos() *lexer.DebugInfo { return n.Pos }

// Output writes the addressed cell to the output stream: '.'.
type Output struct {
	Pos *lexer.DebugInfo
}

func (n *Output) GetPos() *lexer.DebugInfo { return n.Pos }

// Input reads one byte into the addressed cell: ','.
type Input struct {
	Pos *lexer.DebugInfo
}

func (n *Input) GetPos() *lexer.DebugInfo { return n.Pos }

// Loop executes Body while the addressed cell is nonzero: '[' ... ']'.
// The loop exclusively owns its body slice.
type Loop struct {
	Body []Node
	Pos  *lexer.DebugInfo
}

func (n *Loop) GetPos() *lexer.DebugInfo { return n.Pos }

// ---------------------------------------------------------------------------
// Debug printer – produces a human-readable tree representation
// ---------------------------------------------------------------------------

// Dump returns a readable multi-line representation of the instruction tree.
func Dump(nodes []Node) string {
	var b strings.Builder
	dumpNodes(&b, nodes, 0)
	return b.String()
}

func writeIndent(b *strings.Builder, level int) {
	for i := 0; i < level; i++ {
		b.WriteString("  ")
	}
}

func dumpNodes(b *strings.Builder, nodes []Node, level int) {
	for _, n := range nodes {
		writeIndent(b, level)
		switch n := n.(type) {
		case *IncPtr:
			fmt.Fprintf(b, "IncPtr(%d) @ %s\n", n.Count, n.Pos)
		case *DecPtr:
			fmt.Fprintf(b, "DecPtr(%d) @ %s\n", n.Count, n.Pos)
		case *Increment:
			fmt.Fprintf(b, "Increment(%d) @ %s\n", n.Count, n.Pos)
		case *Decrement:
			fmt.Fprintf(b, "Decrement(%d) @ %s\n", n.Count, n.Pos)
		case *Output:
			fmt.Fprintf(b, "Output @ %s\n", n.Pos)
		case *Input:
			fmt.Fprintf(b, "Input @ %s\n", n.Pos)
		case *Loop:
			fmt.Fprintf(b, "Loop [%d nodes] @ %s\n", len(n.Body), n.Pos)
			dumpNodes(b, n.Body, level+1)
		default:
			b.WriteString("<unknown node>\n")
		}
	}
}
