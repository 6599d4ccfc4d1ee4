package parser

import (
	"errors"
	"fmt"

	"bfc/internal/ast"
	"bfc/internal/lexer"
)

// ---------------------------------------------------------------------------
// UnmatchedLoopError
// ---------------------------------------------------------------------------

// ErrUnmatchedLoop is matched by errors.Is against every parse failure.
var ErrUnmatchedLoop = errors.New("unmatched loop")

// UnmatchedLoopError reports a bracket with no partner: an '[' still open
// when the symbols run out, or a ']' with nothing to close. It is the only
// error the parser produces.
type UnmatchedLoopError struct {
	Pos *lexer.DebugInfo
}

func (e *UnmatchedLoopError) Error() string {
	return fmt.Sprintf("%s: unmatched loop", e.Pos)
}

func (e *UnmatchedLoopError) Unwrap() error { return ErrUnmatchedLoop }

// ---------------------------------------------------------------------------
// Parser
// ---------------------------------------------------------------------------

// Parser holds the state for a single pass over a symbol sequence. Symbols
// are consumed front to back, each exactly once.
type Parser struct {
	symbols []lexer.Symbol
	pos     int
}

// Parse is the main entry point. It takes a symbol slice (as produced by
// lexer.Scan) and returns the instruction tree. The first unmatched bracket
// aborts the whole parse: exactly one error, no partial tree.
func Parse(symbols []lexer.Symbol) ([]ast.Node, error) {
	p := &Parser{symbols: symbols, pos: 0}
	nodes, err := p.parseSequence(nil)
	if err != nil {
		return nil, err
	}
	return nodes, nil
}

// parseSequence collects nodes until the enclosing loop closes or the
// symbols run out. open is the position of the enclosing '[', nil at the
// top level. Every delta node starts with a unit count; merging runs is the
// optimizer's job.
func (p *Parser) parseSequence(open *lexer.DebugInfo) ([]ast.Node, error) {
	var nodes []ast.Node

	for p.pos < len(p.symbols) {
		sym := p.symbols[p.pos]
		p.pos++

		switch sym.Kind {
		case lexer.INC_PTR:
			nodes = append(nodes, &ast.IncPtr{Count: 1, Pos: sym.Pos})
		case lexer.DEC_PTR:
			nodes = append(nodes, &ast.DecPtr{Count: 1, Pos: sym.Pos})
		case lexer.INCREMENT:
			nodes = append(nodes, &ast.Increment{Count: 1, Pos: sym.Pos})
		case lexer.DECREMENT:
			nodes = append(nodes, &ast.Decrement{Count: 1, Pos: sym.Pos})
		case lexer.OUTPUT:
			nodes = append(nodes, &ast.Output{Pos: sym.Pos})
		case lexer.INPUT:
			nodes = append(nodes, &ast.Input{Pos: sym.Pos})
		case lexer.OPEN_LOOP:
			body, err := p.parseSequence(sym.Pos)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, &ast.Loop{Body: body, Pos: sym.Pos})
		case lexer.CLOSE_LOOP:
			if open == nil {
				// A stray ']' is reported at its own position.
				return nil, &UnmatchedLoopError{Pos: sym.Pos}
			}
			return nodes, nil
		}
	}

	// Ran out of symbols. Inside a loop body that means the '[' was never
	// closed; the error points at the opening bracket, not at end of input.
	if open != nil {
		return nil, &UnmatchedLoopError{Pos: open}
	}
	return nodes, nil
}
