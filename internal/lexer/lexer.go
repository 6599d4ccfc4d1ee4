package lexer

import (
	"bufio"
	"fmt"
	"io"
)

const (
	// Pointer movement
	INC_PTR = "INC_PTR" // >
	DEC_PTR = "DEC_PTR" // <

	// Cell arithmetic
	INCREMENT = "INCREMENT" // +
	DECREMENT = "DECREMENT" // -

	// I/O
	OUTPUT = "OUTPUT" // .
	INPUT  = "INPUT"  // ,

	// Control flow
	OPEN_LOOP  = "OPEN_LOOP"  // [
	CLOSE_LOOP = "CLOSE_LOOP" // ]
)

// DebugInfo pinpoints where a symbol came from. It is shared by pointer
// between a symbol and every node derived from it, and never mutated after
// the scan.
type DebugInfo struct {
	Directory string
	File      string
	Line      uint32
	Column    uint32
}

func (d *DebugInfo) String() string {
	return fmt.Sprintf("%s:%d:%d", d.File, d.Line, d.Column)
}

// Symbol is a single recognized command character tagged with its position.
type Symbol struct {
	Kind string
	Pos  *DebugInfo
}

/**
* Scans a source byte stream into the flat symbol sequence consumed by the
* parser. Any byte that is not one of the eight command characters is a
* comment and produces nothing; newlines advance the line counter and reset
* the column. A failed read truncates the scan silently, returning whatever
* was produced so far.
* @param r The source byte stream.
* @param file The file name recorded in symbol positions.
* @param directory The directory recorded in symbol positions.
* @return The symbols in source order.
 */
func Scan(r io.Reader, file, directory string) []Symbol {
	var symbols []Symbol
	br := bufio.NewReader(r)
	line, column := uint32(1), uint32(1)

	for {
		ch, err := br.ReadByte()
		if err != nil {
			break
		}
		if kind, ok := classify(ch); ok {
			symbols = append(symbols, Symbol{
				Kind: kind,
				Pos: &DebugInfo{
					Directory: directory,
					File:      file,
					Line:      line,
					Column:    column,
				},
			})
		} else if ch == '\n' {
			line++
			column = 0
		}
		// Every byte advances the column, so the first character after a
		// newline sits at column 1.
		column++
	}

	return symbols
}

// classify maps a byte to its symbol kind; ok is false for comment bytes.
func classify(ch byte) (kind string, ok bool) {
	switch ch {
	case '>':
		return INC_PTR, true
	case '<':
		return DEC_PTR, true
	case '+':
		return INCREMENT, true
	case '-':
		return DECREMENT, true
	case '.':
		return OUTPUT, true
	case ',':
		return INPUT, true
	case '[':
		return OPEN_LOOP, true
	case ']':
		return CLOSE_LOOP, true
	}
	return "", false
}
