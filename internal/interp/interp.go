package interp

import (
	"errors"
	"fmt"
	"io"
	"os"

	"bfc/internal/ast"
	"bfc/internal/lexer"
)

// ---------------------------------------------------------------------------
// OutOfBoundsError
// ---------------------------------------------------------------------------

// ErrOutOfBounds is matched by errors.Is against every execution fault.
var ErrOutOfBounds = errors.New("memory access out of bounds")

// OutOfBoundsError reports an instruction that touched memory while the
// cursor was outside the addressable range. It is the only error execution
// produces, and it is terminal: the program state is discarded.
type OutOfBoundsError struct {
	Pos *lexer.DebugInfo
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("%s: memory access out of bounds", e.Pos)
}

func (e *OutOfBoundsError) Unwrap() error { return ErrOutOfBounds }

// ---------------------------------------------------------------------------
// ProgramState
// ---------------------------------------------------------------------------

// ProgramState is the mutable state of one execution: a cursor into a fixed
// byte array. Input and Output may be replaced before Exec to redirect the
// program's I/O; they default to the process's standard streams.
type ProgramState struct {
	cursor uint
	memory []byte
	size   uint

	Input  io.Reader
	Output io.Writer
}

// New creates a fresh program state with the cursor centered, so programs
// can move in either direction before touching memory.
func New(size uint) *ProgramState {
	return &ProgramState{
		cursor: size / 2,
		memory: make([]byte, size),
		size:   size,
		Input:  os.Stdin,
		Output: os.Stdout,
	}
}

// isOOB is the sole bounds test. Moving the cursor below zero wraps the
// unsigned value to a huge index, which this same test catches at the next
// memory touch.
func (s *ProgramState) isOOB() bool {
	return s.cursor >= s.size
}

// readByte consumes one byte from the input stream. Exhausted or failing
// input yields 0xFF, the byte value of a C getchar() EOF.
func (s *ProgramState) readByte() byte {
	var buf [1]byte
	if _, err := io.ReadFull(s.Input, buf[:]); err != nil {
		return 0xFF
	}
	return buf[0]
}

// ---------------------------------------------------------------------------
// Execution
// ---------------------------------------------------------------------------

// Exec runs the instruction sequence against the state. Pointer moves are
// never bounds-checked; every memory-touching instruction checks first and
// aborts with the faulting instruction's source position. The first fault
// ends the whole execution.
func (s *ProgramState) Exec(nodes []ast.Node) error {
	for _, node := range nodes {
		switch n := node.(type) {
		case *ast.IncPtr:
			s.cursor += n.Count

		case *ast.DecPtr:
			s.cursor -= n.Count

		case *ast.Increment:
			if s.isOOB() {
				return &OutOfBoundsError{Pos: n.Pos}
			}
			s.memory[s.cursor] += n.Count

		case *ast.Decrement:
			if s.isOOB() {
				return &OutOfBoundsError{Pos: n.Pos}
			}
			s.memory[s.cursor] -= n.Count

		case *ast.Output:
			if s.isOOB() {
				return &OutOfBoundsError{Pos: n.Pos}
			}
			_, _ = s.Output.Write([]byte{s.memory[s.cursor]})

		case *ast.Input:
			// The read happens unconditionally; a bounds fault afterwards
			// still leaves the byte consumed.
			val := s.readByte()
			if s.isOOB() {
				return &OutOfBoundsError{Pos: n.Pos}
			}
			s.memory[s.cursor] = val

		case *ast.Loop:
			if s.isOOB() {
				return &OutOfBoundsError{Pos: n.Pos}
			}
			for s.memory[s.cursor] != 0 {
				if err := s.Exec(n.Body); err != nil {
					return err
				}
				// The body may have moved the cursor anywhere.
				if s.isOOB() {
					return &OutOfBoundsError{Pos: n.Pos}
				}
			}
		}
	}
	return nil
}
