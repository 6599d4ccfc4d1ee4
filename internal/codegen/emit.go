package codegen

import (
	"fmt"
	"strings"

	"bfc/internal/ast"
)

// ---------------------------------------------------------------------------
// LLVM IR Emitter
//
// Produces a textual LLVM module for the whole program.  The tape lives in a
// module-level byte array @mem and the cell pointer in an alloca'd i64 %ptr,
// initialised to the middle of the tape.  I/O and process exit go straight to
// the kernel through inline syscall asm, so the output links freestanding
// against no libc (read = 0, write = 1, exit = 60 on x86-64 Linux).
//
// Value names (%i1, %i2, ...) and block labels (l1, l2, ...) draw from one
// shared counter, so a name is never reused anywhere in the module.  Every
// instruction chunk opens with a newline and carries no trailing one; the
// final "}" ends the file.
// ---------------------------------------------------------------------------

// Emit renders the program as an LLVM module over a tape of memSize cells.
func Emit(nodes []ast.Node, memSize uint) string {
	e := &irEmitter{
		b:       &strings.Builder{},
		memSize: memSize,
	}

	fmt.Fprintf(e.b, `
@mem = private global [%d x i8] zeroinitializer
define void @_start() {
    %%ptr = alloca i64
    store atomic volatile i64 %d, i64* %%ptr monotonic, align 1`,
		e.memSize, e.memSize/2)

	e.emitNodes(nodes)

	e.b.WriteString(`
    call i64 asm sideeffect "syscall", "=r,{rax},{rdi}"(i64 60, i64 0)
    ret void
}`)

	return e.b.String()
}

type irEmitter struct {
	b       *strings.Builder
	memSize uint
	n       int
}

// ident returns the next SSA value name, percent sign included.
func (e *irEmitter) ident() string {
	e.n++
	return fmt.Sprintf("%%i%d", e.n)
}

// label returns the next basic-block label, bare (callers prefix the
// percent sign at branch sites).
func (e *irEmitter) label() string {
	e.n++
	return fmt.Sprintf("l%d", e.n)
}

func (e *irEmitter) emitNodes(nodes []ast.Node) {
	for _, node := range nodes {
		switch n := node.(type) {
		case *ast.IncPtr:
			i0 := e.ident()
			i1 := e.ident()
			fmt.Fprintf(e.b, `
    %s = load atomic i64, i64* %%ptr monotonic, align 1 ; Increment Pointer
    %s = add i64 %s, %d
    store atomic i64 %s, i64* %%ptr monotonic, align 1`,
				i0, i1, i0, n.Count, i1)

		case *ast.DecPtr:
			i0 := e.ident()
			i1 := e.ident()
			fmt.Fprintf(e.b, `
    %s = load atomic i64, i64* %%ptr monotonic, align 1 ; Decrement Pointer
    %s = sub i64 %s, %d
    store atomic i64 %s, i64* %%ptr monotonic, align 1`,
				i0, i1, i0, n.Count, i1)

		case *ast.Increment:
			i0 := e.ident()
			i1 := e.ident()
			i2 := e.ident()
			i3 := e.ident()
			fmt.Fprintf(e.b, `
    %s = load atomic i64, i64* %%ptr monotonic, align 1 ; Increment
    %s = getelementptr [%d x i8], [%d x i8]* @mem, i64 0, i64 %s
    %s = load atomic volatile i8, i8* %s monotonic, align 1
    %s = add i8 %s, %d
    store atomic volatile i8 %s, i8* %s monotonic, align 1`,
				i0, i1, e.memSize, e.memSize, i0, i2, i1, i3, i2, n.Count, i3, i1)

		case *ast.Decrement:
			i0 := e.ident()
			i1 := e.ident()
			i2 := e.ident()
			i3 := e.ident()
			fmt.Fprintf(e.b, `
    %s = load atomic i64, i64* %%ptr monotonic, align 1 ; Decrement
    %s = getelementptr [%d x i8], [%d x i8]* @mem, i64 0, i64 %s
    %s = load atomic volatile i8, i8* %s monotonic, align 1
    %s = sub i8 %s, %d
    store atomic volatile i8 %s, i8* %s monotonic, align 1`,
				i0, i1, e.memSize, e.memSize, i0, i2, i1, i3, i2, n.Count, i3, i1)

		case *ast.Output:
			i0 := e.ident()
			i1 := e.ident()
			fmt.Fprintf(e.b, `
    %s = load atomic i64, i64* %%ptr monotonic, align 1 ; Output
    %s = getelementptr [%d x i8], [%d x i8]* @mem, i64 0, i64 %s
    call i64 asm sideeffect "syscall", "=r,{rax},{rdi},{rsi},{rdx}"(i64 1, i64 1, i8* %s, i64 1)`,
				i0, i1, e.memSize, e.memSize, i0, i1)

		case *ast.Input:
			i0 := e.ident()
			i1 := e.ident()
			fmt.Fprintf(e.b, `
    %s = load atomic i64, i64* %%ptr monotonic, align 1 ; Input
    %s = getelementptr [%d x i8], [%d x i8]* @mem, i64 0, i64 %s
    call i64 asm sideeffect "syscall", "=r,{rax},{rdi},{rsi},{rdx}"(i64 0, i64 0, i8* %s, i64 1)`,
				i0, i1, e.memSize, e.memSize, i0, i1)

		case *ast.Loop:
			i0 := e.ident()
			i1 := e.ident()
			i2 := e.ident()
			i3 := e.ident()
			header := e.label()
			body := e.label()
			end := e.label()
			fmt.Fprintf(e.b, `
    br label %%%s ; Loop
%s:
    %s = load atomic i64, i64* %%ptr monotonic, align 1
    %s = getelementptr [%d x i8], [%d x i8]* @mem, i64 0, i64 %s
    %s = load atomic volatile i8, i8* %s monotonic, align 1
    %s = icmp eq i8 0, %s
    br i1 %s, label %%%s, label %%%s
%s:`,
				header, header, i0, i1, e.memSize, e.memSize, i0, i2, i1, i3, i2, i3, end, body, body)

			e.emitNodes(n.Body)

			fmt.Fprintf(e.b, `
    br label %%%s
%s:`,
				header, end)
		}
	}
}
