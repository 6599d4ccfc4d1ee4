package optimizer

import "bfc/internal/ast"

// Optimize coalesces runs of identical delta instructions into single nodes
// carrying the run's wrapped sum: cell deltas accumulate in a byte, pointer
// deltas at full width. The first node of a run donates its position and
// seeds the accumulator. Output and Input are externally observable one at a
// time and always pass through unmerged. Loop bodies are optimized before
// their loop is re-emitted.
//
// The pass is pure and idempotent: the input slice is left untouched, and
// optimizing an already-optimized tree returns an equal one.
func Optimize(nodes []ast.Node) []ast.Node {
	var out []ast.Node
	i := 0

	for i < len(nodes) {
		switch n := nodes[i].(type) {
		case *ast.IncPtr:
			count := n.Count
			i++
			for i < len(nodes) {
				next, ok := nodes[i].(*ast.IncPtr)
				if !ok {
					break
				}
				count += next.Count
				i++
			}
			out = append(out, &ast.IncPtr{Count: count, Pos: n.Pos})

		case *ast.DecPtr:
			count := n.Count
			i++
			for i < len(nodes) {
				next, ok := nodes[i].(*ast.DecPtr)
				if !ok {
					break
				}
				count += next.Count
				i++
			}
			out = append(out, &ast.DecPtr{Count: count, Pos: n.Pos})

		case *ast.Increment:
			count := n.Count
			i++
			for i < len(nodes) {
				next, ok := nodes[i].(*ast.Increment)
				if !ok {
					break
				}
				count += next.Count
				i++
			}
			out = append(out, &ast.Increment{Count: count, Pos: n.Pos})

		case *ast.Decrement:
			count := n.Count
			i++
			for i < len(nodes) {
				next, ok := nodes[i].(*ast.Decrement)
				if !ok {
					break
				}
				count += next.Count
				i++
			}
			out = append(out, &ast.Decrement{Count: count, Pos: n.Pos})

		case *ast.Loop:
			out = append(out, &ast.Loop{Body: Optimize(n.Body), Pos: n.Pos})
			i++

		default:
			// Output and Input.
			out = append(out, nodes[i])
			i++
		}
	}

	return out
}
