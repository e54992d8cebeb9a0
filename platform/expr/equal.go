package expr

// Equal reports whether two trees are structurally identical: equal literal
// values, and calls to functions of the same name with equal arguments.
func Equal(a, b Expression) bool {
	switch a := a.(type) {
	case *Literal:
		bl, ok := b.(*Literal)
		return ok && a.Value.Equal(bl.Value)
	case *Call:
		bc, ok := b.(*Call)
		if !ok || a.Fn.Name() != bc.Fn.Name() || len(a.Args) != len(bc.Args) {
			return false
		}
		for i := range a.Args {
			if !Equal(a.Args[i], bc.Args[i]) {
				return false
			}
		}
		return true
	case nil:
		return b == nil
	}
	return false
}
