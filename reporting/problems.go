package reporting

import "github.com/ethereum-optimism/infra/op-reporter/types"

// AnyProblems reports whether any leaf under node carries a fail or
// error outcome. Broken leaves are anticipated failures and never
// count. The scan mutates nothing, so repeated calls over the same tree
// agree.
func AnyProblems(node types.Node) bool {
	switch v := node.(type) {
	case types.Outcome:
		return v.IsProblem()
	case types.TimedOutcome:
		return v.IsProblem()
	case *types.Group:
		for _, child := range v.Children() {
			if AnyProblems(child) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
