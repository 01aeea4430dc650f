package scope

import "viper/types"

// ViableCandidate is one overload-resolution candidate that survived
// arity filtering and carries no Disallowed argument conversion, paired
// with its score.
type ViableCandidate struct {
	Symbol *Symbol
	Score  int
}

// ResolveOverload scores every symbol in candidates against argTypes:
// for each argument position i (0-based, counting from the first
// non-implicit-receiver argument), a multiplier of 0 (exact match), 1
// (Implicit cast), or 2 (ImplicitWarning cast) is applied, weighted by
// (N-i) so earlier arguments count for more; any Disallowed conversion
// eliminates the candidate outright. `argOffset` lets a bound method
// call skip its synthesized `this` parameter when indexing into the
// candidate's own parameter list while still scoring against the
// caller's full argument list positions.
//
// Returns the full viable list, sorted ascending by score (a lower score
// is a closer match, so index 0 is the best match, the ordering
// BestViable's ambiguity check needs).
func ResolveOverload(candidates []*Symbol, argTypes []types.Type, argOffset int) []ViableCandidate {
	var viable []ViableCandidate

	for _, cand := range candidates {
		fn, ok := types.Resolve(cand.Type).(*types.FuncType)
		if !ok {
			continue
		}
		if len(fn.Params) != len(argTypes) {
			continue
		}

		score := 0
		disallowed := false
		n := len(argTypes)
		for i := argOffset; i < n; i++ {
			param := fn.Params[i]
			arg := argTypes[i]

			var multiplier int
			switch {
			case types.Equal(arg, param):
				multiplier = 0
			default:
				switch arg.CastRankTo(param) {
				case types.Implicit:
					multiplier = 1
				case types.ImplicitWarning:
					multiplier = 2
				default:
					disallowed = true
				}
			}

			score += multiplier * (n - i)
		}

		if !disallowed {
			viable = append(viable, ViableCandidate{Symbol: cand, Score: score})
		}
	}

	sortByScoreAscending(viable)
	return viable
}

func sortByScoreAscending(v []ViableCandidate) {
	for i := 1; i < len(v); i++ {
		for j := i; j > 0 && v[j].Score < v[j-1].Score; j-- {
			v[j], v[j-1] = v[j-1], v[j]
		}
	}
}

// BestViable returns the single unambiguous best-scoring candidate from
// a sorted viable list. A tie at the top score is ambiguous regardless
// of how many exact matches each candidate has: the weighted score is
// the whole ranking, exact-match count is never a tiebreaker, and only
// the top two entries are ever compared.
func BestViable(viable []ViableCandidate) (sym *Symbol, ambiguous bool) {
	if len(viable) == 0 {
		return nil, false
	}
	if len(viable) >= 2 && viable[0].Score == viable[1].Score {
		return nil, true
	}
	return viable[0].Symbol, false
}
