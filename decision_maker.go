// Copyright 2025 Contriboss
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pubgrub

// undecidedCandidates returns, in first-seen order, the packages that carry
// a positive accumulated term but have no decision yet. Root is excluded: it
// is decided once, at seeding, and never revisited.
func (ps *partialSolution) undecidedCandidates() []Name {
	seen := make(map[Name]bool)
	var out []Name

	for _, assign := range ps.assignments {
		name := assign.name
		if name == ps.root || seen[name] {
			continue
		}
		seen[name] = true

		if ps.hasDecision(name) {
			continue
		}
		allowed := ps.allowedSet(name)
		if allowed == nil || allowed.IsEmpty() {
			continue
		}
		out = append(out, name)
	}

	return out
}

// constraintScore reports how many derivations have narrowed a package's
// term so far. It is a cheap, local proxy for "how constrained is this
// package" used only for debug logging, not for decision ordering.
func (ps *partialSolution) constraintScore(name Name) int {
	return len(ps.perPackage[name])
}

// nextDecisionCandidate picks the next package to decide using a
// minimum-remaining-values heuristic: among undecided packages with a
// positive accumulated term, the one whose term admits the fewest versions
// from the source wins, since it is the most likely to force a conflict (or
// a forced decision) soonest. Ties keep first-seen order. Returns the chosen
// package's preferred version and remaining-candidate count alongside its
// name, since the caller (Solver.Solve) needs both and re-deriving the count
// would mean querying the source twice.
func (st *solverState) nextDecisionCandidate() (Name, Version, int, bool, error) {
	candidates := st.partial.undecidedCandidates()
	if len(candidates) == 0 {
		return EmptyName(), nil, 0, false, nil
	}

	var bestName Name
	var bestVersion Version
	bestCount := -1
	bestFound := false

	for i, name := range candidates {
		ver, found, count, err := st.pickVersion(name)
		if err != nil {
			return EmptyName(), nil, 0, false, err
		}
		if i == 0 || count < bestCount {
			bestName, bestVersion, bestCount, bestFound = name, ver, count, found
		}
	}

	return bestName, bestVersion, bestCount, bestFound, nil
}
