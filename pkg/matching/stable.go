package matching

import (
	"sort"

	"github.com/Ramsey-B/graft/pkg/models"
)

// runStableMatching runs proposer-optimal Gale-Shapley with per-entity
// capacity on both sides. A side proposes in preference order; B side holds
// its best proposers and displaces the worst-ranked holder when a better
// proposal arrives. Proposals from entities a partner does not rank are
// rejected outright, so an explicit preference list is also a hard filter.
func runStableMatching(in algorithmInput) ([]pairing, error) {
	capacity := in.criteria.MaxMatches

	prefsA := buildPreferences(in, true)
	prefsB := buildPreferences(in, false)

	// rank[b][a] is a's position in b's list; absent means unranked
	rank := make([]map[int]int, len(prefsB))
	for b, list := range prefsB {
		positions := make(map[int]int, len(list))
		for position, a := range list {
			positions[a] = position
		}
		rank[b] = positions
	}

	next := make([]int, len(prefsA))    // cursor into each proposer's list
	matched := make([]int, len(prefsA)) // accepted proposal count per proposer
	held := make([][]int, len(prefsB))  // proposers each b currently holds

	queue := make([]int, 0, len(prefsA))
	for a := range prefsA {
		queue = append(queue, a)
	}

	for len(queue) > 0 {
		a := queue[0]
		queue = queue[1:]

		for matched[a] < capacity && next[a] < len(prefsA[a]) {
			b := prefsA[a][next[a]]
			next[a]++

			aRank, ranked := rank[b][a]
			if !ranked {
				continue
			}

			if len(held[b]) < capacity {
				held[b] = append(held[b], a)
				matched[a]++
				continue
			}

			worst := 0
			for idx := 1; idx < len(held[b]); idx++ {
				if rank[b][held[b][idx]] > rank[b][held[b][worst]] {
					worst = idx
				}
			}
			if aRank < rank[b][held[b][worst]] {
				displaced := held[b][worst]
				held[b][worst] = a
				matched[a]++
				matched[displaced]--
				queue = append(queue, displaced)
			}
		}
	}

	pairs := make([]pairing, 0, len(prefsA))
	for b, holders := range held {
		for _, a := range holders {
			pairs = append(pairs, pairing{a: a, b: b})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].a != pairs[j].a {
			return pairs[i].a < pairs[j].a
		}
		return pairs[i].b < pairs[j].b
	})

	return pairs, nil
}

// buildPreferences resolves one side's ranked partner lists: the entity's
// explicit preference IDs when declared, otherwise every feasible partner
// ordered by score with the shared tie-break. Explicit lists are filtered
// to known, feasible partners, and repeated IDs keep their first position.
func buildPreferences(in algorithmInput, aSide bool) [][]int {
	owners := in.entitiesA
	partners := in.entitiesB
	if !aSide {
		owners = in.entitiesB
		partners = in.entitiesA
	}

	partnerIndex := make(map[string]int, len(partners))
	for idx := range partners {
		if _, exists := partnerIndex[partners[idx].ID]; !exists {
			partnerIndex[partners[idx].ID] = idx
		}
	}

	feasible := func(owner, partner int) bool {
		if aSide {
			return in.matrix.Feasible(owner, partner)
		}
		return in.matrix.Feasible(partner, owner)
	}
	score := func(owner, partner int) float64 {
		if aSide {
			return in.matrix.Score(owner, partner)
		}
		return in.matrix.Score(partner, owner)
	}

	lists := make([][]int, len(owners))
	for i := range owners {
		if declared := owners[i].Preferences; len(declared) > 0 {
			seen := make(map[int]struct{}, len(declared))
			list := make([]int, 0, len(declared))
			for _, id := range declared {
				j, known := partnerIndex[id]
				if !known || !feasible(i, j) {
					continue
				}
				if _, dup := seen[j]; dup {
					continue
				}
				seen[j] = struct{}{}
				list = append(list, j)
			}
			lists[i] = list
			continue
		}

		list := make([]int, 0, len(partners))
		for j := range partners {
			if feasible(i, j) {
				list = append(list, j)
			}
		}
		sort.Slice(list, func(x, y int) bool {
			jx, jy := list[x], list[y]
			if aSide {
				return pairBefore(score(i, jx), i, jx, score(i, jy), i, jy)
			}
			return pairBefore(score(i, jx), jx, i, score(i, jy), jy, i)
		})
		lists[i] = list
	}

	return lists
}
