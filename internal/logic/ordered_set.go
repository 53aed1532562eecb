/*-------------------------------------------------------------------------
 *
 * ordered_set.go
 *    Insertion-ordered string set for deterministic evaluation output
 *
 * Copyright (c) 2024-2026, FormGen, Inc. <support@formgen.dev>
 *
 * IDENTIFICATION
 *    internal/logic/ordered_set.go
 *
 *-------------------------------------------------------------------------
 */

package logic

type orderedSet struct {
	order  []string
	member map[string]bool
}

func newOrderedSet(initial []string) *orderedSet {
	s := &orderedSet{member: make(map[string]bool, len(initial))}
	for _, id := range initial {
		s.add(id)
	}
	return s
}

func (s *orderedSet) add(id string) {
	if _, seen := s.member[id]; !seen {
		s.order = append(s.order, id)
	}
	s.member[id] = true
}

func (s *orderedSet) remove(id string) {
	if _, seen := s.member[id]; seen {
		s.member[id] = false
	}
}

func (s *orderedSet) contains(id string) bool {
	return s.member[id]
}

func (s *orderedSet) values() []string {
	out := make([]string, 0, len(s.order))
	for _, id := range s.order {
		if s.member[id] {
			out = append(out, id)
		}
	}
	return out
}
