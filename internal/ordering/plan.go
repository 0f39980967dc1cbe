// Package ordering holds the position math shared by todo and category
// reordering: which neighbors shift, and by how much, when one member of a
// dense sequence moves. Applying a plan transactionally is the repository's
// job; serializing concurrent moves on one scope is ScopeLock's.
package ordering

// Plan is the bulk neighbor shift that accompanies a same-scope move:
// every other member whose sort order falls in [Low, High] moves by Delta.
type Plan struct {
	Low   int
	High  int
	Delta int
}

// PlanMove computes the shift for moving a member from position old to
// position target within one scope. ok is false when old == target and no
// neighbors need to move (the position write itself still happens).
//
// Moving later: the members the item jumps over, (old, target], close the
// gap by stepping down one. Moving earlier: the members in [target, old)
// step up one to make room.
func PlanMove(old, target int) (Plan, bool) {
	switch {
	case old < target:
		return Plan{Low: old + 1, High: target, Delta: -1}, true
	case old > target:
		return Plan{Low: target, High: old - 1, Delta: +1}, true
	default:
		return Plan{}, false
	}
}
