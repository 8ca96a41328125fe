package resolve

import "fmt"

// Stats describes a resolution run.
//
// The reference counters describe the last pass, which scans the final state
// of every record: Unresolved is the number of reference fields that still
// have no target.
type Stats struct {
	// Passes is the number of passes executed, including the final one that
	// found nothing to insert.
	Passes int
	// Inserted holds the number of fields inlined by each pass.
	Inserted []int

	References     int
	Resolved       int
	Unresolved     int
	SelfReferences int
	// Cycles counts insertions suppressed because their provenance would
	// revisit a record.
	Cycles int

	// Converged is false when MaxPasses stopped resolution while the last
	// pass still inserted fields.
	Converged bool
}

// TotalInserted returns the number of fields inlined over all passes.
func (s Stats) TotalInserted() int {
	total := 0
	for _, n := range s.Inserted {
		total += n
	}
	return total
}

// String implements fmt.Stringer.
func (s Stats) String() string {
	state := "converged"
	if !s.Converged {
		state = "stopped at pass limit"
	}
	return fmt.Sprintf("%d passes (%s), %d fields inlined, %d/%d references resolved, %d unresolved",
		s.Passes, state, s.TotalInserted(), s.Resolved, s.References, s.Unresolved)
}
