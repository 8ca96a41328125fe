// Package resolve inlines the fields of referenced objects into the records
// that reference them.
//
// A reference is any field whose name ends with "__resource". Its value is
// canonicalized and looked up in the session's index.Index; every non-empty,
// non-reserved field of the target is copied into the source under
// "<prefix>__<field>", where prefix is the reference field name without the
// suffix:
//
//	Terminal.ConductingEquipment__resource = #_br1
//	  -> Terminal.ConductingEquipment__IdentifiedObject.name = BR 1
//	  -> Terminal.ConductingEquipment__Equipment.EquipmentContainer__resource = #_bay1
//
// Copied reference fields are themselves followed by the next pass, so chains
// of references are flattened one hop per pass. Each pass plans all insertions
// against the records as they were when the pass started, then applies them;
// the result does not depend on record order.
//
// Passes repeat until one inserts nothing. Existing fields are never
// overwritten. Inlined fields remember the records they travelled through and
// an insertion that would revisit a record is suppressed, so reference cycles
// converge.
package resolve
