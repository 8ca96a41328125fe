// Package extract turns an RDF/XML element tree into flat object records.
//
// # Objects
//
// An element is an object when it declares an identifier (rdf:ID, matched by
// local name). Classify makes that decision explicit and also determines the
// class: the element's local tag, or for rdf:Description the fragment of the
// first rdf:type/@rdf:resource child.
//
//	<cim:Breaker rdf:ID="_br1">                    class Breaker
//	<rdf:Description rdf:ID="_x">                  class Bay
//	  <rdf:type rdf:resource="...CIM100#Bay"/>
//
// # Records
//
// Each object becomes a record.Record:
//
//	xml_tag                              Breaker
//	declared_id                          _br1
//	IdentifiedObject.name                BR 1
//	Equipment.EquipmentContainer__resource  #_bay1
//
// The walk is pre-order over the whole tree, so nested objects are extracted
// as well. Records are appended to their class in document order and every
// canonical identifier is put into the session's index.Index.
//
// # Collisions
//
// Two rules resolve name clashes and both are "last wins":
//   - duplicate field names within one record keep the value of the last
//     occurrence (at the position of the first);
//   - identifiers that canonicalize to the same value index the last record.
//
// Child-derived fields never replace xml_tag or declared_id.
package extract
