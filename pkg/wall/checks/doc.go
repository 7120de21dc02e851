// Package checks provides the generic firewall checks run by the wall visitor.
//
// Each check registers itself with the default registry from init(). Import
// the package with a blank identifier to enable them:
//
//	import _ "github.com/leapstack-labs/sqlwall/pkg/wall/checks"
//
// Checks in this package:
//   - WS01: statement kind allow-list (INSERT, UPDATE, DELETE, CREATE, ALTER, DROP)
//   - WS02: statement ending in a comment
//   - WS03: always-true WHERE and SELECT INTO on query blocks
//   - WS04: always-true HAVING
//   - WS05: UNION of a FROM-less block with a table query
//   - WS06: INSERT into a read-only table
//   - WS07: UPDATE of a read-only table, without WHERE, or with an always-true WHERE
//   - WS08: DELETE from a read-only table
//   - WS09: DELETE without WHERE or with an always-true WHERE
//   - WS10: DDL on a denied table or schema
//   - WS11: comments and hints
//   - WS12: table sources: deny lists, system provenance and usage counters
//   - WS13: XOR and bitwise operators in conditions
//   - WS14: constant IN-list tautologies inside conditions
//   - WS15: SELECT *
//   - WS16: denied functions
//   - WS17: column references through a denied schema
//   - WS18: injection fingerprints in string literals
package checks
