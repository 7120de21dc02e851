package config

import (
	"regexp"
	"strings"

	"github.com/leapstack-labs/sqlwall/pkg/wall"
)

// tableNamePattern accepts name and schema.name; * is a wildcard for the
// table part.
var tableNamePattern = regexp.MustCompile(`^(?:[\w$]+\.)?(?:[\w$]+|\*)$`)

func validTableName(name string) bool {
	return tableNamePattern.MatchString(strings.TrimSpace(name))
}

// TableList is a wall.TablePermitter built from deny and permit lists.
//
// Entries are either a bare table name, which matches the table in any
// schema, or schema.name, which matches only that schema; schema.* matches
// every table of a schema. A table on the deny list is never permitted. When
// the permit list is not empty, only tables on it are permitted.
type TableList struct {
	deny   wall.Set
	permit wall.Set
}

// NewTableList builds a TableList. Matching ignores case.
func NewTableList(deny, permit []string) *TableList {
	return &TableList{deny: wall.NewSet(deny...), permit: wall.NewSet(permit...)}
}

// IsTablePermitted implements wall.TablePermitter. name is either name or
// schema.name.
func (l *TableList) IsTablePermitted(name string) bool {
	if matches(l.deny, name) {
		return false
	}
	return len(l.permit) == 0 || matches(l.permit, name)
}

func matches(set wall.Set, name string) bool {
	if set.Has(name) {
		return true
	}
	schema, table, qualified := strings.Cut(name, ".")
	if !qualified {
		return false
	}
	return set.Has(table) || set.Has(schema+".*")
}
