package mysql

import (
	"regexp"
	"strings"

	"github.com/leapstack-labs/sqlwall/pkg/ast"
)

// Statements the MySQL grammar does not cover are recognised by keyword on
// the masked body text. Patterns are anchored so quoted text never matches.
const namePattern = "(?:`[^`]+`|[\\w$@]+)(?:\\s*\\.\\s*(?:`[^`]+`|[\\w$]+))?"

var (
	callPattern       = regexp.MustCompile(`(?is)^call\s+(` + namePattern + `)\s*(?:\((.*)\))?\s*$`)
	triggerPattern    = regexp.MustCompile(`(?is)^create\s+(?:definer\s*=\s*\S+\s+)?trigger\s+(` + namePattern + `)\s+(before|after)\s+(insert|update|delete)\s+on\s+(` + namePattern + `)\s+for\s+each\s+row\s+(.*)$`)
	showCreatePattern = regexp.MustCompile(`(?is)^show\s+create\s+table\s+(` + namePattern + `)`)
	outfilePattern    = regexp.MustCompile(`(?is)\binto\s+(?:outfile|dumpfile)\s+('[^']*')`)
	createTablePrefix = regexp.MustCompile(`(?is)^create\s+(?:temporary\s+)?table\b`)
)

// splitName parses a possibly schema-qualified, possibly back-quoted name.
func splitName(text string) ast.TableName {
	parts := splitQualified(text)
	switch len(parts) {
	case 0:
		return ast.TableName{}
	case 1:
		return ast.TableName{Name: parts[0]}
	default:
		return ast.TableName{Schema: parts[0], Name: parts[1]}
	}
}

func splitQualified(text string) []string {
	var (
		parts  []string
		cur    strings.Builder
		quoted bool
	)
	for _, r := range text {
		switch {
		case r == '`':
			quoted = !quoted
		case r == '.' && !quoted:
			parts = append(parts, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	return append(parts, strings.TrimSpace(cur.String()))
}

// sniffCall recognises CALL proc(args). Arguments are parsed as a select
// list so they come back as ordinary expressions.
func (c *converter) sniffCall(body, masked string) (*ast.CallStatement, bool) {
	m := callPattern.FindStringSubmatchIndex(masked)
	if m == nil {
		return nil, false
	}
	stmt := &ast.CallStatement{Procedure: splitName(body[m[2]:m[3]])}
	if m[4] >= 0 {
		if args := strings.TrimSpace(body[m[4]:m[5]]); args != "" {
			stmt.Args = c.exprList(args)
		}
	}
	return stmt, true
}

// sniffTrigger recognises CREATE TRIGGER. The body is kept verbatim.
func sniffTrigger(body, masked string) (*ast.CreateTriggerStatement, bool) {
	m := triggerPattern.FindStringSubmatchIndex(masked)
	if m == nil {
		return nil, false
	}
	return &ast.CreateTriggerStatement{
		Name:   splitName(body[m[2]:m[3]]),
		Timing: strings.ToUpper(body[m[4]:m[5]]),
		Event:  strings.ToUpper(body[m[6]:m[7]]),
		Table:  splitName(body[m[8]:m[9]]),
		Body:   strings.TrimSpace(body[m[10]:m[11]]),
	}, true
}

// showCreateTable recovers the table name the grammar discards.
func showCreateTable(body, masked string) ast.TableName {
	m := showCreatePattern.FindStringSubmatchIndex(masked)
	if m == nil {
		return ast.TableName{}
	}
	return splitName(body[m[2]:m[3]])
}

// stripOutfile removes an INTO OUTFILE/DUMPFILE clause, which the grammar
// rejects, and returns the file literal for re-attachment.
func stripOutfile(body, masked string) (string, string, string, bool) {
	m := outfilePattern.FindStringSubmatchIndex(masked)
	if m == nil {
		return body, masked, "", false
	}
	file := body[m[2]:m[3]]
	return body[:m[0]] + body[m[1]:], masked[:m[0]] + masked[m[1]:], file, true
}
