package mysql

import (
	"strings"

	"github.com/leapstack-labs/sqlwall/pkg/ast"
)

// comment is a comment found in statement text. start and end are byte
// offsets into the text the comment was scanned from.
type comment struct {
	text       string
	start, end int
}

// scanResult splits a statement into its margins and its body.
type scanResult struct {
	comments []comment
	// bodyStart and bodyEnd delimit the text between leading and trailing
	// comments, whitespace trimmed.
	bodyStart, bodyEnd int
	// masked is the text with quoted literals and comments blanked out, so
	// keyword patterns never match inside them. It has the same length as the
	// input.
	masked string
}

// scanComments finds every comment outside quoted literals. The MySQL
// tokenizer inlines executable comments, so comments are located on the raw
// text instead.
func scanComments(sql string) scanResult {
	var (
		res    scanResult
		masked = []byte(sql)
		first  = -1
		last   = -1
	)
	blank := func(from, to int) {
		for k := from; k < to; k++ {
			if masked[k] != '\n' {
				masked[k] = ' '
			}
		}
	}
	i := 0
	for i < len(sql) {
		ch := sql[i]
		switch {
		case ch == '\'' || ch == '"' || ch == '`':
			end := skipQuoted(sql, i)
			if ch != '`' {
				blank(i+1, max(i+1, end-1))
			}
			if first < 0 {
				first = i
			}
			last = end
			i = end
		case ch == '/' && i+1 < len(sql) && sql[i+1] == '*':
			end := strings.Index(sql[i+2:], "*/")
			if end < 0 {
				// Unterminated; leave it to the parser to reject.
				last = len(sql)
				if first < 0 {
					first = i
				}
				i = len(sql)
				continue
			}
			end += i + 4
			res.comments = append(res.comments, comment{text: sql[i:end], start: i, end: end})
			blank(i, end)
			i = end
		case ch == '#' || (ch == '-' && i+1 < len(sql) && sql[i+1] == '-'):
			end := strings.IndexByte(sql[i:], '\n')
			if end < 0 {
				end = len(sql)
			} else {
				end += i
			}
			res.comments = append(res.comments, comment{text: strings.TrimRight(sql[i:end], " \t\r"), start: i, end: end})
			blank(i, end)
			i = end
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			i++
		default:
			if first < 0 {
				first = i
			}
			i++
			last = i
		}
	}
	if first < 0 {
		first, last = len(sql), len(sql)
	}
	res.bodyStart, res.bodyEnd = first, last
	res.masked = string(masked)
	return res
}

// skipQuoted returns the offset just past the literal opened at sql[start].
// Doubled delimiters and backslash escapes stay inside the literal.
func skipQuoted(sql string, start int) int {
	delim := sql[start]
	for i := start + 1; i < len(sql); i++ {
		switch sql[i] {
		case '\\':
			if delim != '`' {
				i++
			}
		case delim:
			if i+1 < len(sql) && sql[i+1] == delim {
				i++
				continue
			}
			return i + 1
		}
	}
	return len(sql)
}

// hints converts the scanned comments into statement hints. Comments after the
// body are marked trailing.
func (r scanResult) hints() []*ast.CommentHint {
	if len(r.comments) == 0 {
		return nil
	}
	out := make([]*ast.CommentHint, 0, len(r.comments))
	for _, c := range r.comments {
		out = append(out, &ast.CommentHint{
			Text:     c.text,
			Type:     classifyHint(c.text),
			Trailing: c.start >= r.bodyEnd && r.bodyEnd > r.bodyStart,
		})
	}
	return out
}

// classifyHint maps a comment to its hint kind by prefix.
func classifyHint(text string) ast.HintKind {
	switch {
	case strings.HasPrefix(text, "/*!"):
		return ast.HintExecutable
	case strings.HasPrefix(text, "/*+"):
		return ast.HintOptimizer
	case len(text) >= 7 && strings.EqualFold(text[:7], "/*TDDL:"):
		return ast.HintVendor
	default:
		return ast.HintComment
	}
}
