package query

import (
	"fmt"
	"strings"
)

const (
	maxFilters = 32
	maxSorts   = 8
)

// Filter operators shared by both compile targets
const (
	opEq         = "$eq"
	opNe         = "$ne"
	opGt         = "$gt"
	opGte        = "$gte"
	opLt         = "$lt"
	opLte        = "$lte"
	opContains   = "$contains"
	opStartsWith = "$startsWith"
	opEndsWith   = "$endsWith"
	opExists     = "$exists"
)

// filterEntry is one predicate. The value is stored pre-rendered as a JSON
// literal so both compile targets can embed it as-is.
type filterEntry struct {
	field string
	op    string
	value string
}

// sortEntry is one ordering directive
type sortEntry struct {
	field      string
	descending bool
}

// Builder assembles a server-side query from typed predicates. All methods
// return the builder itself so calls can be chained, the zero limits keep
// the query unbounded.
//
// A builder is not safe for concurrent use.
type Builder struct {
	table    string
	filters  []filterEntry
	sorts    []sortEntry
	limit    int
	skip     int
	hasLimit bool
	hasSkip  bool
	changes  bool
}

// Table starts a new query against the named table
func Table(name string) *Builder {
	return &Builder{table: name}
}

// --------------------------------------------------------------------------
// Filter Methods
// --------------------------------------------------------------------------

// addFilter appends a predicate. Beyond the filter cap additions are
// silently ignored.
func (b *Builder) addFilter(field, op, value string) *Builder {
	if len(b.filters) >= maxFilters {
		return b
	}
	b.filters = append(b.filters, filterEntry{field: field, op: op, value: value})
	return b
}

// EqString matches documents whose field equals the given string
func (b *Builder) EqString(field, value string) *Builder {
	return b.addFilter(field, opEq, quote(value))
}

// EqInt matches documents whose field equals the given integer
func (b *Builder) EqInt(field string, value int64) *Builder {
	return b.addFilter(field, opEq, fmt.Sprintf("%d", value))
}

// EqFloat matches documents whose field equals the given number
func (b *Builder) EqFloat(field string, value float64) *Builder {
	return b.addFilter(field, opEq, fmt.Sprintf("%g", value))
}

// EqBool matches documents whose field equals the given boolean
func (b *Builder) EqBool(field string, value bool) *Builder {
	return b.addFilter(field, opEq, fmt.Sprintf("%t", value))
}

// NeString matches documents whose field differs from the given string
func (b *Builder) NeString(field, value string) *Builder {
	return b.addFilter(field, opNe, quote(value))
}

// NeInt matches documents whose field differs from the given integer
func (b *Builder) NeInt(field string, value int64) *Builder {
	return b.addFilter(field, opNe, fmt.Sprintf("%d", value))
}

// Gt matches documents whose field is greater than the given number
func (b *Builder) Gt(field string, value float64) *Builder {
	return b.addFilter(field, opGt, fmt.Sprintf("%g", value))
}

// Gte matches documents whose field is greater than or equal to the given number
func (b *Builder) Gte(field string, value float64) *Builder {
	return b.addFilter(field, opGte, fmt.Sprintf("%g", value))
}

// Lt matches documents whose field is less than the given number
func (b *Builder) Lt(field string, value float64) *Builder {
	return b.addFilter(field, opLt, fmt.Sprintf("%g", value))
}

// Lte matches documents whose field is less than or equal to the given number
func (b *Builder) Lte(field string, value float64) *Builder {
	return b.addFilter(field, opLte, fmt.Sprintf("%g", value))
}

// Contains matches documents whose string field contains the given substring
func (b *Builder) Contains(field, value string) *Builder {
	return b.addFilter(field, opContains, quote(value))
}

// StartsWith matches documents whose string field starts with the given prefix
func (b *Builder) StartsWith(field, value string) *Builder {
	return b.addFilter(field, opStartsWith, quote(value))
}

// EndsWith matches documents whose string field ends with the given suffix
func (b *Builder) EndsWith(field, value string) *Builder {
	return b.addFilter(field, opEndsWith, quote(value))
}

// Exists matches documents by the presence or absence of a field
func (b *Builder) Exists(field string, exists bool) *Builder {
	return b.addFilter(field, opExists, fmt.Sprintf("%t", exists))
}

// --------------------------------------------------------------------------
// Ordering and Pagination Methods
// --------------------------------------------------------------------------

// addSort appends an ordering directive. Beyond the sort cap additions are
// silently ignored.
func (b *Builder) addSort(field string, descending bool) *Builder {
	if len(b.sorts) >= maxSorts {
		return b
	}
	b.sorts = append(b.sorts, sortEntry{field: field, descending: descending})
	return b
}

// OrderBy sorts the result ascending by the given field
func (b *Builder) OrderBy(field string) *Builder {
	return b.addSort(field, false)
}

// OrderByDesc sorts the result descending by the given field
func (b *Builder) OrderByDesc(field string) *Builder {
	return b.addSort(field, true)
}

// Limit caps the number of returned documents
func (b *Builder) Limit(n int) *Builder {
	b.limit = n
	b.hasLimit = true
	return b
}

// Skip drops the first n documents of the result
func (b *Builder) Skip(n int) *Builder {
	b.skip = n
	b.hasSkip = true
	return b
}

// Changes turns the query into a change feed request for use with Subscribe
func (b *Builder) Changes() *Builder {
	b.changes = true
	return b
}

// --------------------------------------------------------------------------
// Compile Methods
// --------------------------------------------------------------------------

// Compile renders the query in the JavaScript chain form understood by the
// server's query evaluator
func (b *Builder) Compile() string {
	var sb strings.Builder

	sb.WriteString(`db.table("`)
	sb.WriteString(b.table)
	sb.WriteString(`")`)

	if len(b.filters) > 0 {
		sb.WriteString(".filter(doc => ")
		for i, f := range b.filters {
			if i > 0 {
				sb.WriteString(" && ")
			}
			writeJSClause(&sb, f)
		}
		sb.WriteString(")")
	}

	for _, s := range b.sorts {
		if s.descending {
			fmt.Fprintf(&sb, ".orderBy(%q, %q)", s.field, "desc")
		} else {
			fmt.Fprintf(&sb, ".orderBy(%q)", s.field)
		}
	}

	if b.hasLimit {
		fmt.Fprintf(&sb, ".limit(%d)", b.limit)
	}
	if b.hasSkip {
		fmt.Fprintf(&sb, ".skip(%d)", b.skip)
	}

	if b.changes {
		sb.WriteString(".changes()")
	} else {
		sb.WriteString(".run()")
	}

	return sb.String()
}

// CompileStructured renders the query as the structured JSON form. Filters
// keep their insertion order, which JSON marshaling of a map would not
// guarantee.
func (b *Builder) CompileStructured() string {
	var sb strings.Builder

	sb.WriteString(`{"table":"`)
	sb.WriteString(b.table)
	sb.WriteString(`"`)

	if len(b.filters) > 0 {
		sb.WriteString(`,"filter":{`)
		for i, f := range b.filters {
			if i > 0 {
				sb.WriteString(",")
			}
			fmt.Fprintf(&sb, `"%s":{"%s":%s}`, f.field, f.op, f.value)
		}
		sb.WriteString("}")
	}

	if len(b.sorts) > 0 {
		sb.WriteString(`,"sort":[`)
		for i, s := range b.sorts {
			if i > 0 {
				sb.WriteString(",")
			}
			direction := "asc"
			if s.descending {
				direction = "desc"
			}
			fmt.Fprintf(&sb, `{"field":"%s","direction":"%s"}`, s.field, direction)
		}
		sb.WriteString("]")
	}

	if b.hasLimit {
		fmt.Fprintf(&sb, `,"limit":%d`, b.limit)
	}
	if b.hasSkip {
		fmt.Fprintf(&sb, `,"skip":%d`, b.skip)
	}
	if b.changes {
		sb.WriteString(`,"changes":{"includeInitial":false}`)
	}

	sb.WriteString("}")

	return sb.String()
}

// --------------------------------------------------------------------------
// Helper Functions
// --------------------------------------------------------------------------

// writeJSClause renders a single predicate as a JavaScript expression
func writeJSClause(sb *strings.Builder, f filterEntry) {
	switch f.op {
	case opEq:
		fmt.Fprintf(sb, "doc.%s === %s", f.field, f.value)
	case opNe:
		fmt.Fprintf(sb, "doc.%s !== %s", f.field, f.value)
	case opGt:
		fmt.Fprintf(sb, "doc.%s > %s", f.field, f.value)
	case opGte:
		fmt.Fprintf(sb, "doc.%s >= %s", f.field, f.value)
	case opLt:
		fmt.Fprintf(sb, "doc.%s < %s", f.field, f.value)
	case opLte:
		fmt.Fprintf(sb, "doc.%s <= %s", f.field, f.value)
	case opContains:
		fmt.Fprintf(sb, "doc.%s.includes(%s)", f.field, f.value)
	case opStartsWith:
		fmt.Fprintf(sb, "doc.%s.startsWith(%s)", f.field, f.value)
	case opEndsWith:
		fmt.Fprintf(sb, "doc.%s.endsWith(%s)", f.field, f.value)
	case opExists:
		if f.value == "true" {
			fmt.Fprintf(sb, "doc.%s !== undefined", f.field)
		} else {
			fmt.Fprintf(sb, "doc.%s === undefined", f.field)
		}
	default:
		sb.WriteString("true")
	}
}

// quote renders a string as a JSON literal, escaping quotes and backslashes
func quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		if s[i] == '"' || s[i] == '\\' {
			sb.WriteByte('\\')
		}
		sb.WriteByte(s[i])
	}
	sb.WriteByte('"')
	return sb.String()
}
