package platforms

import "regexp"

var plainIdentifier = regexp.MustCompile(`^[a-z_][a-z0-9_$]*$`)

// reservedWords lists the PostgreSQL keywords that cannot be used as bare identifiers.
var reservedWords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"all", "analyse", "analyze", "and", "any", "array", "as", "asc", "asymmetric",
		"authorization", "binary", "both", "case", "cast", "check", "collate", "column",
		"constraint", "create", "cross", "current_catalog", "current_date", "current_role",
		"current_schema", "current_time", "current_timestamp", "current_user", "default",
		"deferrable", "desc", "distinct", "do", "else", "end", "except", "false", "fetch",
		"for", "foreign", "freeze", "from", "full", "grant", "group", "having", "ilike",
		"in", "index", "initially", "inner", "intersect", "into", "is", "isnull", "join",
		"lateral", "leading", "left", "like", "limit", "localtime", "localtimestamp",
		"natural", "not", "notnull", "null", "offset", "on", "only", "or", "order", "outer",
		"overlaps", "placing", "primary", "references", "returning", "right", "select",
		"session_user", "similar", "some", "symmetric", "table", "then", "to", "trailing",
		"true", "union", "unique", "user", "using", "variadic", "verbose", "when", "where",
		"window", "with",
	} {
		reservedWords[w] = struct{}{}
	}
}

func needsQuoting(name string) bool {
	if !plainIdentifier.MatchString(name) {
		return true
	}
	_, reserved := reservedWords[name]
	return reserved
}
