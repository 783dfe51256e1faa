package frontend

// reservedWord pairs a keyword spelling with the token type it scans to.
type reservedWord struct {
	val string
	typ tokenType
}

// rw holds the reserved C keywords this subset recognizes, bucketed by
// word length (first dimension) so isKeyword only scans the bucket a
// candidate could possibly belong to, rather than the full table.
var rw = [...][]reservedWord{
	// One-grams
	{},
	// Two-grams
	{
		{val: "if", typ: tokIf},
		{val: "do", typ: tokDo},
	},
	// Three-grams
	{
		{val: "int", typ: tokInt},
		{val: "for", typ: tokFor},
	},
	// Four-grams
	{
		{val: "char", typ: tokChar},
		{val: "void", typ: tokVoid},
		{val: "enum", typ: tokEnum},
		{val: "else", typ: tokElse},
		{val: "goto", typ: tokGoto},
		{val: "long", typ: tokLong},
		{val: "case", typ: tokCase},
	},
	// Five-grams
	{
		{val: "float", typ: tokFloat},
		{val: "short", typ: tokShort},
		{val: "while", typ: tokWhile},
		{val: "break", typ: tokBreak},
	},
	// Six-grams
	{
		{val: "double", typ: tokDouble},
		{val: "return", typ: tokReturn},
		{val: "switch", typ: tokSwitch},
		{val: "sizeof", typ: tokSizeof},
	},
	// Seven-grams
	{
		{val: "default", typ: tokDefault},
	},
	// Eight-grams
	{
		{val: "continue", typ: tokContinue},
	},
}

// isKeyword reports whether s is a reserved keyword, returning its token
// type if so.
func isKeyword(s string) (tokenType, bool) {
	if len(s) == 0 || len(s) > len(rw) {
		return 0, false
	}
	for _, w := range rw[len(s)-1] {
		if w.val == s {
			return w.typ, true
		}
	}
	return 0, false
}
