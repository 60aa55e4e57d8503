package extract

import "regexp"

type rewrite struct {
	re   *regexp.Regexp
	repl string
}

// Shell wrappers and their JSON rewrites, most specific first. The quoted
// NumberLong form has to run before the bare one.
var rewrites = []rewrite{
	{regexp.MustCompile(`Timestamp\(\s*([^,()]+?)\s*,\s*\d+\s*\)`), `$1`},
	{regexp.MustCompile(`BinData\(\s*\d+\s*,\s*"([^"]*)"\s*\)`), `"$1"`},
	{regexp.MustCompile(`NumberLong\(\s*"(-?\d+)"\s*\)`), `$1`},
	{regexp.MustCompile(`NumberLong\(\s*(-?\d+)\s*\)`), `$1`},
	{regexp.MustCompile(`NumberInt\(\s*(-?\d+)\s*\)`), `$1`},
	{regexp.MustCompile(`NumberDecimal\(\s*"(-?\d+(?:\.\d+)?(?:[eE][+-]?\d+)?)"\s*\)`), `$1`},
	{regexp.MustCompile(`ObjectId\(\s*"([0-9a-fA-F]{24})"\s*\)`), `"$1"`},
	{regexp.MustCompile(`ISODate\(\s*"([^"]*)"\s*\)`), `"$1"`},
}

// Sanitize rewrites MongoDB shell scalar wrappers into bare JSON literals:
//
//	Timestamp(X, Y)       -> X
//	BinData(N, "B64")     -> "B64"
//	NumberLong("D")       -> D
//	NumberLong(D)         -> D
//	NumberInt(D)          -> D
//	NumberDecimal("D")    -> D
//	ObjectId("H")         -> "H"
//	ISODate("S")          -> "S"
//
// The rules are applied until nothing changes, so nested wrappers are fully
// unwrapped and Sanitize(Sanitize(s)) == Sanitize(s). Malformed wrappers are
// left as they are.
//
// Rules match anywhere in the block, including inside string literals:
// {"cmd":"NumberLong(5)"} becomes {"cmd":"5"}.
func Sanitize(block string) string {
	for {
		out := block
		for _, rw := range rewrites {
			out = rw.re.ReplaceAllString(out, rw.repl)
		}
		if out == block {
			return out
		}
		block = out
	}
}
