package entitlement

import "strings"

// Key is the canonical identity used for quota accounting. Every cosmetic
// variant of an item's display name resolves to exactly one Key.
type Key string

// Well-known keys referenced by the evaluator and the alias table.
const (
	KeyJoggingPants Key = "jogging-pants"
	KeyLogoPatch    Key = "logo-patch"
)

// aliases maps normalized display-name variants to their canonical key.
// This is the single source of truth; the per-screen tables the admin and
// student flows used to carry separately are collapsed here.
var aliases = map[string]Key{
	"kinder necktie":            "kinder-necktie",
	"necktie kinder":            "kinder-necktie",
	"necktie":                   "necktie",
	"grade school necktie":      "necktie",
	"necktie grade school":      "necktie",
	"kinder skirt":              "kinder-skirt",
	"skirt kinder":              "kinder-skirt",
	"skirt":                     "skirt",
	"pleated skirt":             "skirt",
	"skirt grade school":        "skirt",
	"blouse":                    "blouse",
	"white blouse":              "blouse",
	"blouse grade school":       "blouse",
	"blouse junior high school": "blouse",
	"id lace":                   "id-lace",
	"new id lace":               "id-lace",
	"id lace college":           "id-lace",
	"id lace senior high school": "id-lace",
	"jersey":                    "jersey",
	"school jersey":             "jersey",
	"jersey senior high school": "jersey",
	"short":                     "short",
	"shorts":                    "short",
	"pe short":                  "short",
	"pe shorts":                 "short",
	"short grade school":        "short",
	"polo":                      "polo",
	"white polo":                "polo",
	"polo college":              "polo",
	"pe shirt":                  "pe-shirt",
	"pe t shirt":                "pe-shirt",
	"scarf":                     "scarf",
	"neck scarf":                "scarf",
}

// Resolve maps a free-form item display name to its entitlement key.
// Pure and total: every input resolves to some key, unknown names fall
// back to their own normalized slug.
func Resolve(displayName string) Key {
	n := normalizeName(displayName)

	// Family rules run before the alias table: these two items ship under
	// many cosmetic suffixes ("Small Jogging Pants", "Jogging Pants
	// (College)", "New Logo Patch (Senior High School)") that all denote
	// the same physical item.
	if strings.Contains(n, "jogging pants") {
		return KeyJoggingPants
	}
	if strings.Contains(n, "logo patch") {
		return KeyLogoPatch
	}

	if k, ok := aliases[n]; ok {
		return k
	}
	if n == "" {
		return Key("unspecified")
	}
	return Key(strings.ReplaceAll(n, " ", "-"))
}

// normalizeName lowercases, drops parentheses and punctuation that only
// carries qualifiers, and collapses whitespace.
func normalizeName(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '(', ')', ',', '-', '_', '/':
			b.WriteByte(' ')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
