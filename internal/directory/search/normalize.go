// Package search derives filtered, sorted and paginated views over the
// employee collection.
package search

import (
	"strings"

	"golang.org/x/text/cases"
)

// turkishFolds maps Turkish letters to their closest ASCII letter. It is
// applied before case folding because İ lower-cases to "i" plus a combining
// dot.
var turkishFolds = strings.NewReplacer(
	"ç", "c", "Ç", "c",
	"ğ", "g", "Ğ", "g",
	"ı", "i", "İ", "i",
	"ö", "o", "Ö", "o",
	"ş", "s", "Ş", "s",
	"ü", "u", "Ü", "u",
)

// Normalize folds s for comparison: Turkish diacritics become ASCII and the
// result is case folded.
func Normalize(s string) string {
	return cases.Fold().String(turkishFolds.Replace(s))
}
