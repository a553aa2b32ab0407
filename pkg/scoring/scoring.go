// Package scoring rates how closely a candidate's title and author match a
// reference title and author.
package scoring

import (
	"unicode/utf8"

	"github.com/agext/levenshtein"
	"github.com/cockroachdb/apd/v3"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// EmbeddedConfidence is assigned to the candidate built from the file's own
	// metadata or name.
	EmbeddedConfidence = 85.0

	// scoreScale is the number of decimal places a score is rounded to
	// before it leaves the package.
	scoreScale = 10
)

var (
	// Scores are computed in 28 significant digits with banker's rounding,
	// so a score that is exactly on the threshold compares as such.
	decimalCtx = func() *apd.Context {
		c := apd.BaseContext.WithPrecision(28)
		c.Rounding = apd.RoundHalfEven
		return c
	}()

	titleWeight  = apd.New(6, -1)
	authorWeight = apd.New(4, -1)
	hundred      = apd.New(100, 0)
)

// Score returns a weighted similarity in [0, 100]. Title similarity counts for
// 60% and author similarity for 40%. Comparison is case-insensitive.
func Score(refTitle, refAuthor, candTitle, candAuthor string) float64 {
	lower := cases.Lower(language.Und)
	titleSim := similarity(lower.String(refTitle), lower.String(candTitle))
	authorSim := similarity(lower.String(refAuthor), lower.String(candAuthor))

	var weightedTitle, weightedAuthor, sum, score apd.Decimal
	ed := apd.MakeErrDecimal(decimalCtx)
	ed.Mul(&weightedTitle, titleWeight, titleSim)
	ed.Mul(&weightedAuthor, authorWeight, authorSim)
	ed.Add(&sum, &weightedTitle, &weightedAuthor)
	ed.Mul(&score, &sum, hundred)
	ed.Quantize(&score, &score, -scoreScale)
	if ed.Err() != nil {
		return 0
	}
	return toFloat(&score)
}

// Similarity is the normalized edit similarity of a and b:
// (longer - distance) / longer, measured in runes. Two empty strings are
// identical.
func Similarity(a, b string) float64 {
	return toFloat(similarity(a, b))
}

func similarity(a, b string) *apd.Decimal {
	longer := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longer {
		longer = n
	}
	if longer == 0 {
		return apd.New(1, 0)
	}
	dist := levenshtein.Distance(a, b, nil)

	sim := new(apd.Decimal)
	if _, err := decimalCtx.Quo(sim, apd.New(int64(longer-dist), 0), apd.New(int64(longer), 0)); err != nil {
		return apd.New(0, 0)
	}
	return sim
}

func toFloat(d *apd.Decimal) float64 {
	f, err := d.Float64()
	if err != nil {
		return 0
	}
	return f
}
