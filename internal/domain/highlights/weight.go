package highlights

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

const baseWeight = 1.0

// Rule raises the weight of any chat line matching Pattern to at least Score.
type Rule struct {
	Pattern string
	Score   float64
}

// DefaultRules are tuned for Chinese live-stream chat: shock and meme
// phrases, question marks, laughter runs, and mild reactions.
var DefaultRules = []Rule{
	{Pattern: `警告|绷|笑死|名场面|锐评|蚌埠住了`, Score: 2.0},
	{Pattern: `[?\x{ff1f}]`, Score: 1.8},
	{Pattern: `(哈{2,}|h{3,}|[啊]{2,})`, Score: 1.5},
	{Pattern: `可爱捏|急了|牛`, Score: 1.2},
}

const (
	DefaultLongTextChars = 15
	DefaultLongTextBonus = 1.2
)

type compiledRule struct {
	re    *regexp.Regexp
	score float64
}

// Weigher assigns a salience weight to one chat line. It is safe for
// concurrent use.
type Weigher struct {
	rules         []compiledRule
	longTextChars int
	longTextBonus float64
}

// NewWeigher compiles rules case-insensitively. longTextChars <= 0 disables
// the long-text bonus.
func NewWeigher(rules []Rule, longTextChars int, longTextBonus float64) (*Weigher, error) {
	w := &Weigher{longTextChars: longTextChars, longTextBonus: longTextBonus}
	for i, r := range rules {
		re, err := regexp.Compile("(?i)" + r.Pattern)
		if err != nil {
			return nil, &ConfigError{Field: fmt.Sprintf("rules[%d].pattern", i), Reason: err.Error()}
		}
		w.rules = append(w.rules, compiledRule{re: re, score: r.Score})
	}
	return w, nil
}

// Weight returns max(1, matching rule scores, long-text bonus). Overlapping
// rules never add up.
func (w *Weigher) Weight(text string) float64 {
	weight := baseWeight
	for _, r := range w.rules {
		if r.re.MatchString(text) {
			weight = max(weight, r.score)
		}
	}
	if w.longTextChars > 0 && utf8.RuneCountInString(text) >= w.longTextChars {
		weight = max(weight, w.longTextBonus)
	}
	return weight
}
