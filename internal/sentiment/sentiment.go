package sentiment

import "strings"

// Sentiment is one of the three labels the classifier can produce.
type Sentiment int

const (
	Positive Sentiment = iota + 1
	Negative
	Neutral
)

const (
	LabelPositive = "positive"
	LabelNegative = "negative"
	LabelNeutral  = "neutral"
)

func (s Sentiment) String() string {
	switch s {
	case Positive:
		return LabelPositive
	case Negative:
		return LabelNegative
	case Neutral:
		return LabelNeutral
	default:
		return ""
	}
}

// Bytes is the value written to the cache.
func (s Sentiment) Bytes() []byte {
	return []byte(s.String())
}

// TryParse matches text against the canonical labels after trimming whitespace.
// Matching is case-sensitive; anything else reports ok == false.
func TryParse(text string) (Sentiment, bool) {
	switch strings.TrimSpace(text) {
	case LabelPositive:
		return Positive, true
	case LabelNegative:
		return Negative, true
	case LabelNeutral:
		return Neutral, true
	default:
		return 0, false
	}
}
