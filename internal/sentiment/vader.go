package sentiment

import (
	"context"
	"regexp"
	"strings"

	"github.com/jonreiter/govader"
	"github.com/russross/blackfriday/v2"
)

const vaderThreshold = 0.20

var (
	linkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern  = regexp.MustCompile(`https?://\S+|www\.\S+`)
)

func RemoveLinks(input string) string {
	input = linkPattern.ReplaceAllString(input, "$1") // Keep only the text
	return urlPattern.ReplaceAllString(input, "")
}

func ConvertMarkdownToText(input string) string {
	output := blackfriday.Run([]byte(input), blackfriday.WithNoExtensions())
	plainText := strings.Join(strings.Fields(stripTags(string(output))), " ")

	return RemoveLinks(plainText)
}

var tagPattern = regexp.MustCompile(`<[^>]+>`)

func stripTags(html string) string {
	return tagPattern.ReplaceAllString(html, " ")
}

// VaderGenerator answers sentiment prompts locally with the VADER lexicon
// instead of a hosted model. It reads the last "User:" line of the prompt
// and replies in the same "Bot: <label>" shape a model would.
type VaderGenerator struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewVaderGenerator() *VaderGenerator {
	return &VaderGenerator{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

func (v *VaderGenerator) Generate(ctx context.Context, prompt string, _ int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	_, label := v.Analyze(lastUserLine(prompt))
	return BotMarker + " " + label, nil
}

// Analyze returns the compound VADER score and its label.
func (v *VaderGenerator) Analyze(text string) (float64, string) {
	plainText := ConvertMarkdownToText(text)

	score := v.analyzer.PolarityScores(plainText).Compound

	switch {
	case score >= vaderThreshold:
		return score, LabelPositive
	case score <= -vaderThreshold:
		return score, LabelNegative
	default:
		return score, LabelNeutral
	}
}

func lastUserLine(prompt string) string {
	lines := strings.Split(prompt, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if rest, ok := strings.CutPrefix(lines[i], UserMarker); ok {
			return strings.TrimSpace(rest)
		}
	}
	return ""
}
