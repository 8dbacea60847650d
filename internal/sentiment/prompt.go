package sentiment

import (
	"fmt"
	"strings"
	"text/template"
)

// BotMarker prefixes the answer line the model is steered to emit.
const BotMarker = "Bot:"

// UserMarker prefixes every input line in the prompt, including the real query.
const UserMarker = "User:"

type example struct {
	Input string
	Label string
}

var fewShotExamples = []example{
	{Input: "Hi, my name is Bob", Label: LabelNeutral},
	{Input: "I am so happy today", Label: LabelPositive},
	{Input: "I am so sad today", Label: LabelNegative},
}

var promptTemplate = template.Must(template.New("sentiment").Parse(`<<SYS>>
You are a bot that generates sentiment analysis responses. Respond with a single positive, negative, or neutral.
<</SYS>>
<INST>
Follow the pattern of the following examples:
{{range .Examples}}
User: {{.Input}}
Bot: {{.Label}}
{{end}}</INST>

User: {{.Sentence}}
`))

// BuildPrompt renders the few-shot prompt for a single sentence.
func BuildPrompt(sentence string) (string, error) {
	var sb strings.Builder
	err := promptTemplate.Execute(&sb, struct {
		Examples []example
		Sentence string
	}{
		Examples: fewShotExamples,
		Sentence: sentence,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return sb.String(), nil
}
