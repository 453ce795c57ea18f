package app

import (
	"math/rand"
	"strings"

	"github.com/nonsequitr/relay/internal/core"
)

// Sentence templates for callback interjections. {topic} is replaced with
// the translated term of the chosen pair.
var callbackTemplates = []string{
	"Wait, did someone say {topic}?",
	"Going back to that {topic} thing...",
	"I'm still thinking about {topic}!",
	"{topic}? {topic}!",
	"Remember when we were talking about {topic}?",
	"Hold on, {topic}? Really?",
	"Can we circle back to {topic}?",
}

func renderCallback(rnd core.Rand, topic string) string {
	tpl := callbackTemplates[rnd.IntN(len(callbackTemplates))]
	return strings.ReplaceAll(tpl, "{topic}", topic)
}

// SystemRand is the production randomness source.
type SystemRand struct{}

func (SystemRand) IntN(n int) int { return rand.Intn(n) }
