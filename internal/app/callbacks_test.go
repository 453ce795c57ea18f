package app

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderCallbackPinsTemplateChoice(t *testing.T) {
	assert.Equal(t, "Wait, did someone say chat?", renderCallback(stubRand{v: 0}, "chat"))
	assert.Equal(t, "chat? chat!", renderCallback(stubRand{v: 3}, "chat"))
}

func TestEveryTemplateMentionsTheTopic(t *testing.T) {
	for i := range callbackTemplates {
		text := renderCallback(stubRand{v: i}, "chat")
		assert.Contains(t, text, "chat", "template %d", i)
		assert.False(t, strings.Contains(text, "{topic}"), "template %d left its placeholder", i)
	}
}

func TestSystemRandStaysInRange(t *testing.T) {
	for i := 0; i < 100; i++ {
		n := SystemRand{}.IntN(len(callbackTemplates))
		assert.GreaterOrEqual(t, n, 0)
		assert.Less(t, n, len(callbackTemplates))
	}
}
