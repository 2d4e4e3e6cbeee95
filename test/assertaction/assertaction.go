// Package assertaction provides testing functions for validation a plugin action's behavior
package assertaction

import (
	"testing"

	"github.com/omega-numworks/omegabot"
	"github.com/stretchr/testify/assert"
)

// AnswerValidator is a function to do further validation of an action's answer. The return value is meant to be true if validation
// is successful and false otherwise (following the testify convention)
type AnswerValidator func(t *testing.T, a *omegabot.Answer) bool

// MatchesAndAnswers asserts that the action.Match is true and gets the action's answer to be further validated by AnswerValidator
func MatchesAndAnswers(t *testing.T, action omegabot.ActionDefinition, m *omegabot.IncomingMessage, validateAnswer AnswerValidator) bool {
	if !assert.Truef(t, action.Match(m), "Message [%s] expected to match but action.Match returned false", m.NormalizedText) {
		return false
	}

	return validateAnswer(t, action.Answer(m))
}

// NotMatch asserts that action.Match is false
func NotMatch(t *testing.T, action omegabot.ActionDefinition, m *omegabot.IncomingMessage) bool {
	return assert.Falsef(t, action.Match(m), "Message [%s] should not be a match but action.Match returned true", m.NormalizedText)
}
