// Package assertplugin provides testing functions to validate a plugin's overall functionality.
// This package is designed to play well but not require the assertanswer package for validation
// of answers
//
// The asserter drives plugins the way the engine does in a simplified form: hear actions run on
// every message and commands run on messages starting with <@botUserID> or sent on a direct
// channel (a channel id starting with D). Answers are returned as is, without being sent.
//
// Example:
//
//	func TestPlugin(t *testing.T) {
//	    assertplugin := assertplugin.New(t, "bot")
//	    yourPlugin := newPlugin()
//
//	    assertplugin.AnswersAndReacts(yourPlugin, &slack.Msg{Text: "#a1b2c3"}, func(t *testing.T, answers []*omegabot.Answer, emojis []string) bool {
//	        return assert.Len(t, answers, 1) && assertanswer.HasAttachmentTitle(t, answers[0], "Casper color")
//	    })
//	}
package assertplugin
