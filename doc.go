/*
Package omegabot provides the chat engine of the Omega community bot.

The engine connects to slack over RTM and routes every event to partition workers keyed on the
id of the message it is about: messages, their deletion and reactions to them are processed in
order. Plugins combine:
  - Commands: run when the bot is mentioned (@omegabot) or on direct messages
  - Hear actions: run on every message written by a human
  - Reaction actions: run on every emoji reaction added to a message

Answers are tracked per triggering message and deleted when that message is deleted.

Plugins also have access to services injected on startup:
  - SLogger: To log debug/info statements
  - ChatDriver: To send or delete messages outside of the answer flow
  - EmojiReactor: To add or remove emoji reactions
  - UserInfoFinder: To query user info

Example code (adapted from cmd/omegabot):

	moderation, err := plugins.NewModeration(pc, formatStorer)
	if err != nil {
		log.Fatal(err)
	}

	bot, err := omegabot.NewBot("omegabot", v, omegabot.OptionMeter(meter)).
		WithPlugin(&moderation.Plugin).
		WithCloser(formatStorer).
		Build()
	if err != nil {
		log.Fatal(err)
	}
	defer bot.Close()

	if err = bot.Run(); err != nil {
		log.Fatal(err)
	}
*/
package omegabot
