// Package chatplatform defines the narrow surface event processors need
// against the chat platform, independent of any concrete SDK.
package chatplatform

import "context"

// Mention is a normalized inbound mention, decoded from whatever the
// concrete platform's event payload looks like.
type Mention struct {
	Channel     string
	User        string
	Text        string
	Timestamp   string // platform message timestamp, e.g. Slack "ts"
	ThreadTS    string // set if the mention was posted inside a thread
	TeamID      string
}

// Client is the outbound surface processors use to act on a mention:
// reply in-thread and leave lightweight visual feedback via reactions.
// It intentionally does not expose the whole platform SDK.
type Client interface {
	// PostReply sends text into the channel, threaded under threadTS (or
	// starting a new thread if threadTS is the mention's own timestamp).
	PostReply(ctx context.Context, channel, threadTS, text string) error

	// AddReaction and RemoveReaction toggle an emoji reaction on a
	// message, used for "still working" style feedback. Implementations
	// should treat failures here as non-fatal to the caller.
	AddReaction(ctx context.Context, channel, ts, emoji string) error
	RemoveReaction(ctx context.Context, channel, ts, emoji string) error
}
