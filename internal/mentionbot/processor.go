// Package mentionbot is a reference processor: reaction/reply
// choreography around a pluggable Responder. It is example wiring, not
// part of the harness itself.
package mentionbot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/mentionharness/harness/internal/chatplatform"
	"github.com/mentionharness/harness/internal/hctx"
	"github.com/mentionharness/harness/internal/model"
	"github.com/mentionharness/harness/internal/observability/jsonlog"
)

// Responder produces reply text for a mention. The harness supplies the
// concrete implementation (an LLM agent, a canned responder, whatever);
// this package only owns the surrounding reaction/reply choreography.
type Responder interface {
	Respond(ctx context.Context, m chatplatform.Mention) (string, error)
}

// Processor adapts a Responder to processor.Processor.
type Processor struct {
	Responder   Responder
	MaxAttempts int
	Log         *jsonlog.Logger
}

func New(r Responder, maxAttempts int, logger *jsonlog.Logger) *Processor {
	if logger == nil {
		logger = jsonlog.New(io.Discard)
	}
	return &Processor{Responder: r, MaxAttempts: maxAttempts, Log: logger}
}

type mentionPayload struct {
	User     string `json:"user"`
	Text     string `json:"text"`
	Channel  string `json:"channel"`
	TS       string `json:"ts"`
	ThreadTS string `json:"thread_ts"`
}

// Process decodes ev's payload, marks it as being worked with a
// spinthinking reaction, runs the responder, and posts the reply threaded
// under the mention (or under its own timestamp if it wasn't already in a
// thread). On failure it swaps the reaction for an x and tells the user
// whether this will be retried, based on whether the event has attempts
// remaining.
func (p *Processor) Process(ctx context.Context, hc hctx.Context, ev model.Event) error {
	var raw mentionPayload
	if err := json.Unmarshal(ev.Payload, &raw); err != nil {
		return fmt.Errorf("decode mention: %w", err)
	}

	replyTS := raw.ThreadTS
	if replyTS == "" {
		replyTS = raw.TS
	}

	_ = hc.Chat.AddReaction(ctx, raw.Channel, raw.TS, "spinthinking")

	text, err := p.Responder.Respond(ctx, chatplatform.Mention{
		Channel:   raw.Channel,
		User:      raw.User,
		Text:      raw.Text,
		Timestamp: raw.TS,
		ThreadTS:  raw.ThreadTS,
	})
	if err != nil {
		p.Log.Error("respond failed", map[string]any{"event_id": ev.ID, "err": err.Error()})
		_ = hc.Chat.RemoveReaction(ctx, raw.Channel, raw.TS, "spinthinking")
		_ = hc.Chat.AddReaction(ctx, raw.Channel, raw.TS, "x")

		giveUp := "I give up. Sorry."
		if p.MaxAttempts <= 0 || ev.Attempts < p.MaxAttempts {
			giveUp = "I experienced an issue trying to respond. I will try again."
		}
		_ = hc.Chat.PostReply(ctx, raw.Channel, replyTS, giveUp)
		return err
	}

	if err := hc.Chat.PostReply(ctx, raw.Channel, replyTS, text); err != nil {
		return fmt.Errorf("post reply: %w", err)
	}
	_ = hc.Chat.RemoveReaction(ctx, raw.Channel, raw.TS, "spinthinking")
	_ = hc.Chat.AddReaction(ctx, raw.Channel, raw.TS, "white_check_mark")
	return nil
}
