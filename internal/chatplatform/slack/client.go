// Package slack adapts the slack-go/slack SDK to the chatplatform.Client
// surface and drives Socket Mode ingress for app_mention events.
package slack

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"

	"github.com/mentionharness/harness/internal/chatplatform"
)

// Client wraps a slack.Client for outbound calls. It implements
// chatplatform.Client.
type Client struct {
	api *slack.Client
}

// New builds a Client authenticated with botToken.
func New(botToken string, opts ...slack.Option) *Client {
	return &Client{api: slack.New(botToken, opts...)}
}

// API exposes the underlying slack.Client for the ingress adapter, which
// needs it to construct the Socket Mode client.
func (c *Client) API() *slack.Client { return c.api }

func (c *Client) PostReply(ctx context.Context, channel, threadTS, text string) error {
	_, _, err := c.api.PostMessageContext(ctx, channel,
		slack.MsgOptionText(text, false),
		slack.MsgOptionTS(threadTS),
		slack.MsgOptionDisableLinkUnfurl(),
		slack.MsgOptionDisableMediaUnfurl(),
	)
	if err != nil {
		return fmt.Errorf("post reply: %w", err)
	}
	return nil
}

func (c *Client) AddReaction(ctx context.Context, channel, ts, emoji string) error {
	ref := slack.NewRefToMessage(channel, ts)
	if err := c.api.AddReactionContext(ctx, emoji, ref); err != nil {
		return fmt.Errorf("add reaction: %w", err)
	}
	return nil
}

func (c *Client) RemoveReaction(ctx context.Context, channel, ts, emoji string) error {
	ref := slack.NewRefToMessage(channel, ts)
	if err := c.api.RemoveReactionContext(ctx, emoji, ref); err != nil {
		return fmt.Errorf("remove reaction: %w", err)
	}
	return nil
}

var _ chatplatform.Client = (*Client)(nil)
