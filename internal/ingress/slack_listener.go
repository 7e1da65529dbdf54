package ingress

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"

	"github.com/mentionharness/harness/internal/model"
	"github.com/mentionharness/harness/internal/observability/jsonlog"
)

// appMentionPayload is the subset of a Slack app_mention event this
// harness cares about; extra fields on the wire are ignored.
type appMentionPayload struct {
	Type      string `json:"type"`
	User      string `json:"user"`
	Text      string `json:"text"`
	Channel   string `json:"channel"`
	Team      string `json:"team"`
	TS        string `json:"ts"`
	EventTS   string `json:"event_ts"`
	ThreadTS  string `json:"thread_ts,omitempty"`
}

// SlackListener drives a Socket Mode connection and forwards app_mention
// events to an Adapter.
type SlackListener struct {
	client  *socketmode.Client
	adapter *Adapter
	log     *jsonlog.Logger
}

// NewSlackListener wires api (an authenticated slack.Client) up to Socket
// Mode and to adapter.
func NewSlackListener(api *slack.Client, adapter *Adapter, logger *jsonlog.Logger) *SlackListener {
	if logger == nil {
		logger = jsonlog.New(io.Discard)
	}
	return &SlackListener{
		client:  socketmode.New(api),
		adapter: adapter,
		log:     logger,
	}
}

// Run blocks, processing Socket Mode events until ctx is canceled or the
// underlying connection fails unrecoverably.
func (l *SlackListener) Run(ctx context.Context) error {
	go func() {
		if err := l.client.RunContext(ctx); err != nil {
			l.log.Error("socket mode run exited", map[string]any{"err": err.Error()})
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, ok := <-l.client.Events:
			if !ok {
				return fmt.Errorf("slack listener: events channel closed")
			}
			l.handle(ctx, evt)
		}
	}
}

func (l *SlackListener) handle(ctx context.Context, evt socketmode.Event) {
	if evt.Type != socketmode.EventTypeEventsAPI {
		return
	}
	eventsAPI, ok := evt.Data.(slackevents.EventsAPIEvent)
	if !ok {
		l.log.Error("unexpected events API payload type", map[string]any{"type": fmt.Sprintf("%T", evt.Data)})
		return
	}

	inner, ok := eventsAPI.InnerEvent.Data.(*slackevents.AppMentionEvent)
	if !ok {
		return
	}

	payload := appMentionPayload{
		Type:     "app_mention",
		User:     inner.User,
		Text:     inner.Text,
		Channel:  inner.Channel,
		Team:     eventsAPI.TeamID,
		TS:       inner.TimeStamp,
		EventTS:  inner.EventTimeStamp,
		ThreadTS: inner.ThreadTimeStamp,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		l.log.Error("marshal app_mention failed", map[string]any{"err": err.Error()})
		return
	}

	occurredAt, err := model.ToAbsoluteTime(payload.EventTS)
	if err != nil {
		l.log.Error("bad event_ts", map[string]any{"event_ts": payload.EventTS, "err": err.Error()})
		return
	}

	ack := func() {
		if evt.Request != nil {
			l.client.Ack(*evt.Request)
		}
	}
	if err := l.adapter.HandleMention(ctx, "app_mention", occurredAt, raw, ack); err != nil {
		l.log.Error("handle mention failed", map[string]any{"err": err.Error()})
	}
}
