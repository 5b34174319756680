package report

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"
)

// SlackNotifier posts reports to a Slack channel
type SlackNotifier struct {
	api     *slack.Client
	channel string
}

// NewSlackNotifier creates a notifier for channel. apiURL overrides the
// Slack endpoint and may be empty.
func NewSlackNotifier(token, channel, apiURL string) (*SlackNotifier, error) {
	if token == "" {
		return nil, fmt.Errorf("slack token is required")
	}
	if channel == "" {
		return nil, fmt.Errorf("slack channel is required")
	}

	var opts []slack.Option
	if apiURL != "" {
		opts = append(opts, slack.OptionAPIURL(apiURL))
	}

	return &SlackNotifier{
		api:     slack.New(token, opts...),
		channel: channel,
	}, nil
}

// Notify posts text as a plain message
func (s *SlackNotifier) Notify(ctx context.Context, text string) error {
	_, _, err := s.api.PostMessageContext(ctx, s.channel, slack.MsgOptionText("```"+text+"```", false))
	if err != nil {
		return fmt.Errorf("posting to slack: %w", err)
	}
	return nil
}
