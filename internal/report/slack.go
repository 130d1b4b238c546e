package report

import (
	"fmt"

	"github.com/slack-go/slack"
)

// SlackPoster is the slice of the Slack API the deliverer needs; tests swap
// in a fake.
type SlackPoster interface {
	PostMessage(channelID string, options ...slack.MsgOption) (string, string, error)
}

// DeliverSlack posts the rendered report to a channel.
func DeliverSlack(api SlackPoster, channelID, content string) error {
	if channelID == "" {
		return fmt.Errorf("slack channel not configured")
	}
	_, _, err := api.PostMessage(channelID, slack.MsgOptionText(content, false))
	if err != nil {
		return fmt.Errorf("post report to slack: %w", err)
	}
	return nil
}

// NewSlackClient builds the real client from a bot token.
func NewSlackClient(token string) *slack.Client {
	return slack.New(token)
}
