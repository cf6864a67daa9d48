package slack

import (
	"fmt"

	slackapi "github.com/slack-go/slack"
)

// Client posts to the customer-success Slack channels. A client built with
// an empty token is disabled and drops messages silently, so callers don't
// need to branch on configuration.
type Client struct {
	api            *slackapi.Client
	defaultChannel string
}

func NewClient(token, defaultChannel string) *Client {
	c := &Client{defaultChannel: defaultChannel}
	if token != "" {
		c.api = slackapi.New(token)
	}
	return c
}

func (c *Client) SendMessage(channel, text string) error {
	if c.api == nil {
		return nil
	}
	if channel == "" {
		channel = c.defaultChannel
	}
	if _, _, err := c.api.PostMessage(channel, slackapi.MsgOptionText(text, false)); err != nil {
		return fmt.Errorf("failed to post to %s: %w", channel, err)
	}
	return nil
}
