// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package slackx wraps the Slack Web API behind a small interface so the
// dispatcher and reminder runner can be tested against fakes.
package slackx

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"
	"golang.org/x/time/rate"
)

// Messenger is the outbound Slack surface the rest of the app uses.
type Messenger interface {
	PostDM(ctx context.Context, userID, text string) error
	PostChannel(ctx context.Context, channelID, text string) error
	PostEphemeral(ctx context.Context, channelID, userID, text string) error
	PublishHome(ctx context.Context, userID string, blocks []slack.Block) error
	OpenModal(ctx context.Context, triggerID string, view slack.ModalViewRequest) error
}

// Client talks to the Slack Web API. All posting calls share one rate
// limiter so reminder fan-out stays inside Slack's chat.postMessage tier.
type Client struct {
	api     *slack.Client
	limiter *rate.Limiter
}

var _ Messenger = (*Client)(nil)

func New(botToken string) *Client {
	return &Client{
		api:     slack.New(botToken),
		limiter: rate.NewLimiter(rate.Limit(1), 5),
	}
}

func (c *Client) PostDM(ctx context.Context, userID, text string) error {
	return c.post(ctx, userID, text)
}

func (c *Client) PostChannel(ctx context.Context, channelID, text string) error {
	return c.post(ctx, channelID, text)
}

// post covers both DMs and channels: chat.postMessage opens the IM
// conversation itself when given a user ID.
func (c *Client) post(ctx context.Context, target, text string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	_, _, err := c.api.PostMessageContext(ctx, target, slack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("posting to %s: %w", target, err)
	}
	return nil
}

func (c *Client) PostEphemeral(ctx context.Context, channelID, userID, text string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	_, err := c.api.PostEphemeralContext(ctx, channelID, userID, slack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("posting ephemeral to %s: %w", userID, err)
	}
	return nil
}

func (c *Client) PublishHome(ctx context.Context, userID string, blocks []slack.Block) error {
	view := slack.HomeTabViewRequest{
		Type:   slack.VTHomeTab,
		Blocks: slack.Blocks{BlockSet: blocks},
	}
	_, err := c.api.PublishViewContext(ctx, slack.PublishViewContextRequest{UserID: userID, View: view})
	if err != nil {
		return fmt.Errorf("publishing home for %s: %w", userID, err)
	}
	return nil
}

func (c *Client) OpenModal(ctx context.Context, triggerID string, view slack.ModalViewRequest) error {
	_, err := c.api.OpenViewContext(ctx, triggerID, view)
	if err != nil {
		return fmt.Errorf("opening modal: %w", err)
	}
	return nil
}
