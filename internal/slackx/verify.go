// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package slackx

import (
	"fmt"
	"io"
	"net/http"

	"github.com/slack-go/slack"
)

// ReadVerifiedBody reads the request body and checks the Slack signature
// against the signing secret. The body is returned for parsing since it can
// only be read once.
func ReadVerifiedBody(r *http.Request, signingSecret string) ([]byte, error) {
	verifier, err := slack.NewSecretsVerifier(r.Header, signingSecret)
	if err != nil {
		return nil, fmt.Errorf("initializing verifier: %w", err)
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	if _, err := verifier.Write(body); err != nil {
		return nil, err
	}
	if err := verifier.Ensure(); err != nil {
		return nil, fmt.Errorf("signature mismatch: %w", err)
	}
	return body, nil
}
