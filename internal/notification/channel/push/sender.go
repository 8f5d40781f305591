// Package push delivers Web Push messages to browser subscriptions.
package push

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"

	"peerhelp/internal/notification/models"
	"peerhelp/internal/platform/config"
)

// ErrSubscriptionGone means the push service no longer knows the endpoint
// (404 or 410). The subscription should be removed.
var ErrSubscriptionGone = errors.New("push subscription gone")

// Sender signs with VAPID and encrypts per RFC 8291 via webpush-go.
type Sender struct {
	publicKey  string
	privateKey string
	subscriber string
	ttl        int
	timeout    time.Duration
	client     webpush.HTTPClient
}

type Option func(*Sender)

// WithHTTPClient overrides the client used to reach push services.
func WithHTTPClient(c webpush.HTTPClient) Option {
	return func(s *Sender) {
		s.client = c
	}
}

func NewSender(cfg config.PushConfig, opts ...Option) *Sender {
	s := &Sender{
		publicKey:  cfg.VAPIDPublicKey,
		privateKey: cfg.VAPIDPrivateKey,
		subscriber: cfg.Subscriber,
		ttl:        cfg.TTL,
		timeout:    cfg.SendTimeout,
		client:     &http.Client{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send delivers one payload to one subscription, bounded by the configured
// send timeout when one is set.
func (s *Sender) Send(ctx context.Context, sub models.Subscription, p Payload) error {
	body, err := p.Encode()
	if err != nil {
		return fmt.Errorf("encode push payload: %w", err)
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	resp, err := webpush.SendNotificationWithContext(ctx, body, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, &webpush.Options{
		HTTPClient:      s.client,
		Subscriber:      s.subscriber,
		TTL:             s.ttl,
		Urgency:         webpush.UrgencyNormal,
		VAPIDPublicKey:  s.publicKey,
		VAPIDPrivateKey: s.privateKey,
	})
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return ErrSubscriptionGone
	case resp.StatusCode >= 400:
		return fmt.Errorf("push service returned status %d", resp.StatusCode)
	}
	return nil
}
