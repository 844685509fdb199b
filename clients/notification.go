package clients

import (
	"context"

	"github.com/wizarding-anonymous/cryo-sub004/circuitbreaker"
	"github.com/wizarding-anonymous/cryo-sub004/dispatch"
	"github.com/wizarding-anonymous/cryo-sub004/httpclient"
	"github.com/wizarding-anonymous/cryo-sub004/log"
)

// NotificationClient calls the peer notification service. Delivery is
// explicitly non-critical: a lost notification must never fail the caller's
// primary transaction, so exhausted retries are logged and swallowed.
type NotificationClient struct {
	http       *httpclient.Client
	deps       Deps
	dispatcher *dispatch.Dispatcher
	logger     log.Logger
}

// NewNotificationClient creates the notification-service client and
// registers its circuit. The dispatcher may be nil when SendAsync is unused.
func NewNotificationClient(http *httpclient.Client, deps Deps, dispatcher *dispatch.Dispatcher, breakerCfg circuitbreaker.Config) *NotificationClient {
	deps.Breaker.Register(circuitbreaker.NotificationService, breakerCfg)

	return &NotificationClient{
		http:       http,
		deps:       deps,
		dispatcher: dispatcher,
		logger:     deps.logger().WithFields("client", string(circuitbreaker.NotificationService)),
	}
}

// Send delivers a notification through the retry/circuit stack. Best-effort:
// after the budget is exhausted (or while the circuit is open) the failure
// is logged and swallowed.
func (c *NotificationClient) Send(ctx context.Context, n Notification) {
	if err := c.deliver(ctx, n); err != nil {
		c.logger.Warnf("Notification delivery failed for user %s (type %s): %v", n.UserID, n.Type, err)
	}
}

// SendAsync enqueues the notification on the bounded background dispatcher
// and returns immediately. Returns false when the queue is full and the
// notification was dropped.
func (c *NotificationClient) SendAsync(n Notification) bool {
	if c.dispatcher == nil {
		c.logger.Warnf("SendAsync called without a dispatcher, dropping notification for user %s", n.UserID)

		return false
	}

	return c.dispatcher.Enqueue("notification:"+n.Type, func(ctx context.Context) error {
		return c.deliver(ctx, n)
	})
}

func (c *NotificationClient) deliver(ctx context.Context, n Notification) error {
	_, err := call(ctx, c.deps, circuitbreaker.NotificationService, func(ctx context.Context) (any, error) {
		return nil, c.http.Post(ctx, "/api/v1/notifications", n, nil)
	})

	return err
}

// Ping is the lightweight representative call used by the health monitor.
func (c *NotificationClient) Ping(ctx context.Context) error {
	return c.http.Get(ctx, "/health", nil, nil)
}
