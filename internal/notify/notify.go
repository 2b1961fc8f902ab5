// Package notify delivers verification results to the client waiting on them.
// Delivery is decoupled from the synchronous HTTP response: the pipeline
// publishes after the verdict is settled and never waits on, or fails for, the
// publish.
package notify

import "context"

// Notifier publishes a verdict payload on the logical channel of the user who
// initiated the presentation request.
type Notifier interface {
	Publish(ctx context.Context, userID string, payload any) error
}

// Channel names the pub/sub channel for one user's presentation results.
func Channel(userID string) string {
	return "presentation:user:" + userID
}
