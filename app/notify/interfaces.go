package notify

import (
	"context"
)

// Notifier delivers messages to a destination channel. Implementations own
// their retry policy; a returned error means the delivery is given up on.
type Notifier interface {
	SendText(ctx context.Context, destination, text string) error
	SendImage(ctx context.Context, destination, imagePath string) error
}
