package driven

import "context"

// Clipboard defines the driven port for handing a secret to the user's
// clipboard. Implementations may block; callers bound the call with ctx.
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}
