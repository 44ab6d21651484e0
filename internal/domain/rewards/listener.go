package rewards

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
)

// Grant announces a committed reward or charge.
type Grant struct {
	UserID  snowflake.ID
	Kind    EntryType
	Receipt Receipt
	// Detail names what was granted: a quest id, a cycle day or a segment id.
	Detail string
}

// Listener is told about every committed grant. Errors are logged, never rolled back.
type Listener interface {
	Granted(ctx context.Context, g Grant) error
}

type ListenerFunc func(ctx context.Context, g Grant) error

func (f ListenerFunc) Granted(ctx context.Context, g Grant) error {
	return f(ctx, g)
}
