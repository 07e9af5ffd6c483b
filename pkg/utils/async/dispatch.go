package async

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskmap/pkg/utils/errutil"
	"github.com/secmon-lab/riskmap/pkg/utils/logging"
)

// Dispatch runs handler in a new goroutine detached from the request
// lifetime. The logger of ctx is kept. Errors and panics are logged and
// reported, never propagated.
func Dispatch(ctx context.Context, name string, handler func(ctx context.Context) error) {
	bgCtx := logging.With(context.Background(), logging.From(ctx).With("task", name))

	go func() {
		defer func() {
			if r := recover(); r != nil {
				err := goerr.New("panic in async task", goerr.V("task", name), goerr.V("panic", fmt.Sprint(r)))
				_ = errutil.Handle(bgCtx, err, "async task panicked")
			}
		}()

		if err := handler(bgCtx); err != nil {
			_ = errutil.Handle(bgCtx, err, "async task failed")
		}
	}()
}
