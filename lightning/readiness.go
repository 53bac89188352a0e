package lightning

import (
	"context"
	"time"

	"github.com/bolt-observer/eclair-adapter/entities"
)

// WaitUntilOnline calls getinfo every interval until it works or timeout is reached,
// in which case the last error is returned. Non-positive values select DefaultOnlineInterval and DefaultOnlineTimeout.
func (e *EclairAPI) WaitUntilOnline(ctx context.Context, node *entities.Node, interval, timeout time.Duration) error {
	if err := e.checkNode("WaitUntilOnline", node); err != nil {
		return err
	}

	settings := pollSettings{interval: interval, timeout: timeout}
	return poll(ctx, "getinfo of "+node.Name, settings, onlinePoll, func() error {
		var info EclairInfo
		return e.Gateway.Call(ctx, node, GETINFO, map[string]string{}, &info)
	})
}
