// Package orchestrator holds the process managers that coordinate the
// transaction sagas: stateless translators turning published events into
// follow-up commands. They keep no state of their own and may replay any
// event without side effects beyond issuing idempotent commands.
package orchestrator

import (
	"context"

	"github.com/key-value/banktransfer/internal/domain"
)

// CommandSender issues a command to its aggregate. A nil error means the
// command was applied and any resulting events are being published.
type CommandSender interface {
	Send(ctx context.Context, cmd domain.Command) error
}
