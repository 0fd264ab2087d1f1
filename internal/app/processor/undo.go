package processor

import (
	"context"
	"fmt"

	"github.com/jsamuelsen11/layerflow/internal/domain"
	"github.com/jsamuelsen11/layerflow/internal/ports"
)

// removal is the ledger entry registered after a successful store.
type removal struct {
	storage ports.StorageHandler
	receipt domain.Receipt
}

func (u removal) Undo(ctx context.Context) error {
	return u.storage.Remove(ctx, u.receipt)
}

func (u removal) Description() string {
	if u.receipt.IsZero() {
		return fmt.Sprintf("remove %s record (nothing stored)", u.storage.Name())
	}
	return fmt.Sprintf("remove %s record %s", u.receipt.Backend, u.receipt.Key)
}
