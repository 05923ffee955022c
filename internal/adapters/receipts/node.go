package receipts

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/selfie/internal/core/ports"
)

// NodeID is the unique identifier for the receipt store Graft node.
const NodeID graft.ID = "adapter.receipt_store"

func init() {
	graft.Register(graft.Node[ports.ReceiptStore]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.ReceiptStore, error) {
			path, err := DefaultPath()
			if err != nil {
				return nil, err
			}
			store, err := NewStore(path)
			if err != nil {
				return nil, err
			}
			return store, nil
		},
	})
}
