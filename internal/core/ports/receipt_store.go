package ports

import "go.trai.ch/selfie/internal/core/domain"

//go:generate go run go.uber.org/mock/mockgen -source=receipt_store.go -destination=mocks/mock_receipt_store.go -package=mocks

// ReceiptStore persists the receipts of successful installations.
type ReceiptStore interface {
	// Get returns the receipt for name, or nil if there is none.
	Get(name string) (*domain.Receipt, error)
	// Put stores receipts, replacing earlier ones for the same packages.
	Put(receipts ...domain.Receipt) error
}
