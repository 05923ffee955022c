package ports

import (
	"context"

	"go.trai.ch/selfie/internal/core/domain"
)

//go:generate go run go.uber.org/mock/mockgen -source=repository.go -destination=mocks/mock_repository.go -package=mocks

// PackageRepository looks up package definitions by name.
type PackageRepository interface {
	// GetPackage returns the unique package called name.
	// It fails with domain.ErrPackageNotFound or domain.ErrMultiplePackagesFound.
	GetPackage(ctx context.Context, name string) (domain.Package, error)

	// ListPackages returns every loadable package.
	ListPackages(ctx context.Context) ([]domain.Package, error)
}

// RepositoryFactory opens the package repository rooted at dir.
type RepositoryFactory func(dir string) PackageRepository
