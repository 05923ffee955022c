// Package resolver builds the dependency graph of a package and orders it for installation.
package resolver

import (
	"context"
	"errors"

	"go.trai.ch/selfie/internal/core/domain"
	"go.trai.ch/selfie/internal/core/ports"
	"go.trai.ch/zerr"
)

// Resolution is a dependency graph together with one valid installation order of it.
type Resolution struct {
	Graph *domain.DependencyGraph
	Order []domain.Package
}

// Root returns the last package of the order, which is the package resolution started from.
func (r *Resolution) Root() domain.Package {
	return r.Order[len(r.Order)-1]
}

// Resolver walks package definitions from a repository.
type Resolver struct {
	repo ports.PackageRepository
}

// New creates a Resolver reading from repo.
func New(repo ports.PackageRepository) *Resolver {
	return &Resolver{repo: repo}
}

// Resolve returns root and all of its transitive dependencies, deepest dependency first and root last.
// Resolution is atomic: on error no packages are returned.
func (r *Resolver) Resolve(ctx context.Context, root, environment string) ([]domain.Package, error) {
	res, err := r.ResolveGraph(ctx, root, environment)
	if err != nil {
		return nil, err
	}
	return res.Order, nil
}

// frame is one package on the active ancestor path, with the index of its next dependency to visit.
type frame struct {
	name string
	deps []string
	next int
}

// ResolveGraph builds the dependency graph of root for environment and orders it.
func (r *Resolver) ResolveGraph(ctx context.Context, root, environment string) (*Resolution, error) {
	graph := domain.NewDependencyGraph()

	first, err := r.visit(ctx, graph, root, environment)
	if err != nil {
		return nil, err
	}
	stack := []frame{first}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		top := &stack[len(stack)-1]
		if top.next == len(top.deps) {
			stack = stack[:len(stack)-1]
			continue
		}
		dep := top.deps[top.next]
		top.next++
		from := top.name

		if onPath(stack, dep) {
			return nil, domain.NewCircularDependencyError(append(pathOf(stack), dep))
		}

		if graph.HasPackage(dep) {
			if err := graph.AddDependency(from, dep); err != nil {
				return nil, err
			}
			continue
		}

		next, err := r.visit(ctx, graph, dep, environment)
		if err != nil {
			return nil, err
		}
		if err := graph.AddDependency(from, dep); err != nil {
			return nil, err
		}
		stack = append(stack, next)
	}

	order, err := graph.InstallationOrder()
	if err != nil {
		if errors.Is(err, domain.ErrCircularDependency) {
			return nil, zerr.With(zerr.Wrap(err, "cannot order dependencies of "+root), "package", root)
		}
		return nil, err
	}

	return &Resolution{Graph: graph, Order: order}, nil
}

// visit loads name, checks that it supports environment and adds it to graph.
func (r *Resolver) visit(
	ctx context.Context,
	graph *domain.DependencyGraph,
	name, environment string,
) (frame, error) {
	pkg, err := r.repo.GetPackage(ctx, name)
	if err != nil {
		return frame{}, err
	}
	if pkg.Name != name {
		err := zerr.With(zerr.Wrap(domain.ErrInvalidPackage, "declared name does not match"), "package", name)
		return frame{}, zerr.With(err, "declared", pkg.Name)
	}

	cfg, err := pkg.ResolveEnvironment(environment)
	if err != nil {
		return frame{}, err
	}

	if err := graph.AddNode(&pkg); err != nil {
		return frame{}, err
	}

	return frame{name: pkg.Name, deps: cfg.UniqueDependencies()}, nil
}

func onPath(stack []frame, name string) bool {
	for i := range stack {
		if stack[i].name == name {
			return true
		}
	}
	return false
}

func pathOf(stack []frame) []string {
	path := make([]string, 0, len(stack)+1)
	for i := range stack {
		path = append(path, stack[i].name)
	}
	return path
}
