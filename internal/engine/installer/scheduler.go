package installer

import (
	"context"
	"fmt"

	"go.trai.ch/selfie/internal/core/domain"
	"go.trai.ch/selfie/internal/engine/resolver"
	"golang.org/x/sync/errgroup"
)

type result struct {
	name string
	res  domain.InstallationResult
	err  error
}

// runState tracks one parallel run. It is only touched by the goroutine driving the loop.
type runState struct {
	ctx         context.Context
	m           *Manager
	packages    map[string]*domain.Package
	position    map[string]int
	dependents  map[string][]string
	inDegree    map[string]int
	ready       []string
	active      int
	parallelism int
	resultsCh   chan result
	group       *errgroup.Group

	results    map[string]domain.InstallationResult
	failures   failureSet
	skipReason string
}

// runParallel installs the graph with up to MaxParallel installations at once.
// A package starts only after every one of its dependencies reached a terminal state.
func (m *Manager) runParallel(ctx context.Context, res *resolver.Resolution) (map[string]domain.InstallationResult, error) {
	state := m.newRunState(ctx, res)

	for !state.isDone() {
		state.schedule()

		if state.isDone() {
			break
		}

		select {
		case r := <-state.resultsCh:
			state.handleResult(r)
		case <-ctx.Done():
			if state.skipReason == "" {
				state.skipReason = "cancelled"
			}
			if state.active > 0 {
				state.handleResult(<-state.resultsCh)
			}
		}
	}

	_ = state.group.Wait()
	state.skipRemaining(res.Order)

	return state.results, state.failures.err(ctx)
}

func (m *Manager) newRunState(ctx context.Context, res *resolver.Resolution) *runState {
	n := len(res.Order)
	state := &runState{
		ctx:         ctx,
		m:           m,
		packages:    make(map[string]*domain.Package, n),
		position:    make(map[string]int, n),
		dependents:  make(map[string][]string, n),
		inDegree:    make(map[string]int, n),
		parallelism: m.cfg.MaxParallel,
		resultsCh:   make(chan result, m.cfg.MaxParallel),
		group:       &errgroup.Group{},
		results:     make(map[string]domain.InstallationResult, n),
	}
	state.group.SetLimit(m.cfg.MaxParallel)

	for i := range res.Order {
		name := res.Order[i].Name
		state.packages[name] = &res.Order[i]
		state.position[name] = i
	}
	for i := range res.Order {
		name := res.Order[i].Name
		deps := res.Graph.Dependencies(name)
		state.inDegree[name] = len(deps)
		for _, dep := range deps {
			state.dependents[dep] = append(state.dependents[dep], name)
		}
	}

	// Seed in resolved order so that start order is reproducible for a given graph.
	for i := range res.Order {
		if name := res.Order[i].Name; state.inDegree[name] == 0 {
			state.ready = append(state.ready, name)
		}
	}
	return state
}

func (state *runState) isDone() bool {
	if state.skipReason != "" {
		return state.active == 0
	}
	return state.active == 0 && len(state.ready) == 0
}

func (state *runState) schedule() {
	for len(state.ready) > 0 && state.active < state.parallelism && state.skipReason == "" {
		if state.ctx.Err() != nil {
			state.skipReason = "cancelled"
			return
		}

		name := state.ready[0]
		state.ready = state.ready[1:]
		state.active++

		pkg := state.packages[name]
		state.group.Go(func() error {
			res, err := state.m.InstallPackage(state.ctx, pkg)
			state.resultsCh <- result{name: name, res: res, err: err}
			return nil
		})
	}
}

func (state *runState) handleResult(r result) {
	state.active--
	state.results[r.name] = r.res

	if r.err != nil {
		state.failures.add(r.name, r.err)
		if state.m.cfg.StopOnError {
			if state.skipReason == "" {
				state.skipReason = "aborted after " + r.name + " failed"
			}
		} else {
			state.m.logger.Warn(fmt.Sprintf("%s failed, continuing: %v", r.name, r.err))
		}
	}

	// Dependents are released whether or not this package succeeded; their own check decides.
	for _, dep := range state.dependents[r.name] {
		state.inDegree[dep]--
		if state.inDegree[dep] == 0 {
			state.insertReady(dep)
		}
	}
}

// insertReady keeps the ready queue sorted by resolved position.
func (state *runState) insertReady(name string) {
	pos := state.position[name]
	i := len(state.ready)
	for i > 0 && state.position[state.ready[i-1]] > pos {
		i--
	}
	state.ready = append(state.ready, "")
	copy(state.ready[i+1:], state.ready[i:])
	state.ready[i] = name
}

func (state *runState) skipRemaining(order []domain.Package) {
	for i := range order {
		if _, ok := state.results[order[i].Name]; !ok {
			state.results[order[i].Name] = state.m.skipped(&order[i], state.skipReason)
		}
	}
}
