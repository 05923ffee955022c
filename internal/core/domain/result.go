package domain

import "time"

// InstallationResult is a read-only snapshot of a finished installation.
type InstallationResult struct {
	Package  string
	Version  string
	Status   InstallationStatus
	Reason   string
	Duration time.Duration
	Output   *CommandOutput

	// Dependencies holds the results of the packages installed before this one, in resolved order.
	Dependencies []InstallationResult
}

// TotalDuration is the duration of this installation plus all of its dependencies.
func (r *InstallationResult) TotalDuration() time.Duration {
	return r.Duration + r.DependencyDuration()
}

// DependencyDuration is the summed duration of the dependency results.
func (r *InstallationResult) DependencyDuration() time.Duration {
	var total time.Duration
	for i := range r.Dependencies {
		total += r.Dependencies[i].TotalDuration()
	}
	return total
}

// Failed reports whether this result or any dependency result failed.
func (r *InstallationResult) Failed() bool {
	if r.Status == StatusFailed {
		return true
	}
	for i := range r.Dependencies {
		if r.Dependencies[i].Failed() {
			return true
		}
	}
	return false
}

// Count returns how many results in the tree, including r, have status s.
func (r *InstallationResult) Count(s InstallationStatus) int {
	n := 0
	if r.Status == s {
		n++
	}
	for i := range r.Dependencies {
		n += r.Dependencies[i].Count(s)
	}
	return n
}
