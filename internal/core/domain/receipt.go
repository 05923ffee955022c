package domain

import "time"

// Receipt records the last successful installation of a package.
type Receipt struct {
	Package     string        `json:"package"`
	Version     string        `json:"version"`
	Environment string        `json:"environment"`
	InstalledAt time.Time     `json:"installed_at"`
	Duration    time.Duration `json:"duration"`
	// AlreadyInstalled is set when the check command found the package in place.
	AlreadyInstalled bool `json:"already_installed,omitempty"`
}

// ReceiptsFor returns a receipt for every successful result in res, dependencies first.
func ReceiptsFor(res *InstallationResult, environment string, at time.Time) []Receipt {
	var out []Receipt
	for i := range res.Dependencies {
		out = append(out, ReceiptsFor(&res.Dependencies[i], environment, at)...)
	}
	if res.Status != StatusComplete && res.Status != StatusAlreadyInstalled {
		return out
	}
	return append(out, Receipt{
		Package:          res.Package,
		Version:          res.Version,
		Environment:      environment,
		InstalledAt:      at,
		Duration:         res.Duration,
		AlreadyInstalled: res.Status == StatusAlreadyInstalled,
	})
}
