// SPDX-License-Identifier: MIT

package health

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DataDirChecker verifies the credential directory exists and is writable.
type DataDirChecker struct {
	Dir string
}

func (c DataDirChecker) Name() string { return "data_dir" }

func (c DataDirChecker) Check(_ context.Context) CheckResult {
	probe := filepath.Join(c.Dir, ".health-probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o600); err != nil {
		return CheckResult{Status: StatusUnhealthy, Error: err.Error()}
	}
	_ = os.Remove(probe)
	return CheckResult{Status: StatusHealthy}
}

// SessionCounter exposes how many sessions the registry currently holds.
type SessionCounter interface {
	Count() int
}

// RegistryChecker reports the registry as healthy with its session count.
type RegistryChecker struct {
	Registry SessionCounter
}

func (c RegistryChecker) Name() string { return "registry" }

func (c RegistryChecker) Check(_ context.Context) CheckResult {
	if c.Registry == nil {
		return CheckResult{Status: StatusUnhealthy, Error: "registry not initialized"}
	}
	return CheckResult{
		Status:  StatusHealthy,
		Message: fmt.Sprintf("%d active sessions", c.Registry.Count()),
	}
}
