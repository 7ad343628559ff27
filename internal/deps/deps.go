// Package deps reports on the external binaries stagehand leans on: the
// pipeline interpreter and the host artifact opener.
package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement defines an external dependency stagehand relies on.
type Requirement struct {
	Name     string
	Command  string
	Optional bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name      string
	Command   string
	Optional  bool
	Available bool
	Detail    string
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:     req.Name,
			Command:  cmd,
			Optional: req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}
