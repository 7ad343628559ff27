package preflight

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// CheckOutputRoot verifies the pipeline output root is enumerable when it
// exists. Absence is informational: the pipeline creates it on first run.
func CheckOutputRoot(path string) Result {
	const name = "Output root"
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{
				Name:          name,
				Passed:        true,
				Informational: true,
				Detail:        fmt.Sprintf("%s (not created yet; first run will create it)", path),
			}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot list: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (readable)", path)}
}

// CheckLogDir verifies stagehand's own log directory exists and is writable,
// creating it when missing.
func CheckLogDir(path string) Result {
	const name = "Log directory"
	if err := os.MkdirAll(path, 0o755); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}
