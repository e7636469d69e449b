//go:build !unix

package cmd

import "github.com/Iron-Ham/hostlog/internal/control"

// handleSignals does nothing on platforms without SIGUSR1 and SIGUSR2.
func handleSignals(*control.Controller) func() {
	return func() {}
}
