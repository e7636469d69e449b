//go:build unix

package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/Iron-Ham/hostlog/internal/control"
)

// handleSignals suspends logging on SIGUSR1 and resumes it on SIGUSR2 until
// the returned function is called.
func handleSignals(ctl *control.Controller) func() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGUSR1, syscall.SIGUSR2)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case sig := <-sigs:
				switch sig {
				case syscall.SIGUSR1:
					ctl.SuspendLogging()
				case syscall.SIGUSR2:
					ctl.ResumeLogging()
				}
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(sigs)
		close(done)
	}
}
