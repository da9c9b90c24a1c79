package cobrautil

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// InterruptedError reports that the command was stopped by a signal.
type InterruptedError struct {
	Signal os.Signal
}

func (e *InterruptedError) Error() string {
	return fmt.Sprintf("audit interrupted by %s", e.Signal)
}

// ExitCode follows the shell convention of 128 plus the signal number.
func (e *InterruptedError) ExitCode() int {
	if s, ok := e.Signal.(syscall.Signal); ok {
		return 128 + int(s)
	}
	return 130
}

// ConfigureContext sets up signal handling and hooks into the command's
// context so that it will be cancelled when signalled. The first signal
// cancels the context and the command returns an InterruptedError; a
// second one exits immediately.
func ConfigureContext(fn func(*cobra.Command, []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancelCause(cmd.Context())
		defer cancel(nil)

		s := make(chan os.Signal, 2)
		signal.Notify(s, interruptSignals...)
		defer close(s)
		defer signal.Stop(s)

		go func() {
			sig, ok := <-s
			if !ok {
				return
			}
			ierr := &InterruptedError{Signal: sig}
			logrus.Warn("audit interrupted")
			cancel(ierr)
			if _, ok := <-s; ok {
				os.Exit(ierr.ExitCode())
			}
		}()

		cmd.SetContext(ctx)
		err := fn(cmd, args)
		var ierr *InterruptedError
		if errors.As(context.Cause(ctx), &ierr) {
			return ierr
		}
		return err
	}
}
