// Package spinning displays a spinning symbol while the AI is thinking.
package spinning

import (
	"context"
	"fmt"
	"io"
	"k8s.io/klog/v2"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

var (
	ThemeAscii = []rune(`|/-\`)
	ThemeMoon  = []rune("🌑🌒🌓🌔🌕🌖🌗🌘")
	ThemeClock = []rune("🕐🕑🕒🕓🕔🕕🕖🕗🕘🕙🕚🕛")

	// Theme used by new spinners.
	Theme = ThemeAscii

	// Period between frames.
	Period = 250 * time.Millisecond
)

// Spinning is a running spinner: stop it with Done.
type Spinning struct {
	wg     sync.WaitGroup
	cancel func()
}

// SafeInterrupt captures SIGINT (Ctrl+C) and SIGTERM and calls onInterrupt.
// If the program hasn't exited after gracePeriod, it resets the terminal and exits.
func SafeInterrupt(onInterrupt func(), gracePeriod time.Duration) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sigChan
		fmt.Println()
		klog.Errorf("Interrupted (signal %q), shutting down in at most %s", s, gracePeriod)
		if onInterrupt != nil {
			go onInterrupt()
		}
		time.Sleep(gracePeriod)
		Reset(os.Stdout)
		klog.Fatalf("Grace period of %s expired, exiting.", gracePeriod)
	}()
}

// Reset makes the cursor visible and restores the default terminal colors.
func Reset(out io.Writer) {
	_, _ = fmt.Fprint(out, "\033[?25h\033[39;49;0m\n")
}

// New starts a spinner writing to out, on a separate goroutine. It stops when Done is called
// or when ctx is cancelled.
func New(ctx context.Context, out io.Writer) *Spinning {
	s := &Spinning{}
	ctx, s.cancel = context.WithCancel(ctx)
	theme := Theme
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(Period)
		defer ticker.Stop()
		_, _ = fmt.Fprint(out, "\033[?25l")
		defer func() { _, _ = fmt.Fprint(out, "\033[?25h") }()

		// Emojis take two columns.
		erase := "\b"
		if len(string(theme[0])) > 1 {
			erase = "\b\b"
		}
		for idx := 0; ; idx = (idx + 1) % len(theme) {
			_, _ = fmt.Fprintf(out, "%c", theme[idx])
			select {
			case <-ctx.Done():
				_, _ = fmt.Fprint(out, erase+"  "+erase)
				return
			case <-ticker.C:
				_, _ = fmt.Fprint(out, erase)
			}
		}
	}()
	return s
}

// Done stops the spinner and waits for it to clear its symbol. It can be called more than once.
func (s *Spinning) Done() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.wg.Wait()
}
