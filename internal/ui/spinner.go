package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spin animates msg on w while fn runs, clears the line and returns fn's
// error. For one-shot commands; the dashboard renders its own busy state.
func Spin(w io.Writer, msg string, fn func() error) error {
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		tick := time.NewTicker(80 * time.Millisecond)
		defer tick.Stop()
		for i := 0; ; i++ {
			fmt.Fprintf(w, "\r%s  %s", StyleNetwork.Render(spinnerFrames[i%len(spinnerFrames)]), msg)
			select {
			case <-done:
				fmt.Fprintf(w, "\r%s\r", strings.Repeat(" ", lipgloss.Width(msg)+3))
				return
			case <-tick.C:
			}
		}
	}()

	err := fn()
	close(done)
	wg.Wait()
	return err
}
