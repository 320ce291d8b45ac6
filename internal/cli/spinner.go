package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// spinner draws a one-line progress indicator with the elapsed time while a
// long build or merge runs. It stops by itself when its context ends.
type spinner struct {
	w     io.Writer
	ctx   context.Context
	start time.Time

	mu    sync.Mutex
	msg   string
	width int

	once    sync.Once
	halt    chan struct{}
	stopped chan struct{}
}

func newSpinner(ctx context.Context, w io.Writer, msg string) *spinner {
	return &spinner{
		w:       w,
		ctx:     ctx,
		msg:     msg,
		halt:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Start begins drawing. It must be paired with one of the Stop methods.
func (s *spinner) Start() {
	s.start = time.Now()
	go s.loop()
}

func (s *spinner) loop() {
	defer close(s.stopped)
	tick := time.NewTicker(spinnerInterval)
	defer tick.Stop()
	for i := 0; ; i++ {
		select {
		case <-s.ctx.Done():
			return
		case <-s.halt:
			return
		case <-tick.C:
			s.draw(spinnerFrames[i%len(spinnerFrames)])
		}
	}
}

func (s *spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	elapsed := time.Since(s.start).Truncate(100 * time.Millisecond)
	line := fmt.Sprintf("%s %s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.msg), StyleDim.Render(elapsed.String()))
	fmt.Fprintf(s.w, "\r%s", line)
	s.width = max(s.width, len(line))
}

// Stop halts drawing and clears the line. Calling it again is a no-op.
func (s *spinner) Stop() {
	s.once.Do(func() {
		close(s.halt)
		<-s.stopped
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.width > 0 {
			fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
		}
	})
}

// StopWithSuccess stops the spinner and prints msg as a success line.
func (s *spinner) StopWithSuccess(msg string) {
	s.Stop()
	printSuccess(s.w, "%s", msg)
}

// StopWithError stops the spinner and prints msg as an error line.
func (s *spinner) StopWithError(msg string) {
	s.Stop()
	printError(s.w, "%s", msg)
}

// Cancelled reports whether the spinner's context ended.
func (s *spinner) Cancelled() bool {
	return s.ctx.Err() != nil
}
