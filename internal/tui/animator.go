package tui

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"time"
)

const (
	DefaultSpinDuration = 5 * time.Second
	defaultFrame        = 80 * time.Millisecond
	windowRadius        = 3
)

// wheelOrder is the pocket sequence of a single-zero wheel.
var wheelOrder = []int{
	0, 32, 15, 19, 4, 21, 2, 25, 17, 34, 6, 27, 13, 36, 11, 30, 8, 23, 10,
	5, 24, 16, 33, 1, 20, 14, 31, 9, 22, 18, 29, 7, 28, 12, 35, 3, 26,
}

// Animator draws a spinning wheel strip on one terminal line.
// The contract decides the number; the strip only marks time.
type Animator struct {
	out      io.Writer
	duration time.Duration
	frame    time.Duration
}

// NewAnimator creates an animator that spins for duration.
func NewAnimator(out io.Writer, duration time.Duration) *Animator {
	if duration <= 0 {
		duration = DefaultSpinDuration
	}
	return &Animator{out: out, duration: duration, frame: defaultFrame}
}

// Spin redraws the strip until the duration elapses or ctx is done.
func (a *Animator) Spin(ctx context.Context) error {
	ticker := time.NewTicker(a.frame)
	defer ticker.Stop()

	start := time.Now()
	pos := rand.Intn(len(wheelOrder))
	skipped := 0

	fmt.Fprintln(a.out)
	defer fmt.Fprint(a.out, "\r\033[K")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			elapsed := now.Sub(start)
			if elapsed >= a.duration {
				return nil
			}

			// the ball slows down: skip more frames as the spin goes on
			if skipped < int(4*elapsed/a.duration) {
				skipped++
				continue
			}
			skipped = 0

			pos = (pos + 1) % len(wheelOrder)
			remain := a.duration - elapsed
			fmt.Fprintf(a.out, "\r%s  %.0fs", renderStrip(pos), remain.Seconds())
		}
	}
}

func renderStrip(pos int) string {
	var b strings.Builder
	for i := -windowRadius; i <= windowRadius; i++ {
		n := wheelOrder[(pos+i+len(wheelOrder))%len(wheelOrder)]
		cell := pocket(n)
		if i == 0 {
			cell = ballStyle.Render("[") + cell + ballStyle.Render("]")
		} else {
			cell = " " + cell + " "
		}
		b.WriteString(cell)
	}
	return b.String()
}
