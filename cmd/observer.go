package cmd

import (
	"fmt"
	"io"
)

type consoleObserver struct {
	out io.Writer
}

func (o consoleObserver) Submitted(deviceCount int, _ string) {
	_, _ = fmt.Fprintf(o.out, "Sent CLI command to %d devices\n", deviceCount)
}

func (o consoleObserver) PollAttempt(attempt, maxPolls int) {
	_, _ = fmt.Fprintf(o.out, "Attempting to collect CLI responses - attempt %d of %d\n", attempt, maxPolls)
}

func (o consoleObserver) PageCollected(page, totalPages int) {
	_, _ = fmt.Fprintf(o.out, "completed page %d of %d collecting Devices\n", page, totalPages)
}
