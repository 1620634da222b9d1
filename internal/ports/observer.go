package ports

import "github.com/bnema/xiq-poe-check/internal/domain"

type ProgressObserver interface {
	Submitted(deviceCount int, location string)
	PollAttempt(attempt, max int)
	PageCollected(page, totalPages int)
}

type NoopObserver struct{}

func (NoopObserver) Submitted(int, string)  {}
func (NoopObserver) PollAttempt(int, int)   {}
func (NoopObserver) PageCollected(int, int) {}

type ReportWriter interface {
	Write(path string, column string, rows []domain.ReportRow) error
}
