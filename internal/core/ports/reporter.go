package ports

import "go.trai.ch/mend/internal/core/domain"

// Reporter renders the final run report. Every run writes exactly one
// report, on whichever terminal transition it takes.
//
//go:generate mockgen -source=reporter.go -destination=mocks/mock_reporter.go -package=mocks
type Reporter interface {
	Write(path string, report *domain.RunReport) error
}
