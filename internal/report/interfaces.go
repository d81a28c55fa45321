package report

import "flexstarter/internal/models"

// IPrinter is the interface for generating outcome reports
//
//go:generate mockery --name=IPrinter --output=./mocks
type IPrinter interface {
	PrintOutcomes(workflow string, outcomes []models.Outcome, format OutputFormatType) error
}
