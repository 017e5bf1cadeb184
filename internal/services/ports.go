package services

import (
	"context"

	"syndicpulse/internal/amqp"
)

// EventPublisher announces ledger changes. *amqp.Client implements it.
type EventPublisher interface {
	PublishLedgerChanged(ctx context.Context, msg *amqp.LedgerChangedMessage) error
}

// ReportInvalidator drops cached reports of a building.
type ReportInvalidator interface {
	Invalidate(buildingID string)
}
