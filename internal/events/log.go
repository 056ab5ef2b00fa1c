package events

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogPublisher writes events to the structured log. It stands in for the
// Kafka sink when no brokers are configured.
type LogPublisher struct {
	log *logrus.Logger
}

// NewLogPublisher creates a LogPublisher.
func NewLogPublisher(log *logrus.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) PublishRideStatus(ctx context.Context, ev RideStatusChanged) error {
	p.log.WithFields(logrus.Fields{
		"ride_id": ev.RideID,
		"from":    ev.FromStatus,
		"to":      ev.ToStatus,
		"at":      ev.At,
	}).Info("ride status changed")
	return nil
}

func (p *LogPublisher) PublishMoney(ctx context.Context, ev MoneyMoved) error {
	p.log.WithFields(logrus.Fields{
		"ride_id": ev.RideID,
		"type":    ev.Type,
		"amount":  ev.Amount,
		"status":  ev.Status,
	}).Info("money moved")
	return nil
}

// Close is a no-op; it exists so callers can treat the log and Kafka
// publishers uniformly.
func (p *LogPublisher) Close() error { return nil }

var _ Publisher = (*LogPublisher)(nil)
