package events

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Topics published by the loan engine
const (
	TopicApplicationCreated     = "application.created"
	TopicApplicationUnderReview = "application.under_review"
	TopicApplicationApproved    = "application.approved"
	TopicApplicationRejected    = "application.rejected"
	TopicEMIDue                 = "emi.due"
	TopicEMIOverdue             = "emi.overdue"
	TopicLoanClosed             = "loan.closed"
)

// Event is the payload attached to every published topic.
type Event struct {
	ApplicationID string    `json:"application_id,omitempty"`
	LoanID        string    `json:"loan_id,omitempty"`
	UserID        string    `json:"user_id"`
	Amount        float64   `json:"amount"`
	Month         int       `json:"month,omitempty"`
	Remarks       string    `json:"remarks,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// Publisher delivers events to interested consumers. Publishing is
// fire-and-forget; implementations must never fail the caller.
type Publisher interface {
	Publish(topic string, evt Event)
}

// LogPublisher emits events as structured log records. It stands in for a
// message broker while preserving the topic and payload contract.
type LogPublisher struct {
	log *logrus.Logger
}

// NewLogPublisher creates a publisher backed by the application logger
func NewLogPublisher(log *logrus.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

// Publish logs the event with its topic
func (p *LogPublisher) Publish(topic string, evt Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	p.log.WithFields(logrus.Fields{
		"topic":          topic,
		"application_id": evt.ApplicationID,
		"loan_id":        evt.LoanID,
		"user_id":        evt.UserID,
		"amount":         evt.Amount,
		"month":          evt.Month,
		"remarks":        evt.Remarks,
		"timestamp":      evt.Timestamp,
	}).Info("event published")
}
