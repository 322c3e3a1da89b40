package service

import (
	"context"
	"time"

	"github.com/Dan9191/loan-service/internal/config"
	"github.com/Dan9191/loan-service/internal/events"
	"github.com/Dan9191/loan-service/internal/models"
	"github.com/sirupsen/logrus"
)

// Store is the persistence surface the engine operates on. The engine owns
// the invariants; the store owns the rows.
type Store interface {
	// applications
	CreateApplication(app *models.LoanApplication) error
	GetApplication(id string) (*models.LoanApplication, error)
	UpdateApplication(app *models.LoanApplication) error
	ListApplicationsByUser(userID string) ([]models.LoanApplication, error)
	ListApplications() ([]models.LoanApplication, error)
	HasActiveApplication(userID, loanType string, statuses []string) (bool, error)

	// loans
	CreateLoan(loan *models.Loan) error
	GetLoan(id string) (*models.Loan, error)
	UpdateLoan(loan *models.Loan) error
	ListLoans() ([]models.Loan, error)
	ListLoansByUser(userID string) ([]models.Loan, error)

	// schedule
	ReplaceSchedule(loanID string, entries []models.ScheduleEntry) error
	GetSchedule(loanID string) ([]models.ScheduleEntry, error)
	GetScheduleEntry(id string) (*models.ScheduleEntry, error)

	// payments
	SettleEntry(payment *models.Payment, principal float64) (*models.Loan, error)
	GetPayment(id string) (*models.Payment, error)
	GetPaymentsByLoan(loanID string) ([]models.Payment, error)
	GetPaymentsByEntry(entryID string) ([]models.Payment, error)
	CountCompletedPayments(loanID string) (int64, error)

	// users
	CreateUser(user *models.User) error
	FindUserByEmail(email string) (*models.User, error)
	FindUserByID(userID string) (*models.User, error)
}

// ProfileLookup fetches borrower profiles from the profile service.
// (nil, nil) means the service answered but has no profile for the user.
type ProfileLookup interface {
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
}

// Notifier sends customer-facing notifications. Failures are logged by the
// engine and never fail the triggering operation.
type Notifier interface {
	SendApprovalNotification(to, username, applicationID, loanType string, amount float64, termMonths int, ratePercent float64) error
	SendRejectionNotification(to, username, applicationID, reason string) error
	SendEMIScheduleNotification(to, username, loanID string, totalMonths int, emiAmount float64) error
	SendLoanClosedNotification(to, username, loanID string) error
}

// Service handles business logic
type Service struct {
	store    Store
	rates    *RateTable
	profiles ProfileLookup
	events   events.Publisher
	notifier Notifier
	log      *logrus.Logger
	cfg      *config.Config
}

// NewService initializes a new service
func NewService(store Store, rates *RateTable, profiles ProfileLookup, pub events.Publisher, notifier Notifier, log *logrus.Logger, cfg *config.Config) *Service {
	return &Service{
		store:    store,
		rates:    rates,
		profiles: profiles,
		events:   pub,
		notifier: notifier,
		log:      log,
		cfg:      cfg,
	}
}

// Rates returns the rate table
func (s *Service) Rates() *RateTable {
	return s.rates
}

func (s *Service) publish(topic string, evt events.Event) {
	evt.Timestamp = time.Now()
	s.events.Publish(topic, evt)
}

// notifyUser looks up the user and runs the send func; a missing user or a
// failed send is logged and swallowed.
func (s *Service) notifyUser(userID string, send func(to, username string) error) {
	user, err := s.store.FindUserByID(userID)
	if err != nil {
		s.log.Warnf("Skipping notification, failed to resolve user %s: %v", userID, err)
		return
	}
	if err := send(user.Email, user.Username); err != nil {
		s.log.Errorf("Failed to notify user %s: %v", userID, err)
	}
}
