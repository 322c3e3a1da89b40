package scheduler

import (
	"time"

	"github.com/Dan9191/loan-service/internal/events"
	"github.com/Dan9191/loan-service/internal/models"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const reminderWindow = 7 * 24 * time.Hour

// Store is the slice of persistence the scheduler needs.
type Store interface {
	FindScheduledDueBetween(from, to time.Time) ([]models.ScheduleEntry, error)
	FindScheduledOverdue(asOf time.Time) ([]models.ScheduleEntry, error)
	GetLoan(id string) (*models.Loan, error)
	FindUserByID(userID string) (*models.User, error)
}

// Reminder sends payment reminder emails.
type Reminder interface {
	SendPaymentReminder(to, username string, dueDate time.Time, amount float64, isOverdue bool) error
}

// Scheduler runs the daily EMI reminder sweep. It only observes the
// schedule; entry statuses are never mutated here.
type Scheduler struct {
	store    Store
	events   events.Publisher
	reminder Reminder
	log      *logrus.Logger
	cron     *cron.Cron
}

func NewScheduler(store Store, pub events.Publisher, reminder Reminder, log *logrus.Logger) *Scheduler {
	return &Scheduler{
		store:    store,
		events:   pub,
		reminder: reminder,
		log:      log,
		cron:     cron.New(),
	}
}

// Start registers the daily sweep and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 8 * * *", s.RunSweep); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info("EMI reminder scheduler started")
	return nil
}

// Stop halts the cron loop and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// RunSweep publishes due and overdue events and emails reminders for
// every unpaid EMI inside the reminder window.
func (s *Scheduler) RunSweep() {
	now := time.Now()

	due, err := s.store.FindScheduledDueBetween(now, now.Add(reminderWindow))
	if err != nil {
		s.log.Errorf("Failed to load upcoming EMIs: %v", err)
	} else {
		for i := range due {
			s.remind(&due[i], events.TopicEMIDue, false)
		}
	}

	overdue, err := s.store.FindScheduledOverdue(now)
	if err != nil {
		s.log.Errorf("Failed to load overdue EMIs: %v", err)
		return
	}
	for i := range overdue {
		s.remind(&overdue[i], events.TopicEMIOverdue, true)
	}
}

func (s *Scheduler) remind(entry *models.ScheduleEntry, topic string, overdue bool) {
	loan, err := s.store.GetLoan(entry.LoanID)
	if err != nil {
		s.log.Warnf("Skipping reminder for EMI %s: %v", entry.ID, err)
		return
	}

	s.events.Publish(topic, events.Event{
		LoanID:    loan.ID,
		UserID:    loan.UserID,
		Amount:    entry.EMIAmount,
		Month:     entry.Month,
		Timestamp: time.Now(),
	})

	user, err := s.store.FindUserByID(loan.UserID)
	if err != nil {
		s.log.Warnf("Skipping reminder email for EMI %s: %v", entry.ID, err)
		return
	}
	if err := s.reminder.SendPaymentReminder(user.Email, user.Username, entry.DueDate, entry.EMIAmount, overdue); err != nil {
		s.log.Errorf("Failed to send payment reminder to %s: %v", user.Email, err)
	}
}
