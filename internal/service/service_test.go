package service

import (
	"context"
	"io"
	"sort"
	"strconv"
	"sync"

	"github.com/Dan9191/loan-service/internal/config"
	"github.com/Dan9191/loan-service/internal/errs"
	"github.com/Dan9191/loan-service/internal/events"
	"github.com/Dan9191/loan-service/internal/models"
	"github.com/sirupsen/logrus"
)

// memStore is an in-memory implementation of the Store interface for testing.
// It mirrors the repository's settlement semantics, including the
// compare-and-swap on entry status.
type memStore struct {
	mu       sync.Mutex
	apps     map[string]*models.LoanApplication
	loans    map[string]*models.Loan
	entries  map[string]*models.ScheduleEntry
	payments map[string]*models.Payment
	users    map[int64]*models.User
	nextUser int64
}

func newMemStore() *memStore {
	return &memStore{
		apps:     make(map[string]*models.LoanApplication),
		loans:    make(map[string]*models.Loan),
		entries:  make(map[string]*models.ScheduleEntry),
		payments: make(map[string]*models.Payment),
		users:    make(map[int64]*models.User),
	}
}

func (m *memStore) CreateApplication(app *models.LoanApplication) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *app
	m.apps[app.ID] = &cp
	return nil
}

func (m *memStore) GetApplication(id string) (*models.LoanApplication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	app, ok := m.apps[id]
	if !ok {
		return nil, errs.NotFound("application not found")
	}
	cp := *app
	return &cp, nil
}

func (m *memStore) UpdateApplication(app *models.LoanApplication) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.apps[app.ID]; !ok {
		return errs.NotFound("application not found")
	}
	cp := *app
	m.apps[app.ID] = &cp
	return nil
}

func (m *memStore) ListApplicationsByUser(userID string) ([]models.LoanApplication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.LoanApplication
	for _, app := range m.apps {
		if app.UserID == userID {
			out = append(out, *app)
		}
	}
	return out, nil
}

func (m *memStore) ListApplications() ([]models.LoanApplication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.LoanApplication
	for _, app := range m.apps {
		out = append(out, *app)
	}
	return out, nil
}

func (m *memStore) HasActiveApplication(userID, loanType string, statuses []string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, app := range m.apps {
		if app.UserID != userID || app.LoanType != loanType {
			continue
		}
		for _, status := range statuses {
			if app.Status == status {
				return true, nil
			}
		}
	}
	return false, nil
}

func (m *memStore) CreateLoan(loan *models.Loan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *loan
	m.loans[loan.ID] = &cp
	return nil
}

func (m *memStore) GetLoan(id string) (*models.Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	loan, ok := m.loans[id]
	if !ok {
		return nil, errs.NotFound("loan not found")
	}
	cp := *loan
	return &cp, nil
}

func (m *memStore) UpdateLoan(loan *models.Loan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.loans[loan.ID]; !ok {
		return errs.NotFound("loan not found")
	}
	cp := *loan
	m.loans[loan.ID] = &cp
	return nil
}

func (m *memStore) ListLoans() ([]models.Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Loan
	for _, loan := range m.loans {
		out = append(out, *loan)
	}
	return out, nil
}

func (m *memStore) ListLoansByUser(userID string) ([]models.Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Loan
	for _, loan := range m.loans {
		if loan.UserID == userID {
			out = append(out, *loan)
		}
	}
	return out, nil
}

func (m *memStore) ReplaceSchedule(loanID string, entries []models.ScheduleEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, e := range m.entries {
		if e.LoanID == loanID {
			delete(m.entries, id)
		}
	}
	for i := range entries {
		cp := entries[i]
		m.entries[cp.ID] = &cp
	}
	return nil
}

func (m *memStore) GetSchedule(loanID string) ([]models.ScheduleEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ScheduleEntry
	for _, e := range m.entries {
		if e.LoanID == loanID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

func (m *memStore) GetScheduleEntry(id string) (*models.ScheduleEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return nil, errs.NotFound("schedule entry not found")
	}
	cp := *e
	return &cp, nil
}

func (m *memStore) SettleEntry(payment *models.Payment, principal float64) (*models.Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	loan, ok := m.loans[payment.LoanID]
	if !ok {
		return nil, errs.NotFound("loan not found")
	}
	entry, ok := m.entries[payment.ScheduleEntryID]
	if !ok {
		return nil, errs.NotFound("schedule entry not found")
	}
	if entry.Status != models.EntryScheduled {
		return nil, errs.Conflict("EMI already paid")
	}
	entry.Status = models.EntryPaid
	paid := payment.CreatedAt
	entry.PaidDate = &paid

	cp := *payment
	m.payments[payment.ID] = &cp

	loan.OutstandingBalance -= principal
	loan.UpdatedAt = payment.CreatedAt
	if loan.OutstandingBalance <= models.ClosureEpsilon {
		loan.Status = models.LoanClosed
	}
	out := *loan
	return &out, nil
}

func (m *memStore) GetPayment(id string) (*models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok {
		return nil, errs.NotFound("payment not found")
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) GetPaymentsByLoan(loanID string) ([]models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Payment
	for _, p := range m.payments {
		if p.LoanID == loanID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memStore) GetPaymentsByEntry(entryID string) ([]models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Payment
	for _, p := range m.payments {
		if p.ScheduleEntryID == entryID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memStore) CountCompletedPayments(loanID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, p := range m.payments {
		if p.LoanID == loanID && p.Status == models.PaymentCompleted {
			count++
		}
	}
	return count, nil
}

func (m *memStore) CreateUser(user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextUser++
	user.ID = m.nextUser
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memStore) FindUserByEmail(email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, errs.NotFound("user not found")
}

func (m *memStore) FindUserByID(userID string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return nil, errs.InvalidArgument("invalid user id")
	}
	u, ok := m.users[id]
	if !ok {
		return nil, errs.NotFound("user not found")
	}
	cp := *u
	return &cp, nil
}

// fakeProfiles is a canned ProfileLookup.
type fakeProfiles struct {
	profile *models.Profile
	err     error
}

func (f *fakeProfiles) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	return f.profile, f.err
}

// recordPublisher captures published events.
type recordPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	topic string
	evt   events.Event
}

func (p *recordPublisher) Publish(topic string, evt events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{topic: topic, evt: evt})
}

func (p *recordPublisher) count(topic string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.topic == topic {
			n++
		}
	}
	return n
}

// recordNotifier counts sent notifications.
type recordNotifier struct {
	mu         sync.Mutex
	approvals  int
	rejections int
	schedules  int
	closures   int
}

func (n *recordNotifier) SendApprovalNotification(to, username, applicationID, loanType string, amount float64, termMonths int, ratePercent float64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.approvals++
	return nil
}

func (n *recordNotifier) SendRejectionNotification(to, username, applicationID, reason string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.rejections++
	return nil
}

func (n *recordNotifier) SendEMIScheduleNotification(to, username, loanID string, totalMonths int, emiAmount float64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.schedules++
	return nil
}

func (n *recordNotifier) SendLoanClosedNotification(to, username, loanID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closures++
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:           "test-secret",
		MinAmount:           5000,
		MaxAmount:           2000000,
		AllowedTenures:      map[int]bool{12: true, 24: true, 36: true},
		DefaultRates:        map[string]float64{"PERSONAL": 12, "HOME": 8.5, "AUTO": 10, "EDUCATIONAL": 7.5, "HOME_LOAN": 8.5},
		MinCreditScore:      600,
		IncomeMultiplier:    5,
		LiabilityMultiplier: 0.5,
	}
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type testEnv struct {
	svc      *Service
	store    *memStore
	profiles *fakeProfiles
	pub      *recordPublisher
	notifier *recordNotifier
}

func newTestEnv() *testEnv {
	store := newMemStore()
	profiles := &fakeProfiles{}
	pub := &recordPublisher{}
	notifier := &recordNotifier{}
	cfg := testConfig()
	svc := NewService(store, NewRateTable(cfg.DefaultRates), profiles, pub, notifier, testLogger(), cfg)
	return &testEnv{svc: svc, store: store, profiles: profiles, pub: pub, notifier: notifier}
}

func floatPtr(v float64) *float64 {
	return &v
}

func goodProfile() *models.Profile {
	return &models.Profile{
		CreditScore:      floatPtr(750),
		AnnualIncome:     floatPtr(1000000),
		TotalLiabilities: floatPtr(10000),
	}
}
