package service

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Dan9191/loan-service/internal/errs"
	"github.com/Dan9191/loan-service/internal/events"
	"github.com/Dan9191/loan-service/internal/models"
	"github.com/google/uuid"
)

var activeApplicationStatuses = []string{
	models.ApplicationSubmitted,
	models.ApplicationUnderReview,
	models.ApplicationApproved,
}

// Apply validates and stores a new loan application. The rate is the custom
// rate when supplied, otherwise the rate table's current rate for the type.
func (s *Service) Apply(ctx context.Context, userID, loanType string, amount float64, termMonths int, customRate *float64) (*models.LoanApplication, error) {
	loanType = strings.ToUpper(loanType)
	if !models.ValidLoanType(loanType) {
		return nil, errs.InvalidArgument("unknown loan type: %s", loanType)
	}
	if amount < s.cfg.MinAmount || amount > s.cfg.MaxAmount {
		return nil, errs.InvalidArgument("amount must be between %.0f and %.0f", s.cfg.MinAmount, s.cfg.MaxAmount)
	}
	if !s.cfg.AllowedTenures[termMonths] {
		return nil, errs.InvalidArgument("term of %d months is not offered, allowed tenures: %s", termMonths, tenureList(s.cfg.AllowedTenures))
	}

	// A borrower without a profile cannot apply; if the profile service is
	// down we let the application through and rely on the approval checks.
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		s.log.Warnf("Profile service unreachable during apply for user %s, proceeding without verification: %v", userID, err)
	} else if profile == nil {
		return nil, errs.InvalidArgument("profile not found, please create your profile before applying for a loan")
	}

	hasActive, err := s.store.HasActiveApplication(userID, loanType, activeApplicationStatuses)
	if err != nil {
		return nil, err
	}
	if hasActive {
		return nil, errs.Conflict("an active application for this loan type already exists")
	}

	rate := s.rates.GetRate(loanType)
	if customRate != nil {
		rate = *customRate
	}

	now := time.Now()
	app := &models.LoanApplication{
		ID:          uuid.NewString(),
		UserID:      userID,
		LoanType:    loanType,
		Amount:      amount,
		TermMonths:  termMonths,
		RatePercent: rate,
		Status:      models.ApplicationSubmitted,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateApplication(app); err != nil {
		return nil, err
	}

	s.log.Infof("Application %s submitted by user %s: %s %.2f over %d months", app.ID, userID, loanType, amount, termMonths)
	s.publish(events.TopicApplicationCreated, events.Event{
		ApplicationID: app.ID,
		UserID:        userID,
		Amount:        amount,
	})
	return app, nil
}

// GetApplication retrieves an application by id
func (s *Service) GetApplication(id string) (*models.LoanApplication, error) {
	return s.store.GetApplication(id)
}

// ListApplicationsByUser retrieves all applications of a user
func (s *Service) ListApplicationsByUser(userID string) ([]models.LoanApplication, error) {
	return s.store.ListApplicationsByUser(userID)
}

// ListApplications retrieves all applications
func (s *Service) ListApplications() ([]models.LoanApplication, error) {
	return s.store.ListApplications()
}

// MarkUnderReview moves a SUBMITTED application to UNDER_REVIEW
func (s *Service) MarkUnderReview(ctx context.Context, id string) (*models.LoanApplication, error) {
	app, err := s.store.GetApplication(id)
	if err != nil {
		return nil, err
	}
	if app.Status != models.ApplicationSubmitted {
		return nil, errs.InvalidArgument("application must be in SUBMITTED status to move to UNDER_REVIEW")
	}
	app.Status = models.ApplicationUnderReview
	app.UpdatedAt = time.Now()
	if err := s.store.UpdateApplication(app); err != nil {
		return nil, err
	}

	s.publish(events.TopicApplicationUnderReview, events.Event{
		ApplicationID: app.ID,
		UserID:        app.UserID,
		Amount:        app.Amount,
	})
	return app, nil
}

// Approve runs the approval criteria and, when they pass, transitions the
// application to APPROVED, creates the loan and notifies the customer. When
// the criteria fail the application keeps its current status and the
// evaluator's reason is returned to the caller; an explicit Reject call is
// required to finalize a refusal.
func (s *Service) Approve(ctx context.Context, id string) (*models.LoanApplication, error) {
	app, err := s.store.GetApplication(id)
	if err != nil {
		return nil, err
	}
	if app.Status != models.ApplicationSubmitted && app.Status != models.ApplicationUnderReview {
		return nil, errs.InvalidArgument("application must be in SUBMITTED or UNDER_REVIEW status to approve")
	}

	decision := s.EvaluateApproval(ctx, app.UserID, app.Amount)
	if !decision.Approved {
		return nil, errs.InvalidArgument("loan cannot be approved: %s", decision.Reason)
	}

	app.Status = models.ApplicationApproved
	app.Remarks = decision.Reason
	app.UpdatedAt = time.Now()
	if err := s.store.UpdateApplication(app); err != nil {
		return nil, err
	}

	s.notifyUser(app.UserID, func(to, username string) error {
		return s.notifier.SendApprovalNotification(to, username, app.ID, app.LoanType, app.Amount, app.TermMonths, app.RatePercent)
	})

	// Loan creation is best effort: the approval stands even if it fails,
	// an operator can retry the creation later.
	if _, err := s.CreateLoanFromApplication(ctx, app); err != nil {
		s.log.Errorf("Application %s approved but loan creation failed: %v", app.ID, err)
	}

	s.publish(events.TopicApplicationApproved, events.Event{
		ApplicationID: app.ID,
		UserID:        app.UserID,
		Amount:        app.Amount,
	})
	return app, nil
}

// Reject transitions the application to REJECTED with the given remarks
func (s *Service) Reject(ctx context.Context, id, remarks string) (*models.LoanApplication, error) {
	if strings.TrimSpace(remarks) == "" {
		return nil, errs.InvalidArgument("rejection remarks are required")
	}
	app, err := s.store.GetApplication(id)
	if err != nil {
		return nil, err
	}
	if app.Status != models.ApplicationSubmitted && app.Status != models.ApplicationUnderReview {
		return nil, errs.InvalidArgument("application must be in SUBMITTED or UNDER_REVIEW status to reject")
	}

	app.Status = models.ApplicationRejected
	app.Remarks = remarks
	app.UpdatedAt = time.Now()
	if err := s.store.UpdateApplication(app); err != nil {
		return nil, err
	}

	s.notifyUser(app.UserID, func(to, username string) error {
		return s.notifier.SendRejectionNotification(to, username, app.ID, remarks)
	})

	s.publish(events.TopicApplicationRejected, events.Event{
		ApplicationID: app.ID,
		UserID:        app.UserID,
		Amount:        app.Amount,
		Remarks:       remarks,
	})
	return app, nil
}

func tenureList(tenures map[int]bool) string {
	out := make([]int, 0, len(tenures))
	for t := range tenures {
		out = append(out, t)
	}
	sort.Ints(out)
	parts := make([]string, len(out))
	for i, t := range out {
		parts[i] = strconv.Itoa(t)
	}
	return strings.Join(parts, ", ")
}
