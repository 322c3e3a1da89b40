package email

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/Dan9191/loan-service/internal/config"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendApprovalNotification notifies a customer that their application was approved
func (s *Sender) SendApprovalNotification(to, username, applicationID, loanType string, amount float64, termMonths int, ratePercent float64) error {
	subject := "Loan Application Approved"
	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"Your loan application has been approved.\n"+
			"Application ID: %s\n"+
			"Loan Type: %s\n"+
			"Amount: %.2f\n"+
			"Tenure: %d months\n"+
			"Interest Rate: %.2f%%\n"+
			"Your EMI schedule has been generated. Please log in to view details.\n",
		username, applicationID, loanType, amount, termMonths, ratePercent,
	)
	return s.send(to, subject, body)
}

// SendRejectionNotification notifies a customer that their application was rejected
func (s *Sender) SendRejectionNotification(to, username, applicationID, reason string) error {
	subject := "Loan Application Rejected"
	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"Your loan application %s has been rejected.\n"+
			"Reason: %s\n"+
			"Please contact our support team for more details or to reapply.\n",
		username, applicationID, reason,
	)
	return s.send(to, subject, body)
}

// SendEMIScheduleNotification informs a customer that their EMI schedule is ready
func (s *Sender) SendEMIScheduleNotification(to, username, loanID string, totalMonths int, emiAmount float64) error {
	subject := "EMI Schedule Generated"
	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"The EMI schedule for your loan %s has been generated.\n"+
			"Total Installments: %d\n"+
			"Monthly EMI Amount: %.2f\n"+
			"Your first payment is due next month. Please make timely payments to maintain good credit.\n",
		username, loanID, totalMonths, emiAmount,
	)
	return s.send(to, subject, body)
}

// SendPaymentReminder sends an upcoming or overdue EMI reminder
func (s *Sender) SendPaymentReminder(to, username string, dueDate time.Time, amount float64, isOverdue bool) error {
	var subject, detail string
	if isOverdue {
		subject = "Overdue EMI Payment Notification"
		detail = fmt.Sprintf(
			"Your EMI payment of %.2f was due on %s and is now overdue.\n"+
				"Please make the payment as soon as possible.\n",
			amount, dueDate.Format("2006-01-02"),
		)
	} else {
		subject = "Upcoming EMI Payment Reminder"
		detail = fmt.Sprintf(
			"This is a reminder that your EMI payment of %.2f is due on %s.\n"+
				"Please ensure sufficient funds are available in your account.\n",
			amount, dueDate.Format("2006-01-02"),
		)
	}
	body := fmt.Sprintf("Dear %s,\n\n%s", username, detail)
	return s.send(to, subject, body)
}

// SendLoanClosedNotification congratulates a customer on full repayment
func (s *Sender) SendLoanClosedNotification(to, username, loanID string) error {
	subject := "Loan Fully Repaid"
	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"Congratulations! Your loan %s has been fully repaid and is now closed.\n"+
			"Thank you for your timely payments.\n",
		username, loanID,
	)
	return s.send(to, subject, body)
}

func (s *Sender) send(to, subject, body string) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body + "\nBest regards,\nLoan Service")

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, subject)
	return nil
}
