package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Dan9191/loan-service/internal/config"
	"github.com/Dan9191/loan-service/internal/models"
	"github.com/sirupsen/logrus"
)

// Client looks up borrower profiles from the profile service.
// Callers must treat any error as "no profile available".
type Client struct {
	baseURL string
	client  *http.Client
	log     *logrus.Logger
}

// NewClient initializes a new profile service client
func NewClient(cfg *config.Config, log *logrus.Logger) *Client {
	return &Client{
		baseURL: cfg.ProfileServiceURL,
		client: &http.Client{
			Timeout: time.Duration(cfg.ProfileTimeoutSec) * time.Second,
		},
		log: log,
	}
}

// GetProfile fetches the borrower profile for userID.
// Returns (nil, nil) when the service definitively has no profile,
// and a non-nil error on transport failures or timeouts.
func (c *Client) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	endpoint := fmt.Sprintf("%s/api/profiles/%s", c.baseURL, url.PathEscape(userID))
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warnf("Profile service unavailable for user %s: %v", userID, err)
		return nil, fmt.Errorf("profile request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var p models.Profile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	p.UserID = userID
	return &p, nil
}
