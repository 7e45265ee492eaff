package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"itad-service/internal/config"
	"itad-service/internal/model"
)

type erpJobRequest struct {
	BookingID     string `json:"booking_id"`
	TenantID      string `json:"tenant_id"`
	DriverID      string `json:"driver_id"`
	SiteAddress   string `json:"site_address"`
	ScheduledDate string `json:"scheduled_date,omitempty"`
	AssetCount    int    `json:"asset_count"`
}

type erpJobResponse struct {
	JobNumber string `json:"job_number"`
}

// ERPClient registers collection jobs with the upstream ERP and returns the
// ERP-issued job reference.
type ERPClient struct {
	baseURL       string
	internalToken string
	httpClient    *http.Client
}

func NewERPClient(cfg *config.Config) *ERPClient {
	return &ERPClient{
		baseURL:       cfg.ERP.BaseURL,
		internalToken: cfg.ERP.InternalToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Configured reports whether an ERP endpoint is set. Callers fall back to
// locally generated references when it is not.
func (c *ERPClient) Configured() bool {
	return c.baseURL != ""
}

// RegisterJob submits the job to the ERP, retrying on network errors.
func (c *ERPClient) RegisterJob(ctx context.Context, booking *model.Booking, driverID uuid.UUID) (string, error) {
	if c.baseURL == "" {
		return "", fmt.Errorf("ERP service URL is not configured")
	}

	payload := erpJobRequest{
		BookingID:   booking.ID.String(),
		TenantID:    booking.TenantID.String(),
		DriverID:    driverID.String(),
		SiteAddress: booking.SiteAddress,
		AssetCount:  len(booking.Assets),
	}
	if booking.ScheduledDate != nil {
		payload.ScheduledDate = booking.ScheduledDate.Format(time.RFC3339)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	endpoint := c.baseURL + "/internal/erp/jobs"
	newRequest := func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		if c.internalToken != "" {
			req.Header.Set("X-Internal-Token", c.internalToken)
		}
		return req, nil
	}

	req, err := newRequest()
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	var resp *http.Response
	var lastErr error
	maxRetries := 3
	for attempt := 0; attempt < maxRetries; attempt++ {
		resp, lastErr = c.httpClient.Do(req)
		if lastErr == nil {
			break
		}
		if attempt == maxRetries-1 {
			return "", fmt.Errorf("execute request after %d attempts: %w", maxRetries, lastErr)
		}
		time.Sleep(time.Duration(attempt+1) * 500 * time.Millisecond)
		req, err = newRequest()
		if err != nil {
			return "", fmt.Errorf("create request: %w", err)
		}
	}
	if resp == nil {
		return "", fmt.Errorf("execute request: %w", lastErr)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("ERP service returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed erpJobResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if parsed.JobNumber == "" {
		return "", fmt.Errorf("ERP response missing job number")
	}

	return parsed.JobNumber, nil
}
