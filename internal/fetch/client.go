// Package fetch holds the two boundary clients the review pipeline
// depends on: the enterprise directory and the upstream commission batch
// computation. Both are plain JSON-over-HTTP collaborators; their
// responses are consumed as-is and re-validated by the normalizer.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/channelops/commission-review/internal/domain"
)

// BatchRequest asks upstream to recompute one channel's commission batch.
type BatchRequest struct {
	Environment    string  `json:"environment"`
	ChannelID      int64   `json:"channel_id"`
	EnterpriseIDs  []int64 `json:"enterprise_ids,omitempty"`
	TimeoutSeconds int     `json:"timeout"`
}

// BatchResponse is the upstream computation result. Only the raw detail
// rows and the verification flag matter here; upstream's own summary is
// ignored because all KPIs are re-derived locally from the same rows.
type BatchResponse struct {
	CommissionDetails []domain.RawRecord `json:"commission_details"`
	APIVerification   bool               `json:"api_verification"`
	TotalItems        int                `json:"total_items"`
}

type directoryEnvelope struct {
	Code int              `json:"code"`
	Msg  string           `json:"msg"`
	Data []directoryEntry `json:"data"`
}

type directoryEntry struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	EnterpriseName string `json:"enterprise_name"`
}

// Client talks to the upstream admin backend.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *logrus.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// EnterpriseDirectory fetches the enterprise list for an environment.
func (c *Client) EnterpriseDirectory(ctx context.Context, environment string) ([]domain.Enterprise, error) {
	u := fmt.Sprintf("%s/enterprises/list?environment=%s", c.baseURL, url.QueryEscape(environment))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build directory request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch enterprise directory: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("enterprise directory: unexpected status %d", resp.StatusCode)
	}

	var envelope directoryEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode enterprise directory: %w", err)
	}
	if envelope.Code != 0 {
		return nil, fmt.Errorf("enterprise directory: upstream code %d: %s", envelope.Code, envelope.Msg)
	}

	enterprises := make([]domain.Enterprise, 0, len(envelope.Data))
	for _, e := range envelope.Data {
		name := e.Name
		if name == "" {
			name = e.EnterpriseName
		}
		enterprises = append(enterprises, domain.Enterprise{ID: e.ID, Name: name})
	}

	c.logger.Infof("[fetch] enterprise directory: %d enterprises (env=%s)", len(enterprises), environment)
	return enterprises, nil
}

// ComputeBatch asks upstream to recompute the commission batch for a
// channel and returns the raw rows.
func (c *Client) ComputeBatch(ctx context.Context, br BatchRequest) (*BatchResponse, error) {
	body, err := json.Marshal(br)
	if err != nil {
		return nil, fmt.Errorf("marshal batch request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/commission/calculate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build batch request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch commission batch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("commission batch: unexpected status %d", resp.StatusCode)
	}

	var out BatchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode commission batch: %w", err)
	}

	c.logger.Infof("[fetch] commission batch: %d records (channel=%d, env=%s, verified=%v)",
		len(out.CommissionDetails), br.ChannelID, br.Environment, out.APIVerification)
	return &out, nil
}

// DefaultSelection returns the ids of every directory enterprise except
// the designated test enterprise.
func DefaultSelection(enterprises []domain.Enterprise, testEnterpriseID int64) []int64 {
	ids := make([]int64, 0, len(enterprises))
	for _, e := range enterprises {
		if e.ID == testEnterpriseID {
			continue
		}
		ids = append(ids, e.ID)
	}
	return ids
}
