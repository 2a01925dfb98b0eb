package upstream

import (
	"context"
	"errors"
	"strings"

	"github.com/rk-prajapati-37/scamcheck-detector/internal/apperr"
	"github.com/rk-prajapati-37/scamcheck-detector/internal/models"
	"github.com/rk-prajapati-37/scamcheck-detector/internal/processing"
)

// RiskClient calls the URL risk prediction endpoint.
type RiskClient struct {
	base
}

// NewRiskClient returns a client for the URL prediction endpoint.
func NewRiskClient(endpoint string, opts ...Option) *RiskClient {
	return &RiskClient{base: newBase("predict", endpoint, opts)}
}

type predictResponse struct {
	Prediction models.RiskReport `json:"prediction"`
	Error      bool              `json:"error"`
	Message    string            `json:"message"`
	Code       string            `json:"code"`
}

// CheckURL returns the prediction for url verbatim. There is no retry.
func (c *RiskClient) CheckURL(ctx context.Context, url string) (models.RiskReport, error) {
	url = processing.NormalizeURL(url)
	if url == "" {
		return nil, apperr.Remote(c.name, "empty url")
	}

	var resp predictResponse
	if err := c.postJSON(ctx, map[string]string{"url": url}, &resp); err != nil {
		return nil, err
	}

	switch {
	case strings.EqualFold(resp.Code, "TIMEOUT"):
		return nil, apperr.Timeout(c.name, firstNonEmpty(resp.Message, "prediction timed out"))
	case resp.Error:
		return nil, apperr.Remote(c.name, firstNonEmpty(resp.Message, "prediction failed"))
	case len(resp.Prediction) == 0:
		return nil, apperr.Decode(c.name, errors.New("no prediction returned"))
	}
	return resp.Prediction, nil
}
