package resolver

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/rk-prajapati-37/scamcheck-detector/internal/models"
	"github.com/rk-prajapati-37/scamcheck-detector/internal/processing"
)

const (
	KindURL    = "url"
	KindSearch = "search"
)

// ErrRiskUnavailable is returned for URL input when no risk checker is wired.
var ErrRiskUnavailable = errors.New("url risk checking is not configured")

// Analysis is the reply to one submitted input. Exactly one of the URL
// fields or Result is populated, depending on Kind.
type Analysis struct {
	Kind     string               `json:"kind"`
	URL      string               `json:"url,omitempty"`
	Risk     models.RiskReport    `json:"risk,omitempty"`
	RiskBand string               `json:"riskBand,omitempty"`
	Error    string               `json:"error,omitempty"`
	Result   *models.SearchResult `json:"result,omitempty"`
}

// Analyze routes input that is entirely a URL to the risk check and
// everything else to Resolve. An unanswered search may be followed by one
// keyword search whose result is merged in; that follow-up is never recorded.
func (r *Resolver) Analyze(ctx context.Context, input string) Analysis {
	input = strings.TrimSpace(input)

	if c := processing.Classify(input); c.IsURL {
		return r.checkURL(ctx, c.Normalized)
	}

	res := r.Resolve(ctx, input)
	if !res.Found && r.cfg.FollowUp && len(res.SuggestedKeywords) > 0 {
		follow := r.Resolve(ctx, strings.Join(res.SuggestedKeywords, " "), SkipPersist())
		if follow.Found || len(follow.Articles) > 0 {
			r.log.Info("follow-up search found results", slog.String("query", input))
			res = res.Merge(follow)
		}
	}
	return Analysis{Kind: KindSearch, Result: &res}
}

func (r *Resolver) checkURL(ctx context.Context, url string) Analysis {
	out := Analysis{Kind: KindURL, URL: url}
	if r.deps.Risk == nil {
		out.Error = "check failed: " + ErrRiskUnavailable.Error()
		return out
	}

	report, err := r.deps.Risk.CheckURL(ctx, url)
	if err != nil {
		r.log.Warn("url risk check failed", slog.String("url", url), slog.Any("err", err))
		out.Error = "check failed: " + err.Error()
		return out
	}
	out.Risk = report
	out.RiskBand = report.Band()
	return out
}
