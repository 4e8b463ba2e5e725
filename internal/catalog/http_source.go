package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/piwi3910/FrameCalc/internal/logger"
	"github.com/piwi3910/FrameCalc/internal/model"
)

// HTTPSource fetches the catalog documents with plain GET requests.
type HTTPSource struct {
	productsURL string
	rulesURL    string
	httpClient  *http.Client
	limiter     *RateLimiter
	maxAttempts int
	backoffBase time.Duration
	log         *logger.Logger
}

func NewHTTPSource(cfg model.AppConfig, log *logger.Logger) *HTTPSource {
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &HTTPSource{
		productsURL: cfg.ProductsURL,
		rulesURL:    cfg.RulesURL,
		httpClient:  &http.Client{Timeout: time.Duration(cfg.RequestTimeoutMs) * time.Millisecond},
		limiter:     NewRateLimiter(cfg.RateLimitRPS),
		maxAttempts: attempts,
		backoffBase: 250 * time.Millisecond,
		log:         logger.OrNop(log).With("component", "catalog.http"),
	}
}

func (s *HTTPSource) FetchProducts(ctx context.Context) ([]model.Product, error) {
	body, err := s.fetch(ctx, s.productsURL)
	if err != nil {
		return nil, err
	}
	return decodeJSONArray[model.Product](body)
}

func (s *HTTPSource) FetchRules(ctx context.Context) ([]model.CalculationRule, error) {
	body, err := s.fetch(ctx, s.rulesURL)
	if err != nil {
		return nil, err
	}
	return decodeJSONArray[model.CalculationRule](body)
}

func (s *HTTPSource) fetch(ctx context.Context, url string) ([]byte, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("empty document url")
	}

	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if err := s.limiter.WaitTurn(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			lastErr = err
			s.log.Warn("catalog request failed", "url", url, "attempt", attempt, "error", err)
			if err := s.backoff(ctx, attempt); err != nil {
				return nil, err
			}
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			if err := s.backoff(ctx, attempt); err != nil {
				return nil, err
			}
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			lastErr = fmt.Errorf("GET %s: status=%d", url, resp.StatusCode)
			if isRetryableStatus(resp.StatusCode) && attempt < s.maxAttempts {
				s.log.Warn("catalog request retrying", "url", url, "status", resp.StatusCode, "attempt", attempt)
				if err := s.backoff(ctx, attempt); err != nil {
					return nil, err
				}
				continue
			}
			return nil, lastErr
		}
		return body, nil
	}

	if lastErr == nil {
		lastErr = errors.New("catalog request failed")
	}
	return nil, lastErr
}

// backoff waits before the attempt after attempt. It returns at once after the last attempt.
func (s *HTTPSource) backoff(ctx context.Context, attempt int) error {
	if attempt >= s.maxAttempts {
		return nil
	}
	d := s.backoffBase*time.Duration(1<<(attempt-1)) + time.Duration(rand.Intn(10))*time.Millisecond
	return sleepCtx(ctx, d)
}

func isRetryableStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
