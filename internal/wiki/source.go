// Package wiki implements the article source over the encyclopedia's HTML
// pages: random-article resolution, first-link extraction and titling.
package wiki

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/jonesrussell/north-cloud/philosophy/infrastructure/circuitbreaker"
	infraerrors "github.com/jonesrussell/north-cloud/philosophy/infrastructure/errors"
	infrahttp "github.com/jonesrussell/north-cloud/philosophy/infrastructure/http"
	infralogger "github.com/jonesrussell/north-cloud/philosophy/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/philosophy/infrastructure/retry"
	"github.com/jonesrussell/north-cloud/philosophy/internal/domain"
)

// Source fetches articles over HTTP. It is safe for concurrent use.
type Source struct {
	base     *url.URL
	client   *http.Client
	resolver *http.Client
	limiter  *rate.Limiter
	retry    retry.Config
	breaker  *circuitbreaker.Breaker
	docs     *docCache
	log      infralogger.Logger
}

// NewSource creates a source from cfg.
func NewSource(cfg Config, log infralogger.Logger) (*Source, error) {
	cfg.SetDefaults()

	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: base url %q", domain.ErrInvalidLocator, cfg.BaseURL)
	}
	if log == nil {
		log = infralogger.NewNop()
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	breakerCfg := circuitbreaker.DefaultConfig()
	if cfg.BreakerThreshold > 0 {
		breakerCfg.FailureThreshold = cfg.BreakerThreshold
	}
	if cfg.BreakerCoolDown > 0 {
		breakerCfg.CoolDown = cfg.BreakerCoolDown
	}
	breakerCfg.IsFailure = isUpstreamFailure
	breakerCfg.OnStateChange = func(from, to circuitbreaker.State) {
		log.Warn("Article source circuit changed state",
			infralogger.String("from", from.String()),
			infralogger.String("to", to.String()),
		)
		if cfg.OnCircuitChange != nil {
			cfg.OnCircuitChange(to.String())
		}
	}

	retryCfg := cfg.retryConfig()
	retryCfg.IsRetryable = isUpstreamFailure

	return &Source{
		base: base,
		client: infrahttp.NewClient(&infrahttp.ClientConfig{
			Timeout:      cfg.Timeout,
			MaxRedirects: cfg.MaxRedirects,
			UserAgent:    cfg.UserAgent,
		}),
		resolver: infrahttp.NewClient(&infrahttp.ClientConfig{
			Timeout:      cfg.Timeout,
			MaxRedirects: -1,
			UserAgent:    cfg.UserAgent,
		}),
		limiter: rate.NewLimiter(limit, cfg.Burst),
		retry:   retryCfg,
		breaker: circuitbreaker.New(breakerCfg),
		docs:    newDocCache(cfg.DocCacheSize),
		log:     log,
	}, nil
}

// ResolveRandom asks the server where locator redirects to without following it.
func (s *Source) ResolveRandom(ctx context.Context, locator string) (string, error) {
	reqURL, err := s.absolute(locator)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrResolution, err)
	}

	var resolved string
	err = s.call(ctx, func(ctx context.Context) error {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), http.NoBody)
		if reqErr != nil {
			return reqErr
		}
		resp, doErr := s.resolver.Do(req)
		if doErr != nil {
			return infraerrors.WrapWithContextf(doErr, "request %s", reqURL.Redacted())
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)

		if checkErr := infraerrors.CheckResponse(resp); checkErr != nil {
			return checkErr
		}

		location := resp.Header.Get("Location")
		if location == "" {
			return errors.New("no redirect location")
		}
		target, parseErr := reqURL.Parse(location)
		if parseErr != nil {
			return infraerrors.WrapWithContextf(parseErr, "parse location %q", location)
		}
		resolved = target.String()
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", domain.ErrResolution, locator, err)
	}

	s.log.Debug("Resolved random article",
		infralogger.String("from", locator),
		infralogger.String("to", resolved),
	)
	return resolved, nil
}

// FirstValidLink returns the absolute locator of the first qualifying link, or "".
func (s *Source) FirstValidLink(ctx context.Context, locator string) (string, error) {
	doc, err := s.document(ctx, locator)
	if err != nil {
		return "", err
	}

	href := firstValidHref(doc)
	if href == "" {
		return "", nil
	}
	return s.base.String() + href, nil
}

// TitleOf returns the canonical title of the article at locator.
func (s *Source) TitleOf(ctx context.Context, locator string) (string, error) {
	doc, err := s.document(ctx, locator)
	if err != nil {
		return "", err
	}

	title := extractTitle(doc, locator)
	if title == "" {
		return "", fmt.Errorf("%w: %s: no title", domain.ErrFetch, locator)
	}
	return title, nil
}

// document fetches and parses locator, reusing a recently fetched copy.
func (s *Source) document(ctx context.Context, locator string) (*goquery.Document, error) {
	if doc, ok := s.docs.get(locator); ok {
		return doc, nil
	}

	reqURL, err := s.absolute(locator)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrFetch, err)
	}

	var doc *goquery.Document
	err = s.call(ctx, func(ctx context.Context) error {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), http.NoBody)
		if reqErr != nil {
			return reqErr
		}
		resp, doErr := s.client.Do(req)
		if doErr != nil {
			return infraerrors.WrapWithContextf(doErr, "request %s", reqURL.Redacted())
		}
		defer resp.Body.Close()

		if checkErr := infraerrors.CheckResponse(resp); checkErr != nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			return checkErr
		}

		parsed, parseErr := goquery.NewDocumentFromReader(resp.Body)
		if parseErr != nil {
			return infraerrors.WrapWithContext(parseErr, "parse html")
		}
		doc = parsed
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrFetch, locator, err)
	}

	s.docs.put(locator, doc)
	return doc, nil
}

// call paces, breaks and retries one logical request.
func (s *Source) call(ctx context.Context, fn func(context.Context) error) error {
	return s.breaker.Execute(ctx, func(ctx context.Context) error {
		return retry.Retry(ctx, s.retry, func() error {
			if err := s.limiter.Wait(ctx); err != nil {
				return err
			}
			return fn(ctx)
		})
	})
}

// absolute resolves locator against the base URL and rejects anything that
// is not http(s).
func (s *Source) absolute(locator string) (*url.URL, error) {
	if strings.TrimSpace(locator) == "" {
		return nil, fmt.Errorf("%w: empty", domain.ErrInvalidLocator)
	}
	u, err := s.base.Parse(locator)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", domain.ErrInvalidLocator, locator, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidLocator, locator)
	}
	return u, nil
}

// isUpstreamFailure reports errors that say the upstream is struggling:
// 429, 5xx and transport failures. Missing pages and bad input do not count.
func isUpstreamFailure(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if infraerrors.IsRetryableHTTP(err) {
		return true
	}
	var httpErr *infraerrors.HTTPError
	if errors.As(err, &httpErr) {
		return false
	}
	return retry.DefaultIsRetryable(err)
}
