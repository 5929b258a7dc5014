// internal/adapters/tourapi/client.go
package tourapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"gangwongo/internal/adapters/observability"
	"gangwongo/internal/domain"
	"gangwongo/internal/shared"
)

type Client struct {
	base     string
	hc       *http.Client
	defaults url.Values
	rl       *rate.Limiter
}

// New builds a client for the KorService1 endpoints. An empty service key is
// accepted; the upstream rejects such requests on its side.
func New(cfg shared.TourConfig) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("tour API base URL is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 1000
	}
	lim := rate.NewLimiter(rate.Inf, 0)
	if cfg.RPS > 0 {
		lim = rate.NewLimiter(rate.Limit(cfg.RPS), cfg.RPS)
	}

	defaults := url.Values{}
	defaults.Set("MobileOS", "ETC")
	defaults.Set("MobileApp", cfg.AppName)
	defaults.Set("serviceKey", cfg.ServiceKey)
	defaults.Set("_type", "json")
	defaults.Set("numOfRows", strconv.Itoa(pageSize))

	return &Client{
		base:     base,
		hc:       &http.Client{Timeout: timeout},
		defaults: defaults,
		rl:       lim,
	}, nil
}

// Get performs one GET against operation with the default parameter set
// overlaid by params. Only 200 counts as success; nothing is retried.
func (c *Client) Get(ctx context.Context, operation string, params url.Values) (domain.RawPage, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return domain.RawPage{}, err
	}

	u := c.base + "/" + strings.TrimLeft(operation, "/") + "?" + c.query(params).Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.RawPage{}, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "gangwongo/1.0")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("tourapi", operation, 0, time.Since(start))
		return domain.RawPage{}, fmt.Errorf("tourapi %s: %w", operation, err)
	}
	defer resp.Body.Close()
	observability.ObserveExternal("tourapi", operation, resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		// read a small error body for diagnostics
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return domain.RawPage{}, fmt.Errorf("%w %d from %s: %s",
			domain.ErrUpstreamStatus, resp.StatusCode, operation, strings.TrimSpace(string(b)))
	}

	page, err := decodeEnvelope(resp.Body)
	if err != nil {
		return domain.RawPage{}, fmt.Errorf("%s: %w", operation, err)
	}
	return page, nil
}

func (c *Client) query(params url.Values) url.Values {
	q := make(url.Values, len(c.defaults)+len(params))
	for k, v := range c.defaults {
		q[k] = append([]string(nil), v...)
	}
	for k, v := range params {
		q[k] = append([]string(nil), v...)
	}
	return q
}

type envelope struct {
	Response *struct {
		Header struct {
			ResultCode string `json:"resultCode"`
			ResultMsg  string `json:"resultMsg"`
		} `json:"header"`
		Body *struct {
			Items      json.RawMessage `json:"items"`
			TotalCount any             `json:"totalCount"`
		} `json:"body"`
	} `json:"response"`
}

func decodeEnvelope(r io.Reader) (domain.RawPage, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return domain.RawPage{}, err
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		// quota errors come back as plain text or XML with a 200
		snippet := strings.TrimSpace(string(raw))
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		if isQuotaMessage(snippet) {
			log.Warn().Str("body", snippet).Msg("tourapi request quota exceeded")
			return domain.RawPage{}, fmt.Errorf("%w: %s", domain.ErrQuotaExceeded, snippet)
		}
		return domain.RawPage{}, fmt.Errorf("%w: %s", domain.ErrMalformedResponse, snippet)
	}

	page := domain.RawPage{Items: []map[string]any{}}
	if env.Response == nil {
		return page, nil
	}
	if rc := env.Response.Header.ResultCode; rc != "" && rc != "0000" && rc != "00" {
		log.Warn().Str("resultCode", rc).Str("resultMsg", env.Response.Header.ResultMsg).Msg("tourapi non-success result code")
	}
	if env.Response.Body == nil {
		return page, nil
	}
	page.HasBody = true
	page.TotalCount = flexibleInt(env.Response.Body.TotalCount)
	page.Items = decodeItems(env.Response.Body.Items)
	return page, nil
}

// isQuotaMessage matches the daily traffic limit notice, sent either as
// plain text or as LIMITED_NUMBER_OF_SERVICE_REQUESTS_EXCEEDS_ERROR in XML.
func isQuotaMessage(s string) bool {
	s = strings.ToLower(s)
	for _, w := range []string{"limited", "number", "requests"} {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// decodeItems accepts {"item":[...]}, {"item":{...}} and the empty string
// the upstream sends when nothing matched.
func decodeItems(raw json.RawMessage) []map[string]any {
	out := []map[string]any{}
	var wrapper struct {
		Item json.RawMessage `json:"item"`
	}
	if len(raw) == 0 || json.Unmarshal(raw, &wrapper) != nil {
		return out
	}
	item := strings.TrimSpace(string(wrapper.Item))
	switch {
	case strings.HasPrefix(item, "["):
		var many []map[string]any
		if err := json.Unmarshal(wrapper.Item, &many); err == nil {
			for _, m := range many {
				if m != nil {
					out = append(out, m)
				}
			}
		}
	case strings.HasPrefix(item, "{"):
		var one map[string]any
		if err := json.Unmarshal(wrapper.Item, &one); err == nil {
			out = append(out, one)
		}
	}
	return out
}

func flexibleInt(v any) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err == nil {
			return n
		}
	}
	return 0
}
