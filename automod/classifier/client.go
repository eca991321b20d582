package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/commentguard/commentguard/automod/tokenstore"

	"github.com/carlmjohnson/versioninfo"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

type Verdict string

const (
	VerdictPass   Verdict = "pass"
	VerdictReview Verdict = "review"
	VerdictBlock  Verdict = "block"
	VerdictError  Verdict = "error"
)

const (
	DefaultTokenURL  = "https://aip.baidubce.com/oauth/2.0/token"
	DefaultCensorURL = "https://aip.baidubce.com/rest/2.0/solution/v1/text_censor/v2/user_defined"
)

// Provider error codes which indicate an invalid or expired access token.
var DefaultAuthErrorCodes = []int{110, 111, 100, 18}

type Credentials struct {
	APIKey    string
	SecretKey string
}

func (c Credentials) Configured() bool {
	return c.APIKey != "" && c.SecretKey != ""
}

// Store key for the token belonging to these credentials.
func (c Credentials) Key() string {
	return tokenstore.CredentialKey(c.APIKey, c.SecretKey)
}

type Client struct {
	HTTPClient *http.Client
	Tokens     tokenstore.TokenStore
	Logger     *slog.Logger

	TokenURL  string
	CensorURL string

	// bounds for the moderation call and the token exchange respectively
	Timeout      time.Duration
	TokenTimeout time.Duration
	TokenTTL     time.Duration

	AuthErrorCodes []int

	// optional; used to stay within the provider's QPS quota
	Limiter *rate.Limiter
}

func NewClient(tokens tokenstore.TokenStore, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		HTTPClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		Tokens:         tokens,
		Logger:         logger.With("component", "classifier"),
		TokenURL:       DefaultTokenURL,
		CensorURL:      DefaultCensorURL,
		Timeout:        8 * time.Second,
		TokenTimeout:   6 * time.Second,
		TokenTTL:       tokenstore.DefaultTTL,
		AuthErrorCodes: DefaultAuthErrorCodes,
	}
}

// schema: https://ai.baidu.com/ai-doc/ANTIPORN/Nk3h6xbb2
type censorResp struct {
	ErrorCode      json.RawMessage `json:"error_code,omitempty"`
	ErrorMsg       string          `json:"error_msg,omitempty"`
	Conclusion     string          `json:"conclusion,omitempty"`
	ConclusionType json.RawMessage `json:"conclusionType,omitempty"`
	Result         json.RawMessage `json:"result,omitempty"`
}

type tokenResp struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	Error       string `json:"error"`
}

// Parses a JSON number or numeric string. Returns false if absent or not numeric.
func parseCode(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if v, err := n.Int64(); err == nil {
			return int(v), true
		}
		if f, err := n.Float64(); err == nil {
			return int(f), true
		}
		return 0, false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return v, true
		}
	}
	return 0, false
}

func verdictFromCode(ct int) (Verdict, bool) {
	switch ct {
	case 1:
		return VerdictPass, true
	case 2:
		return VerdictReview, true
	case 3:
		return VerdictBlock, true
	}
	return "", false
}

// Checks the top-level verdict first, then one nested under "result".
func (r *censorResp) Verdict() Verdict {
	if ct, ok := parseCode(r.ConclusionType); ok {
		if v, ok := verdictFromCode(ct); ok {
			return v
		}
	}
	if len(r.Result) > 0 {
		var nested struct {
			ConclusionType json.RawMessage `json:"conclusionType"`
		}
		if err := json.Unmarshal(r.Result, &nested); err == nil {
			if ct, ok := parseCode(nested.ConclusionType); ok {
				if v, ok := verdictFromCode(ct); ok {
					return v
				}
			}
		}
	}
	return VerdictError
}

func (c *Client) isAuthError(r *censorResp) bool {
	code, ok := parseCode(r.ErrorCode)
	if !ok {
		return false
	}
	return slices.Contains(c.AuthErrorCodes, code)
}

// Classifies the text. Never returns an error: any failure along the way is reported as VerdictError.
func (c *Client) Classify(ctx context.Context, text string, creds Credentials) Verdict {
	v := c.classify(ctx, text, creds)
	verdictCount.WithLabelValues(string(v)).Inc()
	return v
}

func (c *Client) classify(ctx context.Context, text string, creds Credentials) Verdict {
	if text == "" {
		return VerdictPass
	}
	logger := c.Logger

	token, err := c.cachedToken(ctx, creds)
	if err != nil {
		logger.Warn("failed to read cached classifier token", "err", err)
	}
	if token == "" {
		token, err = c.refreshToken(ctx, creds)
		if err != nil {
			logger.Warn("classifier token fetch failed", "err", err)
			return VerdictError
		}
	}

	resp, err := c.censor(ctx, token, text, true)
	if err != nil {
		logger.Warn("classifier request failed", "err", err)
		return VerdictError
	}

	if c.isAuthError(resp) {
		logger.Info("classifier token rejected, refreshing", "error_code", string(resp.ErrorCode), "error_msg", resp.ErrorMsg)
		token, err = c.refreshToken(ctx, creds)
		if err != nil {
			logger.Warn("classifier token refresh failed", "err", err)
			return VerdictError
		}
		resp, err = c.censor(ctx, token, text, false)
		if err != nil {
			logger.Warn("classifier request failed after token refresh", "err", err)
			return VerdictError
		}
	}

	v := resp.Verdict()
	if v == VerdictError {
		logger.Warn("unrecognized classifier response", "error_code", string(resp.ErrorCode), "error_msg", resp.ErrorMsg)
	} else {
		logger.Debug("classifier verdict", "verdict", v, "conclusion", resp.Conclusion)
	}
	return v
}

func (c *Client) cachedToken(ctx context.Context, creds Credentials) (string, error) {
	if c.Tokens == nil {
		return "", nil
	}
	return c.Tokens.Load(ctx, creds.Key())
}

// Fetches a fresh token and stores it. Store failures are logged, not returned.
func (c *Client) refreshToken(ctx context.Context, creds Credentials) (string, error) {
	token, err := c.fetchToken(ctx, creds)
	if err != nil {
		tokenExchangeCount.WithLabelValues("error").Inc()
		return "", err
	}
	tokenExchangeCount.WithLabelValues("ok").Inc()
	if c.Tokens != nil {
		if err := c.Tokens.Store(ctx, creds.Key(), token, c.TokenTTL); err != nil {
			c.Logger.Warn("failed to cache classifier token", "err", err)
		}
	}
	return token, nil
}

func (c *Client) fetchToken(ctx context.Context, creds Credentials) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.TokenTimeout)
	defer cancel()

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", creds.APIKey)
	form.Set("client_secret", creds.SecretKey)

	body, _, err := c.postForm(ctx, c.TokenURL, form)
	if err != nil {
		return "", fmt.Errorf("token exchange: %w", err)
	}
	var tr tokenResp
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", fmt.Errorf("failed to parse token resp JSON: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("token exchange returned no access_token (error=%q)", tr.Error)
	}
	return tr.AccessToken, nil
}

func (c *Client) censor(ctx context.Context, token, text string, riskWarning bool) (*censorResp, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	form := url.Values{}
	form.Set("text", text)
	if riskWarning {
		form.Set("riskWarning", "true")
	}

	u, err := url.Parse(c.CensorURL)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("access_token", token)
	u.RawQuery = q.Encode()

	start := time.Now()
	defer func() {
		censorAPIDuration.Observe(time.Since(start).Seconds())
	}()

	body, status, err := c.postForm(ctx, u.String(), form)
	if err != nil && status == 0 {
		return nil, err
	}
	censorAPICount.WithLabelValues(fmt.Sprint(status)).Inc()

	var resp censorResp
	if perr := json.Unmarshal(body, &resp); perr != nil {
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("failed to parse censor resp JSON: %w", perr)
	}
	// a non-2xx response is only usable when it reports a rejected token
	if err != nil && !c.isAuthError(&resp) {
		return nil, err
	}
	return &resp, nil
}

var errNonSuccess = errors.New("non-success HTTP status")

// Returns the response body and status code. A non-2xx status is returned as an error along with the body.
func (c *Client) postForm(ctx context.Context, target string, form url.Values) ([]byte, int, error) {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, 0, fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, "POST", target, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "commentguard/"+versioninfo.Short())

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, res.StatusCode, fmt.Errorf("failed to read resp body: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return body, res.StatusCode, fmt.Errorf("%w: statusCode=%d", errNonSuccess, res.StatusCode)
	}
	return body, res.StatusCode, nil
}
