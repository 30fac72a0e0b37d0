package chain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zarwallet/backend/internal/config"
	"github.com/zarwallet/backend/internal/logger"
)

// USDT on TRON uses 6 decimal places.
const TokenDecimals = 6

var ErrUnavailable = errors.New("chain: balance source unavailable")

var addressPattern = regexp.MustCompile(`^T[1-9A-HJ-NP-Za-km-z]{33}$`)

// ValidAddress reports whether s looks like a base58 TRON address.
func ValidAddress(s string) bool {
	return addressPattern.MatchString(s)
}

// ToDisplay converts raw token units to asset units.
func ToDisplay(raw int64) decimal.Decimal {
	return decimal.New(raw, -TokenDecimals)
}

// TronClient reads TRC20 balances from the TronGrid REST API.
type TronClient struct {
	baseURL  string
	apiKey   string
	contract string
	http     *http.Client
}

func NewTronClient(cfg *config.TronConfig) *TronClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &TronClient{
		baseURL:  strings.TrimRight(cfg.APIURL, "/"),
		apiKey:   cfg.APIKey,
		contract: cfg.USDTContract,
		http:     &http.Client{Timeout: timeout},
	}
}

type accountResponse struct {
	Success bool `json:"success"`
	Data    []struct {
		TRC20 []map[string]string `json:"trc20"`
	} `json:"data"`
}

// GetBalance returns the raw token balance held by address. An address that has never
// been activated on chain has no account record and reads as zero.
func (c *TronClient) GetBalance(ctx context.Context, address string) (int64, error) {
	endpoint := fmt.Sprintf("%s/v1/accounts/%s", c.baseURL, url.PathEscape(address))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("TRON-PRO-API-KEY", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		logger.Warnf("[TRON] balance request for %s failed: %v", address, err)
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Warnf("[TRON] balance request for %s returned status %d", address, resp.StatusCode)
		return 0, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var body accountResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	if !body.Success {
		return 0, fmt.Errorf("%w: api reported failure", ErrUnavailable)
	}
	if len(body.Data) == 0 {
		return 0, nil
	}

	for _, token := range body.Data[0].TRC20 {
		raw, ok := token[c.contract]
		if !ok {
			continue
		}
		balance, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: bad balance %q: %v", ErrUnavailable, raw, err)
		}
		return balance, nil
	}
	return 0, nil
}

// Balance returns the token balance held by address in asset units.
func (c *TronClient) Balance(ctx context.Context, address string) (decimal.Decimal, error) {
	raw, err := c.GetBalance(ctx, address)
	if err != nil {
		return decimal.Zero, err
	}
	return ToDisplay(raw), nil
}
