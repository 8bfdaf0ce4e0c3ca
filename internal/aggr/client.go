// Package aggr is a client for the swap aggregator: route pricing and
// transaction building. It holds no retry logic; callers decide when a
// failed cycle is worth repeating.
package aggr

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// ErrQuoteUnavailable marks any pricing failure: non-2xx status, malformed
// payload, or an empty route. Match with errors.Is.
var ErrQuoteUnavailable = errors.New("quote unavailable")

// ErrBuildFailed marks a swap-build response that cannot be executed:
// missing target address or call data.
var ErrBuildFailed = errors.New("swap build failed")

const (
	pricesPath       = "/prices"
	transactionsPath = "/transactions"

	defaultTimeout = 12 * time.Second
)

type Client struct {
	host       string
	chainID    int64
	httpClient *http.Client
	userAgent  string
}

func NewClient(host string, chainID int64) (*Client, error) {
	host = strings.TrimSpace(host)
	host = strings.TrimRight(host, "/")
	if host == "" {
		return nil, fmt.Errorf("aggregator url required")
	}

	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("aggregator url parse %q: %w", host, err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return nil, fmt.Errorf("aggregator url must be http(s), got %q", host)
	}
	if chainID <= 0 {
		return nil, fmt.Errorf("chain id must be positive, got %d", chainID)
	}

	return &Client{
		host:    host,
		chainID: chainID,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		userAgent: "Mozilla/5.0",
	}, nil
}

// RouteHop is one exchange hop of the best route. Only the fields the bot
// inspects are decoded; the full hop travels back to the aggregator inside
// Quote.Raw.
type RouteHop struct {
	Exchange string `json:"exchange"`
	Percent  json.Number `json:"percent"`
}

// Quote is an immutable priced route for one (src, dest, amount) triple.
// Raw carries the aggregator's full priceRoute object and must be echoed
// verbatim on the build call.
type Quote struct {
	SrcToken   common.Address
	DestToken  common.Address
	SrcAmount  *big.Int
	DestAmount *big.Int
	SrcUSD     string
	DestUSD    string
	Hops       []RouteHop
	Raw        json.RawMessage
}

type priceRoute struct {
	SrcToken   string          `json:"srcToken"`
	DestToken  string          `json:"destToken"`
	SrcAmount  string          `json:"srcAmount"`
	DestAmount string          `json:"destAmount"`
	SrcUSD     string          `json:"srcUSD"`
	DestUSD    string          `json:"destUSD"`
	BestRoute  []RouteHop      `json:"bestRoute"`
}

type priceResponse struct {
	PriceRoute json.RawMessage `json:"priceRoute"`
}

// GetPrice asks the aggregator for the best SELL route converting amount of
// src into dest. maxImpactBps bounds the accepted price impact.
func (c *Client) GetPrice(ctx context.Context, src, dest common.Address, amount *big.Int, maxImpactBps uint64) (Quote, error) {
	if amount == nil || amount.Sign() <= 0 {
		return Quote{}, fmt.Errorf("%w: amount must be positive", ErrQuoteUnavailable)
	}

	q := url.Values{}
	q.Set("srcToken", src.Hex())
	q.Set("destToken", dest.Hex())
	q.Set("amount", amount.String())
	q.Set("side", "SELL")
	q.Set("network", strconv.FormatInt(c.chainID, 10))
	q.Set("maxImpact", strconv.FormatUint(maxImpactBps/100, 10))

	endpoint := c.host + pricesPath + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Quote{}, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Quote{}, fmt.Errorf("%w: %v", ErrQuoteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body := readBodyLimit(resp.Body, 8<<10)
		return Quote{}, fmt.Errorf("%w: status=%d body=%q", ErrQuoteUnavailable, resp.StatusCode, body)
	}

	var pr priceResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return Quote{}, fmt.Errorf("%w: decode: %v", ErrQuoteUnavailable, err)
	}
	if len(bytes.TrimSpace(pr.PriceRoute)) == 0 {
		return Quote{}, fmt.Errorf("%w: missing priceRoute", ErrQuoteUnavailable)
	}

	var route priceRoute
	if err := json.Unmarshal(pr.PriceRoute, &route); err != nil {
		return Quote{}, fmt.Errorf("%w: decode priceRoute: %v", ErrQuoteUnavailable, err)
	}
	if len(route.BestRoute) == 0 {
		return Quote{}, fmt.Errorf("%w: empty route", ErrQuoteUnavailable)
	}

	srcAmount, ok := new(big.Int).SetString(strings.TrimSpace(route.SrcAmount), 10)
	if !ok || srcAmount.Sign() <= 0 {
		return Quote{}, fmt.Errorf("%w: bad srcAmount %q", ErrQuoteUnavailable, route.SrcAmount)
	}
	destAmount, ok := new(big.Int).SetString(strings.TrimSpace(route.DestAmount), 10)
	if !ok || destAmount.Sign() <= 0 {
		return Quote{}, fmt.Errorf("%w: bad destAmount %q", ErrQuoteUnavailable, route.DestAmount)
	}

	return Quote{
		SrcToken:   src,
		DestToken:  dest,
		SrcAmount:  srcAmount,
		DestAmount: destAmount,
		SrcUSD:     strings.TrimSpace(route.SrcUSD),
		DestUSD:    strings.TrimSpace(route.DestUSD),
		Hops:       route.BestRoute,
		Raw:        pr.PriceRoute,
	}, nil
}

// BuildResult is the executable half of an accepted quote.
type BuildResult struct {
	To   common.Address
	Data []byte
}

type buildRequest struct {
	SrcToken    string          `json:"srcToken"`
	DestToken   string          `json:"destToken"`
	SrcAmount   string          `json:"srcAmount"`
	DestAmount  string          `json:"destAmount"`
	PriceRoute  json.RawMessage `json:"priceRoute"`
	UserAddress string          `json:"userAddress"`
	SlippageBps uint64          `json:"slippage"`
	Deadline    int64           `json:"deadline"`
}

type buildResponse struct {
	To   string `json:"to"`
	Data string `json:"data"`
}

// BuildSwap asks the aggregator to encode the swap transaction for the exact
// quoted route. minDestAmount is the slippage-bounded floor the caller will
// enforce on-chain; user is the address that holds the funds and executes.
func (c *Client) BuildSwap(ctx context.Context, q Quote, minDestAmount *big.Int, slippageBps uint64, user common.Address, deadline time.Time) (BuildResult, error) {
	if len(q.Raw) == 0 {
		return BuildResult{}, fmt.Errorf("%w: quote has no priceRoute", ErrBuildFailed)
	}

	body, err := json.Marshal(buildRequest{
		SrcToken:    q.SrcToken.Hex(),
		DestToken:   q.DestToken.Hex(),
		SrcAmount:   q.SrcAmount.String(),
		DestAmount:  minDestAmount.String(),
		PriceRoute:  q.Raw,
		UserAddress: user.Hex(),
		SlippageBps: slippageBps,
		Deadline:    deadline.Unix(),
	})
	if err != nil {
		return BuildResult{}, err
	}

	endpoint := fmt.Sprintf("%s%s/%d?ignoreChecks=true", c.host, transactionsPath, c.chainID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return BuildResult{}, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return BuildResult{}, fmt.Errorf("%w: %v", ErrBuildFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b := readBodyLimit(resp.Body, 8<<10)
		return BuildResult{}, fmt.Errorf("%w: status=%d body=%q", ErrBuildFailed, resp.StatusCode, b)
	}

	var br buildResponse
	if err := json.NewDecoder(resp.Body).Decode(&br); err != nil {
		return BuildResult{}, fmt.Errorf("%w: decode: %v", ErrBuildFailed, err)
	}
	to := strings.TrimSpace(br.To)
	if !common.IsHexAddress(to) {
		return BuildResult{}, fmt.Errorf("%w: missing target address", ErrBuildFailed)
	}
	dataHex := strings.TrimSpace(strings.TrimPrefix(br.Data, "0x"))
	if dataHex == "" {
		return BuildResult{}, fmt.Errorf("%w: missing call data", ErrBuildFailed)
	}
	data, err := hexDecode(dataHex)
	if err != nil {
		return BuildResult{}, fmt.Errorf("%w: bad call data: %v", ErrBuildFailed, err)
	}

	return BuildResult{To: common.HexToAddress(to), Data: data}, nil
}

func hexDecode(s string) ([]byte, error) {
	return hex.DecodeString(s)
}

func readBodyLimit(r io.Reader, max int64) string {
	if r == nil || max <= 0 {
		return ""
	}
	lr := &io.LimitedReader{R: r, N: max}
	b, _ := io.ReadAll(lr)
	return strings.TrimSpace(string(b))
}
