package blockchain

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/a2sh3r/walletd/internal/hash"
	"github.com/a2sh3r/walletd/internal/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrSendRejected means the network refused the send and nothing was broadcast.
var ErrSendRejected = errors.New("send rejected by network")

type Client interface {
	IsValidAddress(address string) bool
	GetBalance(ctx context.Context, address string) (map[string]decimal.Decimal, error)
	SendAsset(ctx context.Context, req SendRequest) (string, error)
	CheckStatus(ctx context.Context, txHash string) (*TxStatus, error)
}

type SendRequest struct {
	RequestID string          `json:"request_id"`
	To        string          `json:"to"`
	Amount    decimal.Decimal `json:"amount"`
	Asset     string          `json:"asset"`
	Memo      string          `json:"memo,omitempty"`
}

type sendResponse struct {
	TxHash string `json:"tx_hash"`
}

type balanceResponse struct {
	Balances map[string]decimal.Decimal `json:"balances"`
}

type TxStatus struct {
	TxHash      string          `json:"tx_hash"`
	Found       bool            `json:"found"`
	Confirmed   bool            `json:"confirmed"`
	Success     bool            `json:"success"`
	BlockNumber int64           `json:"block_number"`
	Fee         decimal.Decimal `json:"fee"`
}

// RequestID derives the idempotency key the gateway uses to deduplicate sends.
func RequestID(kind string, id int64) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(kind+":"+strconv.FormatInt(id, 10))).String()
}

type HTTPClient struct {
	baseURL    string
	key        string
	httpClient *http.Client
}

func NewClient(baseURL, key string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL:    baseURL,
		key:        key,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Close() {
	c.httpClient.CloseIdleConnections()
}

func (c *HTTPClient) IsValidAddress(address string) bool {
	return IsTronAddress(address)
}

func (c *HTTPClient) GetBalance(ctx context.Context, address string) (map[string]decimal.Decimal, error) {
	var out balanceResponse
	status, err := c.do(ctx, http.MethodGet, "/v1/accounts/"+url.PathEscape(address)+"/balances", nil, &out)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", status)
	}
	return out.Balances, nil
}

func (c *HTTPClient) SendAsset(ctx context.Context, req SendRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	var out sendResponse
	status, err := c.do(ctx, http.MethodPost, "/v1/send", body, &out)
	if err != nil {
		return "", err
	}

	switch {
	case status == http.StatusOK && out.TxHash != "":
		return out.TxHash, nil
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return "", fmt.Errorf("%w: status %d", ErrSendRejected, status)
	default:
		return "", fmt.Errorf("unexpected send response: status %d", status)
	}
}

func (c *HTTPClient) CheckStatus(ctx context.Context, txHash string) (*TxStatus, error) {
	var out TxStatus
	status, err := c.do(ctx, http.MethodGet, "/v1/transactions/"+url.PathEscape(txHash), nil, &out)
	if err != nil {
		return nil, err
	}

	switch status {
	case http.StatusOK:
		out.Found = true
		if out.TxHash == "" {
			out.TxHash = txHash
		}
		return &out, nil
	case http.StatusNotFound:
		return &TxStatus{TxHash: txHash}, nil
	default:
		return nil, fmt.Errorf("unexpected status: %d", status)
	}
}

// do sends a signed request and decodes a 200 response into out.
func (c *HTTPClient) do(ctx context.Context, method, path string, body []byte, out any) (int, error) {
	var reader io.Reader
	signed := path
	if body != nil {
		reader = bytes.NewReader(body)
		signed = string(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sum := hash.CalculateHash(signed, c.key); sum != "" {
		req.Header.Set(hash.HeaderName, sum)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			logger.Log.Error("failed to close gateway body", zap.Error(err))
		}
	}(resp.Body)

	logger.Log.Debug("gateway response", zap.String("path", path), zap.Int("status", resp.StatusCode))

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, err
	}
	return resp.StatusCode, nil
}
