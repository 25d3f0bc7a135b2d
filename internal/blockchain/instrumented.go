package blockchain

import (
	"context"

	"github.com/a2sh3r/walletd/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

type instrumented struct {
	next Client
}

// Instrument records gateway call latency for every network-bound method of c.
func Instrument(c Client) Client {
	return &instrumented{next: c}
}

func (i *instrumented) IsValidAddress(address string) bool {
	return i.next.IsValidAddress(address)
}

func (i *instrumented) GetBalance(ctx context.Context, address string) (map[string]decimal.Decimal, error) {
	timer := prometheus.NewTimer(metrics.ChainCallDuration.WithLabelValues("get_balance"))
	defer timer.ObserveDuration()
	return i.next.GetBalance(ctx, address)
}

func (i *instrumented) SendAsset(ctx context.Context, req SendRequest) (string, error) {
	timer := prometheus.NewTimer(metrics.ChainCallDuration.WithLabelValues("send_asset"))
	defer timer.ObserveDuration()
	return i.next.SendAsset(ctx, req)
}

func (i *instrumented) CheckStatus(ctx context.Context, txHash string) (*TxStatus, error) {
	timer := prometheus.NewTimer(metrics.ChainCallDuration.WithLabelValues("check_status"))
	defer timer.ObserveDuration()
	return i.next.CheckStatus(ctx, txHash)
}
