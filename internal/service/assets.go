package service

import (
	"encoding/hex"
	"slices"
	"strings"

	"github.com/a2sh3r/walletd/internal/apperrors"
)

type Assets struct {
	Default   string
	Supported []string
}

// Resolve maps an empty asset to the default and rejects unsupported ones.
func (a Assets) Resolve(asset string) (string, error) {
	if asset == "" {
		return a.Default, nil
	}
	asset = strings.ToUpper(asset)
	if len(a.Supported) > 0 && !slices.Contains(a.Supported, asset) {
		return "", apperrors.ErrInvalidAsset
	}
	return asset, nil
}

func validTxHash(h string) bool {
	if len(h) != 64 {
		return false
	}
	_, err := hex.DecodeString(h)
	return err == nil
}
