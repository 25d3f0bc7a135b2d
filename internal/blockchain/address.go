package blockchain

import (
	"strings"

	"github.com/btcsuite/btcutil/base58"
)

const (
	tronAddressVersion = 0x41
	tronAddressLength  = 34
	tronPayloadLength  = 20
)

// IsTronAddress checks the base58check encoding of a Tron account address.
func IsTronAddress(address string) bool {
	if len(address) != tronAddressLength || !strings.HasPrefix(address, "T") {
		return false
	}
	payload, version, err := base58.CheckDecode(address)
	if err != nil {
		return false
	}
	return version == tronAddressVersion && len(payload) == tronPayloadLength
}
