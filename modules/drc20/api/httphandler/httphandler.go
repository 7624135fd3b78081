package httphandler

import (
	"encoding/hex"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/gaze-network/dogecoin-indexer/common"
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/usecase"
	"github.com/gaze-network/dogecoin-indexer/pkg/logger"
	"github.com/gaze-network/dogecoin-indexer/pkg/logger/slogx"
)

type HttpHandler struct {
	usecase *usecase.Usecase
	network common.Network
}

func New(network common.Network, usecase *usecase.Usecase) *HttpHandler {
	return &HttpHandler{
		usecase: usecase,
		network: network,
	}
}

type HttpResponse[T any] struct {
	Error  *string `json:"error"`
	Result *T      `json:"result,omitempty"`
}

func resolvePkScript(network common.Network, wallet string) ([]byte, bool) {
	if wallet == "" {
		return nil, false
	}

	// attempt to parse as address
	address, err := btcutil.DecodeAddress(wallet, network.ChainParams())
	if err == nil {
		pkScript, err := txscript.PayToAddrScript(address)
		if err != nil {
			return nil, false
		}
		return pkScript, true
	}

	// attempt to parse as pkscript
	pkScript, err := hex.DecodeString(wallet)
	if err != nil {
		return nil, false
	}
	return pkScript, true
}

// addressFromPkScript returns the address from the given pkScript. If the pkScript is invalid or not standard, it returns empty string.
func addressFromPkScript(pkScript []byte, network common.Network) string {
	_, addrs, _, err := txscript.ExtractPkScriptAddrs(pkScript, network.ChainParams())
	if err != nil {
		logger.Debug("unable to extract address from pkscript", slogx.Error(err))
		return ""
	}
	if len(addrs) != 1 {
		logger.Debug("invalid number of addresses extracted from pkscript. Expected only 1.", slogx.Int("numAddresses", len(addrs)))
		return ""
	}
	return addrs[0].EncodeAddress()
}
