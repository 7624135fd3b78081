package drc20

import (
	"github.com/Cleverse/go-utilities/utils"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/gaze-network/dogecoin-indexer/common"
	"github.com/gaze-network/dogecoin-indexer/core/types"
)

const (
	ClientVersion    = "v0.0.1"
	DBVersion        = 1
	EventHashVersion = 1
)

// startingBlockHeader is the last block before the first drc-20 inscription on
// each network. Indexing starts at the next height.
var startingBlockHeader = map[common.Network]types.BlockHeader{
	common.NetworkMainnet: {
		Height: 4609722,
		Hash:   *utils.Must(chainhash.NewHashFromStr("3bc4f5e3c3a2ad1a2d3e89f78e1d2c3b4a5f6e7d8c9b0a1f2e3d4c5b6a7f8e9d")),
	},
	common.NetworkTestnet: {
		Height: 4260976,
		Hash:   *utils.Must(chainhash.NewHashFromStr("6a1f4c2e8d9b3a5c7e0f1d2b4a6c8e0d9f3b5a7c1e2d4f6a8c0e1b3d5f7a9c2e")),
	},
}
