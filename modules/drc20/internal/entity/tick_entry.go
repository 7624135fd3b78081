package entity

import (
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/drc20"
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/ordinals"
	"github.com/gaze-network/uint128"
)

// TickEntry is the persisted registry row for one deployed tick. All fields
// are immutable after deploy except MintedAmount and the Completed pair.
type TickEntry struct {
	Tick                drc20.Tick
	OriginalTick        string
	TotalSupply         uint128.Uint128
	LimitPerMint        uint128.Uint128
	Decimals            uint16
	Deployer            drc20.OwnerId
	DeployInscriptionId ordinals.InscriptionId
	DeployTxHash        chainhash.Hash
	DeployedAt          time.Time
	DeployedAtHeight    uint64

	MintedAmount      uint128.Uint128
	CompletedAt       time.Time
	CompletedAtHeight uint64
}
