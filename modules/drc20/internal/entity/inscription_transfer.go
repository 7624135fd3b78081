package entity

import (
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/ordinals"
)

// InscriptionTransfer is one movement of an inscription: either its reveal
// (TransferCount == 1, Content carries the inscription body) or a later spend
// to a new output. The ordinal tracker emits these in canonical order within
// a block.
type InscriptionTransfer struct {
	InscriptionId     ordinals.InscriptionId
	InscriptionNumber uint64
	BlockHeight       uint64
	TxIndex           uint32
	TxHash            chainhash.Hash
	Content           []byte
	FromPkScript      []byte
	FromInputIndex    uint32
	OldSatPoint       ordinals.SatPoint
	NewSatPoint       ordinals.SatPoint
	NewPkScript       []byte
	NewOutputValue    uint64
	SentAsFee         bool
	TransferCount     uint32
	Timestamp         time.Time
}
