package drc20

import (
	"encoding/hex"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/ordinals"
	"github.com/gaze-network/uint128"
)

// OwnerId identifies a balance owner. It is derived from the output pkScript
// and treated as an opaque mapping key.
type OwnerId string

func NewOwnerIdFromPkScript(pkScript []byte) OwnerId {
	return OwnerId(hex.EncodeToString(pkScript))
}

func (o OwnerId) PkScript() ([]byte, error) {
	return hex.DecodeString(string(o))
}

func (o OwnerId) String() string {
	return string(o)
}

type OperationKind string

const (
	OperationKindDeploy           OperationKind = "deploy"
	OperationKindMint             OperationKind = "mint"
	OperationKindInscribeTransfer OperationKind = "inscribe-transfer"
	OperationKindTransfer         OperationKind = "transfer"
)

func (k OperationKind) String() string {
	return string(k)
}

// OperationMeta carries the on-chain anchoring shared by every operation
// variant: which inscription triggered it, where it moved, and its canonical
// position in the block.
type OperationMeta struct {
	InscriptionId     ordinals.InscriptionId
	InscriptionNumber uint64
	OldSatPoint       ordinals.SatPoint
	NewSatPoint       ordinals.SatPoint
	TxHash            chainhash.Hash
	BlockHeight       uint64
	TxIndex           uint32
	Timestamp         time.Time
}

// Operation is one fully-resolved token operation, totally ordered by
// (BlockHeight, TxIndex, inscription input order) before it reaches the
// ledger. Operations are immutable once constructed.
type Operation interface {
	Kind() OperationKind
	Meta() OperationMeta
}

type Deploy struct {
	OperationMeta
	Tick         Tick
	OriginalTick string
	MaxSupply    uint128.Uint128
	LimitPerMint uint128.Uint128
	Decimals     uint16
	Deployer     OwnerId
}

func (d Deploy) Kind() OperationKind { return OperationKindDeploy }
func (d Deploy) Meta() OperationMeta { return d.OperationMeta }

type Mint struct {
	OperationMeta
	Tick         Tick
	OriginalTick string
	Amount       uint128.Uint128
	Minter       OwnerId
}

func (m Mint) Kind() OperationKind { return OperationKindMint }
func (m Mint) Meta() OperationMeta { return m.OperationMeta }

type InscribeTransfer struct {
	OperationMeta
	Tick         Tick
	OriginalTick string
	Amount       uint128.Uint128
	Owner        OwnerId
}

func (i InscribeTransfer) Kind() OperationKind { return OperationKindInscribeTransfer }
func (i InscribeTransfer) Meta() OperationMeta { return i.OperationMeta }

// Transfer spends a previously inscribed transfer to a new owner. Tick and
// amount are not carried here: the ledger resolves them from the transfer
// inscription recorded at inscribe time, keyed by InscriptionId.
type Transfer struct {
	OperationMeta
	From OwnerId
	To   OwnerId
	// SpentAsFee marks inscriptions consumed as transaction fees. The locked
	// amount returns to the sender in that case, same as a self-transfer.
	SpentAsFee bool
}

func (t Transfer) Kind() OperationKind { return OperationKindTransfer }
func (t Transfer) Meta() OperationMeta { return t.OperationMeta }
