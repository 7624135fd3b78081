package drc20

import "github.com/gaze-network/uint128"

// Event records the effective outcome of a successfully applied operation.
// Values reflect what was actually applied, not what was requested: a clipped
// mint reports the credited remainder, not the requested amount.
type Event interface {
	Kind() OperationKind
}

type DeployEvent struct {
	Supply       uint128.Uint128
	LimitPerMint uint128.Uint128
	Decimals     uint16
}

func (DeployEvent) Kind() OperationKind { return OperationKindDeploy }

type MintEvent struct {
	Amount uint128.Uint128
	// Clipped is set when the requested amount exceeded the remaining supply
	// and the mint was partially filled.
	Clipped bool
}

func (MintEvent) Kind() OperationKind { return OperationKindMint }

type InscribeTransferEvent struct {
	Tick   Tick
	Amount uint128.Uint128
}

func (InscribeTransferEvent) Kind() OperationKind { return OperationKindInscribeTransfer }

type TransferEvent struct {
	Tick   Tick
	Amount uint128.Uint128
	// Cancelled is set when the inscription returned to its own inscriber
	// (self-transfer or spent as fee) and the locked amount was released.
	Cancelled bool
}

func (TransferEvent) Kind() OperationKind { return OperationKindTransfer }
