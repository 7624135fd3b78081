package httphandler

import (
	"github.com/gaze-network/dogecoin-indexer/common"
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/drc20"
	"github.com/gaze-network/uint128"
	"github.com/samber/lo"
)

// drc20Event is the flat, display-oriented projection of a receipt. Fields
// not applicable to the event kind are omitted.
type drc20Event struct {
	InscriptionId     string           `json:"inscriptionId"`
	InscriptionNumber uint64           `json:"inscriptionNumber"`
	Operation         string           `json:"operation"`
	Tick              string           `json:"tick,omitempty"`
	OriginalTick      string           `json:"originalTick,omitempty"`
	BlockHeight       uint64           `json:"blockHeight"`
	TxHash            string           `json:"txHash"`
	OldSatPoint       string           `json:"oldSatpoint"`
	NewSatPoint       string           `json:"newSatpoint"`
	FromAddress       string           `json:"fromAddress,omitempty"`
	FromPkScript      string           `json:"fromPkScript"`
	ToAddress         string           `json:"toAddress,omitempty"`
	ToPkScript        string           `json:"toPkScript"`
	Valid             bool             `json:"valid"`
	Error             string           `json:"error,omitempty"`
	Amount            *uint128.Uint128 `json:"amount,omitempty"`
	Supply            *uint128.Uint128 `json:"supply,omitempty"`
	LimitPerMint      *uint128.Uint128 `json:"limitPerMint,omitempty"`
	Decimals          *uint16          `json:"decimals,omitempty"`
	Clipped           bool             `json:"clipped,omitempty"`
	Cancelled         bool             `json:"cancelled,omitempty"`
	Timestamp         int64            `json:"timestamp"`
}

func makeDrc20Event(receipt *drc20.Receipt, network common.Network) drc20Event {
	event := drc20Event{
		InscriptionId:     receipt.InscriptionId.String(),
		InscriptionNumber: receipt.InscriptionNumber,
		Operation:         receipt.Kind.String(),
		Tick:              receipt.Tick.String(),
		OriginalTick:      receipt.OriginalTick,
		BlockHeight:       receipt.BlockHeight,
		TxHash:            receipt.TxHash.String(),
		OldSatPoint:       receipt.OldSatPoint.String(),
		NewSatPoint:       receipt.NewSatPoint.String(),
		FromPkScript:      receipt.From.String(),
		ToPkScript:        receipt.To.String(),
		Valid:             receipt.Valid(),
		Error:             string(receipt.Err),
		Timestamp:         receipt.Timestamp.Unix(),
	}
	if pkScript, err := receipt.From.PkScript(); err == nil {
		event.FromAddress = addressFromPkScript(pkScript, network)
	}
	if pkScript, err := receipt.To.PkScript(); err == nil {
		event.ToAddress = addressFromPkScript(pkScript, network)
	}

	switch e := receipt.Event.(type) {
	case drc20.DeployEvent:
		event.Supply = lo.ToPtr(e.Supply)
		event.LimitPerMint = lo.ToPtr(e.LimitPerMint)
		event.Decimals = lo.ToPtr(e.Decimals)
	case drc20.MintEvent:
		event.Amount = lo.ToPtr(e.Amount)
		event.Clipped = e.Clipped
	case drc20.InscribeTransferEvent:
		event.Amount = lo.ToPtr(e.Amount)
	case drc20.TransferEvent:
		event.Amount = lo.ToPtr(e.Amount)
		event.Cancelled = e.Cancelled
	}
	return event
}
