package drc20

import (
	"strconv"
	"strings"

	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/drc20"
	"github.com/gaze-network/uint128"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

const eventHashSeparator = "|"

// getReceiptString serializes one valid receipt for event hashing. Rejected
// receipts are excluded from the hash. The format is stable across releases;
// changing it requires bumping EventHashVersion.
func getReceiptString(receipt *drc20.Receipt, decimals uint16) string {
	var sb strings.Builder
	switch event := receipt.Event.(type) {
	case drc20.DeployEvent:
		sb.WriteString("deploy;")
		sb.WriteString(receipt.InscriptionId.String() + ";")
		sb.WriteString(receipt.From.String() + ";")
		sb.WriteString(receipt.Tick.String() + ";")
		sb.WriteString(receipt.OriginalTick + ";")
		sb.WriteString(amountString(event.Supply, event.Decimals) + ";")
		sb.WriteString(strconv.Itoa(int(event.Decimals)) + ";")
		sb.WriteString(amountString(event.LimitPerMint, event.Decimals))
	case drc20.MintEvent:
		sb.WriteString("mint;")
		sb.WriteString(receipt.InscriptionId.String() + ";")
		sb.WriteString(receipt.To.String() + ";")
		sb.WriteString(receipt.Tick.String() + ";")
		sb.WriteString(receipt.OriginalTick + ";")
		sb.WriteString(amountString(event.Amount, decimals) + ";")
		sb.WriteString(lo.Ternary(event.Clipped, "True", "False"))
	case drc20.InscribeTransferEvent:
		sb.WriteString("inscribe-transfer;")
		sb.WriteString(receipt.InscriptionId.String() + ";")
		sb.WriteString(receipt.From.String() + ";")
		sb.WriteString(receipt.Tick.String() + ";")
		sb.WriteString(receipt.OriginalTick + ";")
		sb.WriteString(amountString(event.Amount, decimals))
	case drc20.TransferEvent:
		sb.WriteString("transfer;")
		sb.WriteString(receipt.InscriptionId.String() + ";")
		sb.WriteString(receipt.From.String() + ";")
		if event.Cancelled {
			sb.WriteString(";")
		} else {
			sb.WriteString(receipt.To.String() + ";")
		}
		sb.WriteString(receipt.Tick.String() + ";")
		sb.WriteString(receipt.OriginalTick + ";")
		sb.WriteString(amountString(event.Amount, decimals))
	}
	return sb.String()
}

func amountString(amount uint128.Uint128, decimals uint16) string {
	return decimal.NewFromBigInt(amount.Big(), -int32(decimals)).StringFixed(int32(decimals))
}
