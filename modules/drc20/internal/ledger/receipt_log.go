package ledger

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/drc20"
)

// ReceiptLog is the append-only audit trail. Receipts arrive strictly in
// application order and are never mutated; the only removal is the suffix
// truncation performed during undo.
type ReceiptLog struct {
	receipts []*drc20.Receipt
	byTx     map[chainhash.Hash][]*drc20.Receipt
	byTick   map[drc20.Tick][]*drc20.Receipt
}

func NewReceiptLog() *ReceiptLog {
	return &ReceiptLog{
		byTx:   make(map[chainhash.Hash][]*drc20.Receipt),
		byTick: make(map[drc20.Tick][]*drc20.Receipt),
	}
}

func (l *ReceiptLog) Append(receipt *drc20.Receipt) {
	l.receipts = append(l.receipts, receipt)
	l.byTx[receipt.TxHash] = append(l.byTx[receipt.TxHash], receipt)
	if receipt.Tick != "" {
		l.byTick[receipt.Tick] = append(l.byTick[receipt.Tick], receipt)
	}
}

func (l *ReceiptLog) Len() int {
	return len(l.receipts)
}

// ByTransaction returns all receipts for txHash in application order.
func (l *ReceiptLog) ByTransaction(txHash chainhash.Hash) []*drc20.Receipt {
	receipts := l.byTx[txHash]
	out := make([]*drc20.Receipt, len(receipts))
	copy(out, receipts)
	return out
}

// ByTick returns up to limit receipts for tick within [fromHeight, toHeight],
// skipping offset matches. Passing the previous offset plus the returned
// count resumes the scan, so callers can page through a tick's history.
func (l *ReceiptLog) ByTick(tick drc20.Tick, fromHeight, toHeight uint64, limit, offset int) []*drc20.Receipt {
	var out []*drc20.Receipt
	skipped := 0
	for _, receipt := range l.byTick[tick] {
		if receipt.BlockHeight < fromHeight || receipt.BlockHeight > toHeight {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		out = append(out, receipt)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// SinceHeight returns all receipts at or above height in application order.
func (l *ReceiptLog) SinceHeight(height uint64) []*drc20.Receipt {
	idx := l.firstIndexAtOrAbove(height)
	out := make([]*drc20.Receipt, len(l.receipts)-idx)
	copy(out, l.receipts[idx:])
	return out
}

// TruncateSinceHeight drops every receipt at or above height and repairs the
// secondary indexes.
func (l *ReceiptLog) TruncateSinceHeight(height uint64) {
	idx := l.firstIndexAtOrAbove(height)
	if idx == len(l.receipts) {
		return
	}
	for _, receipt := range l.receipts[idx:] {
		l.byTx[receipt.TxHash] = dropLast(l.byTx[receipt.TxHash], receipt)
		if len(l.byTx[receipt.TxHash]) == 0 {
			delete(l.byTx, receipt.TxHash)
		}
		if receipt.Tick != "" {
			l.byTick[receipt.Tick] = dropLast(l.byTick[receipt.Tick], receipt)
			if len(l.byTick[receipt.Tick]) == 0 {
				delete(l.byTick, receipt.Tick)
			}
		}
	}
	l.receipts = l.receipts[:idx]
}

// firstIndexAtOrAbove relies on receipts being appended in non-decreasing
// height order.
func (l *ReceiptLog) firstIndexAtOrAbove(height uint64) int {
	for i := len(l.receipts); i > 0; i-- {
		if l.receipts[i-1].BlockHeight < height {
			return i
		}
	}
	return 0
}

func dropLast(receipts []*drc20.Receipt, target *drc20.Receipt) []*drc20.Receipt {
	for i := len(receipts) - 1; i >= 0; i-- {
		if receipts[i] == target {
			return append(receipts[:i], receipts[i+1:]...)
		}
	}
	return receipts
}
