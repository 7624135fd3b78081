package ledger

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/dogecoin-indexer/common/errs"
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/drc20"
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/entity"
	"github.com/gaze-network/uint128"
)

// Registry holds the deploy parameters and minted supply of every registered
// tick. Only the applier mutates it; the engine reads.
type Registry struct {
	entries map[drc20.Tick]*entity.TickEntry
}

func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[drc20.Tick]*entity.TickEntry),
	}
}

// Get returns a copy of the entry for tick, if registered.
func (r *Registry) Get(tick drc20.Tick) (entity.TickEntry, bool) {
	entry, ok := r.entries[tick]
	if !ok {
		return entity.TickEntry{}, false
	}
	return *entry, true
}

// Restore seeds an entry loaded from persistent storage. Used only before
// forward processing starts.
func (r *Registry) Restore(entry entity.TickEntry) {
	r.entries[entry.Tick] = &entry
}

// Ticks returns the registered ticks in no particular order.
func (r *Registry) Ticks() []drc20.Tick {
	ticks := make([]drc20.Tick, 0, len(r.entries))
	for tick := range r.entries {
		ticks = append(ticks, tick)
	}
	return ticks
}

func (r *Registry) register(entry *entity.TickEntry) error {
	if _, ok := r.entries[entry.Tick]; ok {
		return errors.Wrapf(errs.InternalState, "tick %q already registered", entry.Tick)
	}
	r.entries[entry.Tick] = entry
	return nil
}

func (r *Registry) deregister(tick drc20.Tick) error {
	if _, ok := r.entries[tick]; !ok {
		return errors.Wrapf(errs.InternalState, "cannot deregister unknown tick %q", tick)
	}
	delete(r.entries, tick)
	return nil
}

// recordMint increments the minted supply by amount, which must already be
// clipped to the remaining supply. Marks the entry completed when the supply
// is fully minted.
func (r *Registry) recordMint(tick drc20.Tick, amount uint128.Uint128, height uint64, at time.Time) error {
	entry, ok := r.entries[tick]
	if !ok {
		return errors.Wrapf(errs.InternalState, "cannot record mint for unknown tick %q", tick)
	}
	minted, carry := entry.MintedAmount.AddOverflow(amount)
	if carry {
		return errors.Wrapf(errs.OverflowUint128, "minted amount overflow for tick %q", tick)
	}
	if minted.Cmp(entry.TotalSupply) > 0 {
		return errors.Wrapf(errs.InternalState, "minted amount exceeds total supply for tick %q", tick)
	}
	entry.MintedAmount = minted
	if minted.Cmp(entry.TotalSupply) == 0 {
		entry.CompletedAt = at
		entry.CompletedAtHeight = height
	}
	return nil
}

func (r *Registry) unrecordMint(tick drc20.Tick, amount uint128.Uint128) error {
	entry, ok := r.entries[tick]
	if !ok {
		return errors.Wrapf(errs.InternalState, "cannot unrecord mint for unknown tick %q", tick)
	}
	if entry.MintedAmount.Cmp(amount) < 0 {
		return errors.Wrapf(errs.InternalState, "minted amount underflow for tick %q", tick)
	}
	entry.MintedAmount = entry.MintedAmount.Sub(amount)
	if entry.MintedAmount.Cmp(entry.TotalSupply) < 0 {
		entry.CompletedAt = time.Time{}
		entry.CompletedAtHeight = 0
	}
	return nil
}
