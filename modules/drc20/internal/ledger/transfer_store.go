package ledger

import (
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/dogecoin-indexer/common/errs"
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/entity"
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/ordinals"
)

// TransferStore tracks revealed transfer inscriptions whose locked amount has
// not been spent yet, keyed by inscription id.
type TransferStore struct {
	transfers map[ordinals.InscriptionId]*entity.InscribedTransfer
}

func NewTransferStore() *TransferStore {
	return &TransferStore{
		transfers: make(map[ordinals.InscriptionId]*entity.InscribedTransfer),
	}
}

func (s *TransferStore) Get(id ordinals.InscriptionId) (entity.InscribedTransfer, bool) {
	t, ok := s.transfers[id]
	if !ok {
		return entity.InscribedTransfer{}, false
	}
	return *t, true
}

// Restore seeds a pending transfer loaded from persistent storage.
func (s *TransferStore) Restore(transfer entity.InscribedTransfer) {
	s.transfers[transfer.InscriptionId] = &transfer
}

func (s *TransferStore) put(transfer *entity.InscribedTransfer) error {
	if _, ok := s.transfers[transfer.InscriptionId]; ok {
		return errors.Wrapf(errs.InternalState, "transfer inscription %s already recorded", transfer.InscriptionId)
	}
	s.transfers[transfer.InscriptionId] = transfer
	return nil
}

func (s *TransferStore) remove(id ordinals.InscriptionId) error {
	if _, ok := s.transfers[id]; !ok {
		return errors.Wrapf(errs.InternalState, "transfer inscription %s not recorded", id)
	}
	delete(s.transfers, id)
	return nil
}
