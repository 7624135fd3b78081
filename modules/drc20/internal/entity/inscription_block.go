package entity

import (
	"github.com/gaze-network/dogecoin-indexer/core/types"
)

// InscriptionBlock is one block's worth of inscription transfers, the input
// unit consumed by the indexer.
type InscriptionBlock struct {
	Header    types.BlockHeader
	Transfers []*InscriptionTransfer
}

func (b *InscriptionBlock) BlockHeader() types.BlockHeader {
	return b.Header
}
