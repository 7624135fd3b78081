package types

import (
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

type BlockHeader struct {
	Hash       chainhash.Hash
	Height     int64
	Version    int32
	PrevBlock  chainhash.Hash
	MerkleRoot chainhash.Hash
	Timestamp  time.Time
	Bits       uint32
	Nonce      uint32
}

// ParseBlockHeader parses a wire block header at the given height.
// Dogecoin AuxPoW headers share the 80-byte core layout, so the btcd wire
// types apply unchanged.
func ParseBlockHeader(src *wire.BlockHeader, height int64) BlockHeader {
	return BlockHeader{
		Hash:       src.BlockHash(),
		Height:     height,
		Version:    src.Version,
		PrevBlock:  src.PrevBlock,
		MerkleRoot: src.MerkleRoot,
		Timestamp:  src.Timestamp,
		Bits:       src.Bits,
		Nonce:      src.Nonce,
	}
}
