package common

import (
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/wire"
)

type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkTestnet Network = "testnet"
)

var supportedNetworks = map[Network]struct{}{
	NetworkMainnet: {},
	NetworkTestnet: {},
}

// Dogecoin chain parameters. Only the fields the indexer touches (network magic
// and address prefixes) are filled in; btcd has no built-in Dogecoin params.
var (
	DogecoinMainNetParams = chaincfg.Params{
		Name:             "dogecoin-mainnet",
		Net:              wire.BitcoinNet(0xc0c0c0c0),
		PubKeyHashAddrID: 0x1e,
		ScriptHashAddrID: 0x16,
		PrivateKeyID:     0x9e,
	}
	DogecoinTestNetParams = chaincfg.Params{
		Name:             "dogecoin-testnet",
		Net:              wire.BitcoinNet(0xfcc1b7dc),
		PubKeyHashAddrID: 0x71,
		ScriptHashAddrID: 0xc4,
		PrivateKeyID:     0xf1,
	}
)

var chainParams = map[Network]*chaincfg.Params{
	NetworkMainnet: &DogecoinMainNetParams,
	NetworkTestnet: &DogecoinTestNetParams,
}

func (n Network) IsSupported() bool {
	_, ok := supportedNetworks[n]
	return ok
}

func (n Network) ChainParams() *chaincfg.Params {
	return chainParams[n]
}

func (n Network) String() string {
	return string(n)
}
