package drc20

import (
	"strings"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	drc20 "github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/drc20"
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/ordinals"
	"github.com/gaze-network/uint128"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetReceiptString(t *testing.T) {
	tick, err := drc20.NewTick("dogi")
	require.NoError(t, err)
	inscriptionId := ordinals.NewInscriptionId(chainhash.Hash{}, 0)
	inscriptionIdStr := strings.Repeat("0", 64) + "i0"
	alice := drc20.NewOwnerIdFromPkScript([]byte{0x51})
	bob := drc20.NewOwnerIdFromPkScript([]byte{0x52})
	meta := drc20.OperationMeta{InscriptionId: inscriptionId}

	tests := []struct {
		name     string
		receipt  *drc20.Receipt
		decimals uint16
		expected string
	}{
		{
			name: "deploy",
			receipt: &drc20.Receipt{
				OperationMeta: meta,
				Kind:          drc20.OperationKindDeploy,
				Tick:          tick,
				OriginalTick:  "DOGI",
				From:          alice,
				Event: drc20.DeployEvent{
					Supply:       uint128.From64(2_100_000_000_000_000),
					LimitPerMint: uint128.From64(100_000_000_000),
					Decimals:     8,
				},
			},
			decimals: 8,
			expected: "deploy;" + inscriptionIdStr + ";51;dogi;DOGI;21000000.00000000;8;1000.00000000",
		},
		{
			name: "mint",
			receipt: &drc20.Receipt{
				OperationMeta: meta,
				Kind:          drc20.OperationKindMint,
				Tick:          tick,
				OriginalTick:  "DOGI",
				To:            bob,
				Event: drc20.MintEvent{
					Amount: uint128.From64(100_000_000),
				},
			},
			decimals: 8,
			expected: "mint;" + inscriptionIdStr + ";52;dogi;DOGI;1.00000000;False",
		},
		{
			name: "clipped mint",
			receipt: &drc20.Receipt{
				OperationMeta: meta,
				Kind:          drc20.OperationKindMint,
				Tick:          tick,
				OriginalTick:  "DOGI",
				To:            bob,
				Event: drc20.MintEvent{
					Amount:  uint128.From64(50_000_000),
					Clipped: true,
				},
			},
			decimals: 8,
			expected: "mint;" + inscriptionIdStr + ";52;dogi;DOGI;0.50000000;True",
		},
		{
			name: "inscribe transfer",
			receipt: &drc20.Receipt{
				OperationMeta: meta,
				Kind:          drc20.OperationKindInscribeTransfer,
				Tick:          tick,
				OriginalTick:  "DOGI",
				From:          alice,
				Event: drc20.InscribeTransferEvent{
					Tick:   tick,
					Amount: uint128.From64(25_000_000),
				},
			},
			decimals: 8,
			expected: "inscribe-transfer;" + inscriptionIdStr + ";51;dogi;DOGI;0.25000000",
		},
		{
			name: "transfer",
			receipt: &drc20.Receipt{
				OperationMeta: meta,
				Kind:          drc20.OperationKindTransfer,
				Tick:          tick,
				OriginalTick:  "DOGI",
				From:          alice,
				To:            bob,
				Event: drc20.TransferEvent{
					Tick:   tick,
					Amount: uint128.From64(25_000_000),
				},
			},
			decimals: 8,
			expected: "transfer;" + inscriptionIdStr + ";51;52;dogi;DOGI;0.25000000",
		},
		{
			name: "cancelled transfer omits receiver",
			receipt: &drc20.Receipt{
				OperationMeta: meta,
				Kind:          drc20.OperationKindTransfer,
				Tick:          tick,
				OriginalTick:  "DOGI",
				From:          alice,
				To:            alice,
				Event: drc20.TransferEvent{
					Tick:      tick,
					Amount:    uint128.From64(25_000_000),
					Cancelled: true,
				},
			},
			decimals: 8,
			expected: "transfer;" + inscriptionIdStr + ";51;;dogi;DOGI;0.25000000",
		},
		{
			name: "zero decimals",
			receipt: &drc20.Receipt{
				OperationMeta: meta,
				Kind:          drc20.OperationKindMint,
				Tick:          tick,
				OriginalTick:  "DOGI",
				To:            bob,
				Event: drc20.MintEvent{
					Amount: uint128.From64(42),
				},
			},
			decimals: 0,
			expected: "mint;" + inscriptionIdStr + ";52;dogi;DOGI;42;False",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, getReceiptString(tt.receipt, tt.decimals))
		})
	}
}
