package postgres

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/drc20"
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/entity"
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/ordinals"
	"github.com/gaze-network/uint128"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/samber/lo"
)

func uint128FromNumeric(src pgtype.Numeric) (*uint128.Uint128, error) {
	if !src.Valid {
		return nil, nil
	}
	bytes, err := src.MarshalJSON()
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal numeric to json")
	}
	result, err := uint128.FromString(string(bytes))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse uint128 from numeric")
	}
	return &result, nil
}

func numericFromUint128(src *uint128.Uint128) (pgtype.Numeric, error) {
	var result pgtype.Numeric
	if src == nil {
		return result, nil
	}
	err := result.UnmarshalJSON([]byte(src.String()))
	if err != nil {
		return pgtype.Numeric{}, errors.Wrap(err, "failed to parse numeric from uint128")
	}
	return result, nil
}

type tickEntryModel struct {
	Tick                string
	OriginalTick        string
	TotalSupply         pgtype.Numeric
	Decimals            int16
	LimitPerMint        pgtype.Numeric
	DeployerPkScript    string
	DeployInscriptionId string
	DeployTxHash        string
	DeployedAt          pgtype.Timestamp
	DeployedAtHeight    int64
	MintedAmount        pgtype.Numeric
	CompletedAt         pgtype.Timestamp
	CompletedAtHeight   pgtype.Int8
}

func mapTickEntryModelToType(src tickEntryModel) (*entity.TickEntry, error) {
	totalSupply, err := uint128FromNumeric(src.TotalSupply)
	if err != nil {
		return nil, errors.Wrap(err, "invalid total supply")
	}
	limitPerMint, err := uint128FromNumeric(src.LimitPerMint)
	if err != nil {
		return nil, errors.Wrap(err, "invalid limit per mint")
	}
	mintedAmount, err := uint128FromNumeric(src.MintedAmount)
	if err != nil {
		return nil, errors.Wrap(err, "invalid minted amount")
	}
	deployInscriptionId, err := ordinals.NewInscriptionIdFromString(src.DeployInscriptionId)
	if err != nil {
		return nil, errors.Wrap(err, "invalid deploy inscription id")
	}
	deployTxHash, err := chainhash.NewHashFromStr(src.DeployTxHash)
	if err != nil {
		return nil, errors.Wrap(err, "invalid deploy tx hash")
	}
	entry := &entity.TickEntry{
		Tick:                drc20.Tick(src.Tick),
		OriginalTick:        src.OriginalTick,
		TotalSupply:         lo.FromPtr(totalSupply),
		LimitPerMint:        lo.FromPtr(limitPerMint),
		Decimals:            uint16(src.Decimals),
		Deployer:            drc20.OwnerId(src.DeployerPkScript),
		DeployInscriptionId: deployInscriptionId,
		DeployTxHash:        *deployTxHash,
		DeployedAt:          src.DeployedAt.Time,
		DeployedAtHeight:    uint64(src.DeployedAtHeight),
		MintedAmount:        lo.FromPtr(mintedAmount),
	}
	if src.CompletedAt.Valid {
		entry.CompletedAt = src.CompletedAt.Time
	}
	if src.CompletedAtHeight.Valid {
		entry.CompletedAtHeight = uint64(src.CompletedAtHeight.Int64)
	}
	return entry, nil
}

type balanceModel struct {
	PkScript            string
	Tick                string
	BlockHeight         int64
	OverallBalance      pgtype.Numeric
	TransferableBalance pgtype.Numeric
}

func mapBalanceModelToType(src balanceModel) (*entity.Balance, error) {
	overall, err := uint128FromNumeric(src.OverallBalance)
	if err != nil {
		return nil, errors.Wrap(err, "invalid overall balance")
	}
	transferable, err := uint128FromNumeric(src.TransferableBalance)
	if err != nil {
		return nil, errors.Wrap(err, "invalid transferable balance")
	}
	return &entity.Balance{
		Owner:               drc20.OwnerId(src.PkScript),
		Tick:                drc20.Tick(src.Tick),
		BlockHeight:         uint64(src.BlockHeight),
		OverallBalance:      lo.FromPtr(overall),
		TransferableBalance: lo.FromPtr(transferable),
	}, nil
}

type inscribedTransferModel struct {
	InscriptionId string
	Tick          string
	OriginalTick  string
	PkScript      string
	Amount        pgtype.Numeric
	BlockHeight   int64
	SpentAtHeight pgtype.Int8
}

func mapInscribedTransferModelToType(src inscribedTransferModel) (*entity.InscribedTransfer, error) {
	inscriptionId, err := ordinals.NewInscriptionIdFromString(src.InscriptionId)
	if err != nil {
		return nil, errors.Wrap(err, "invalid inscription id")
	}
	amount, err := uint128FromNumeric(src.Amount)
	if err != nil {
		return nil, errors.Wrap(err, "invalid amount")
	}
	return &entity.InscribedTransfer{
		InscriptionId: inscriptionId,
		Tick:          drc20.Tick(src.Tick),
		OriginalTick:  src.OriginalTick,
		Owner:         drc20.OwnerId(src.PkScript),
		Amount:        lo.FromPtr(amount),
		BlockHeight:   uint64(src.BlockHeight),
	}, nil
}

type receiptModel struct {
	Id                int64
	InscriptionId     string
	InscriptionNumber int64
	Tick              string
	OriginalTick      string
	Operation         string
	BlockHeight       int64
	TxIndex           int32
	TxHash            string
	OldSatPoint       string
	NewSatPoint       string
	FromPkScript      string
	ToPkScript        string
	Valid             bool
	Error             string
	Amount            pgtype.Numeric
	Supply            pgtype.Numeric
	LimitPerMint      pgtype.Numeric
	Decimals          pgtype.Int2
	Clipped           bool
	Cancelled         bool
	Timestamp         pgtype.Timestamp
}

func mapReceiptModelToType(src receiptModel) (*drc20.Receipt, error) {
	inscriptionId, err := ordinals.NewInscriptionIdFromString(src.InscriptionId)
	if err != nil {
		return nil, errors.Wrap(err, "invalid inscription id")
	}
	txHash, err := chainhash.NewHashFromStr(src.TxHash)
	if err != nil {
		return nil, errors.Wrap(err, "invalid tx hash")
	}
	oldSatPoint, err := ordinals.NewSatPointFromString(src.OldSatPoint)
	if err != nil {
		return nil, errors.Wrap(err, "invalid old satpoint")
	}
	newSatPoint, err := ordinals.NewSatPointFromString(src.NewSatPoint)
	if err != nil {
		return nil, errors.Wrap(err, "invalid new satpoint")
	}
	receipt := &drc20.Receipt{
		OperationMeta: drc20.OperationMeta{
			InscriptionId:     inscriptionId,
			InscriptionNumber: uint64(src.InscriptionNumber),
			OldSatPoint:       oldSatPoint,
			NewSatPoint:       newSatPoint,
			TxHash:            *txHash,
			BlockHeight:       uint64(src.BlockHeight),
			TxIndex:           uint32(src.TxIndex),
			Timestamp:         src.Timestamp.Time,
		},
		Kind:         drc20.OperationKind(src.Operation),
		Tick:         drc20.Tick(src.Tick),
		OriginalTick: src.OriginalTick,
		From:         drc20.OwnerId(src.FromPkScript),
		To:           drc20.OwnerId(src.ToPkScript),
	}
	if !src.Valid {
		receipt.Err = drc20.Error(src.Error)
		return receipt, nil
	}

	amount, err := uint128FromNumeric(src.Amount)
	if err != nil {
		return nil, errors.Wrap(err, "invalid amount")
	}
	switch receipt.Kind {
	case drc20.OperationKindDeploy:
		supply, err := uint128FromNumeric(src.Supply)
		if err != nil {
			return nil, errors.Wrap(err, "invalid supply")
		}
		limitPerMint, err := uint128FromNumeric(src.LimitPerMint)
		if err != nil {
			return nil, errors.Wrap(err, "invalid limit per mint")
		}
		receipt.Event = drc20.DeployEvent{
			Supply:       lo.FromPtr(supply),
			LimitPerMint: lo.FromPtr(limitPerMint),
			Decimals:     uint16(src.Decimals.Int16),
		}
	case drc20.OperationKindMint:
		receipt.Event = drc20.MintEvent{
			Amount:  lo.FromPtr(amount),
			Clipped: src.Clipped,
		}
	case drc20.OperationKindInscribeTransfer:
		receipt.Event = drc20.InscribeTransferEvent{
			Tick:   receipt.Tick,
			Amount: lo.FromPtr(amount),
		}
	case drc20.OperationKindTransfer:
		receipt.Event = drc20.TransferEvent{
			Tick:      receipt.Tick,
			Amount:    lo.FromPtr(amount),
			Cancelled: src.Cancelled,
		}
	default:
		return nil, errors.Errorf("unknown operation kind %q", src.Operation)
	}
	return receipt, nil
}

type receiptParams struct {
	InscriptionId     string
	InscriptionNumber int64
	Tick              string
	OriginalTick      string
	Operation         string
	BlockHeight       int64
	TxIndex           int32
	TxHash            string
	OldSatPoint       string
	NewSatPoint       string
	FromPkScript      string
	ToPkScript        string
	Valid             bool
	Error             string
	Amount            pgtype.Numeric
	Supply            pgtype.Numeric
	LimitPerMint      pgtype.Numeric
	Decimals          pgtype.Int2
	Clipped           bool
	Cancelled         bool
	Timestamp         pgtype.Timestamp
}

func mapReceiptTypeToParams(src *drc20.Receipt) (receiptParams, error) {
	amount := src.Amount()
	amountNumeric, err := numericFromUint128(&amount)
	if err != nil {
		return receiptParams{}, errors.Wrap(err, "invalid amount")
	}
	params := receiptParams{
		InscriptionId:     src.InscriptionId.String(),
		InscriptionNumber: int64(src.InscriptionNumber),
		Tick:              src.Tick.String(),
		OriginalTick:      src.OriginalTick,
		Operation:         src.Kind.String(),
		BlockHeight:       int64(src.BlockHeight),
		TxIndex:           int32(src.TxIndex),
		TxHash:            src.TxHash.String(),
		OldSatPoint:       src.OldSatPoint.String(),
		NewSatPoint:       src.NewSatPoint.String(),
		FromPkScript:      src.From.String(),
		ToPkScript:        src.To.String(),
		Valid:             src.Valid(),
		Error:             string(src.Err),
		Amount:            amountNumeric,
		Timestamp:         pgtype.Timestamp{Time: src.Timestamp.UTC(), Valid: true},
	}
	switch event := src.Event.(type) {
	case drc20.DeployEvent:
		supply, err := numericFromUint128(&event.Supply)
		if err != nil {
			return receiptParams{}, errors.Wrap(err, "invalid supply")
		}
		limitPerMint, err := numericFromUint128(&event.LimitPerMint)
		if err != nil {
			return receiptParams{}, errors.Wrap(err, "invalid limit per mint")
		}
		params.Supply = supply
		params.LimitPerMint = limitPerMint
		params.Decimals = pgtype.Int2{Int16: int16(event.Decimals), Valid: true}
	case drc20.MintEvent:
		params.Clipped = event.Clipped
	case drc20.TransferEvent:
		params.Cancelled = event.Cancelled
	}
	return params, nil
}
