package datasources

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/dogecoin-indexer/common/errs"
	"github.com/gaze-network/dogecoin-indexer/core/datasources"
	"github.com/gaze-network/dogecoin-indexer/core/types"
	"github.com/gaze-network/dogecoin-indexer/internal/subscription"
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/entity"
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/ordinals"
	"github.com/gaze-network/dogecoin-indexer/pkg/logger"
	"github.com/gaze-network/dogecoin-indexer/pkg/logger/slogx"
	"github.com/samber/lo"
)

const (
	// fetchBatchSize is the number of blocks sent per subscription message.
	fetchBatchSize = 100

	ordHTTPRequestTimeout = 60 * time.Second
)

// Make sure to implement the Datasource interface
var _ datasources.Datasource[*entity.InscriptionBlock] = (*OrdHTTPDatasource)(nil)

// OrdHTTPDatasource fetches inscription transfers from an external ordinal
// tracker over HTTP. The tracker resolves inscription envelopes and satpoint
// movements; this indexer applies token semantics on top of them.
type OrdHTTPDatasource struct {
	client  *http.Client
	baseURL string
}

func NewOrdHTTP(baseURL string) *OrdHTTPDatasource {
	return &OrdHTTPDatasource{
		client: &http.Client{
			Timeout: ordHTTPRequestTimeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (OrdHTTPDatasource) Name() string {
	return "ord-http"
}

// Fetch polling inscription blocks from the ordinal tracker
//
//   - from: block height to start fetching, if -1, it will start from genesis block
//   - to: block height to stop fetching, if -1, it will fetch until the latest block
func (d *OrdHTTPDatasource) Fetch(ctx context.Context, from, to int64) ([]*entity.InscriptionBlock, error) {
	ch := make(chan []*entity.InscriptionBlock)
	subscription, err := d.FetchAsync(ctx, from, to, ch)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer subscription.Unsubscribe()

	blocks := make([]*entity.InscriptionBlock, 0)
	for {
		select {
		case b, ok := <-ch:
			if !ok {
				return blocks, nil
			}
			blocks = append(blocks, b...)
		case <-subscription.Done():
			if err := ctx.Err(); err != nil {
				return nil, errors.Wrap(err, "context done")
			}
			return blocks, nil
		case err := <-subscription.Err():
			if err != nil {
				return nil, errors.Wrap(err, "got error while fetch async")
			}
			return blocks, nil
		case <-ctx.Done():
			return nil, errors.Wrap(ctx.Err(), "context done")
		}
	}
}

// FetchAsync polling inscription blocks from the ordinal tracker asynchronously (non-blocking)
//
//   - from: block height to start fetching, if -1, it will start from genesis block
//   - to: block height to stop fetching, if -1, it will fetch until the latest block
func (d *OrdHTTPDatasource) FetchAsync(ctx context.Context, from, to int64, ch chan<- []*entity.InscriptionBlock) (*subscription.ClientSubscription[[]*entity.InscriptionBlock], error) {
	ctx = logger.WithContext(ctx,
		slogx.String("package", "datasources"),
		slogx.String("datasource", d.Name()),
	)

	from, to, skip, err := d.prepareRange(ctx, from, to)
	if err != nil {
		return nil, errors.Wrap(err, "failed to prepare fetch range")
	}

	sub := subscription.New(ch)
	if skip {
		if err := sub.UnsubscribeWithContext(ctx); err != nil {
			return nil, errors.Wrap(err, "failed to unsubscribe")
		}
		return sub.Client(), nil
	}

	go func() {
		for start := from; start <= to; start += fetchBatchSize {
			end := start + fetchBatchSize - 1
			if end > to {
				end = to
			}

			blocks, err := d.getBlocks(ctx, start, end)
			if err != nil {
				logger.ErrorContext(ctx, "Failed to fetch inscription blocks from ordinal tracker",
					slogx.Int64("from", start),
					slogx.Int64("to", end),
					slogx.Error(err),
				)
				if err := sub.SendError(ctx, errors.WithStack(err)); err != nil {
					logger.WarnContext(ctx, "Failed to send datasource error to subscription client", slogx.Error(err))
				}
				return
			}

			if err := sub.Send(ctx, blocks); err != nil {
				if sub.IsClosed() {
					return
				}
				logger.WarnContext(ctx, "Failed to send inscription blocks to subscription client",
					slogx.Int64("start", start),
					slogx.Int64("end", end),
					slogx.Error(err),
				)
				return
			}
		}
	}()

	return sub.Client(), nil
}

func (d *OrdHTTPDatasource) GetBlockHeader(ctx context.Context, height int64) (types.BlockHeader, error) {
	var resp ordBlockHeader
	if err := d.get(ctx, fmt.Sprintf("/v1/blocks/%d", height), &resp); err != nil {
		return types.BlockHeader{}, errors.Wrapf(err, "failed to get block header, height: %d", height)
	}
	header, err := resp.ToBlockHeader()
	if err != nil {
		return types.BlockHeader{}, errors.Wrap(err, "can't convert ord block header")
	}
	return header, nil
}

func (d *OrdHTTPDatasource) prepareRange(ctx context.Context, fromHeight, toHeight int64) (start, end int64, skip bool, err error) {
	start = fromHeight
	end = toHeight

	// get current block height known to the ordinal tracker
	var latest ordBlockHeader
	if err := d.get(ctx, "/v1/blocks/latest", &latest); err != nil {
		return -1, -1, false, errors.Wrap(err, "failed to get latest block")
	}
	latestBlockHeight := latest.Height

	// set start to genesis block height
	if start < 0 {
		start = 0
	}

	// set end to current block height if
	// - end is -1
	// - end is greater than current block height
	if end < 0 || end > latestBlockHeight {
		end = latestBlockHeight
	}

	// if start is greater than end, skip this round
	if start > end {
		return -1, -1, true, nil
	}

	return start, end, false, nil
}

func (d *OrdHTTPDatasource) getBlocks(ctx context.Context, from, to int64) ([]*entity.InscriptionBlock, error) {
	var resp struct {
		Blocks []ordBlock `json:"blocks"`
	}
	query := url.Values{
		"fromHeight": []string{fmt.Sprint(from)},
		"toHeight":   []string{fmt.Sprint(to)},
	}
	if err := d.get(ctx, "/v1/transfers?"+query.Encode(), &resp); err != nil {
		return nil, errors.Wrapf(err, "failed to get transfers, from: %d, to: %d", from, to)
	}
	if expected := int(to - from + 1); len(resp.Blocks) != expected {
		return nil, errors.Wrapf(errs.InternalState, "ordinal tracker returned %d blocks, expected %d", len(resp.Blocks), expected)
	}

	blocks := make([]*entity.InscriptionBlock, 0, len(resp.Blocks))
	for _, rawBlock := range resp.Blocks {
		header, err := rawBlock.Header.ToBlockHeader()
		if err != nil {
			return nil, errors.Wrapf(err, "can't convert ord block header, height: %d", rawBlock.Header.Height)
		}
		transfers := make([]*entity.InscriptionTransfer, 0, len(rawBlock.Transfers))
		for _, rawTransfer := range rawBlock.Transfers {
			transfer, err := rawTransfer.ToInscriptionTransfer(header)
			if err != nil {
				return nil, errors.Wrapf(err, "can't convert ord transfer, inscription id: %s", rawTransfer.InscriptionId)
			}
			transfers = append(transfers, transfer)
		}
		blocks = append(blocks, &entity.InscriptionBlock{
			Header:    header,
			Transfers: transfers,
		})
	}
	return blocks, nil
}

func (d *OrdHTTPDatasource) get(ctx context.Context, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+path, nil)
	if err != nil {
		return errors.Wrap(err, "can't create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return errors.Wrapf(errs.NotFound, "ordinal tracker returned 404 for %q", path)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return errors.Wrapf(errs.SomethingWentWrong, "ordinal tracker returned status %d for %q: %s", resp.StatusCode, path, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return errors.Wrap(err, "can't decode response body")
	}
	return nil
}

type ordBlockHeader struct {
	Hash          string `json:"hash"`
	Height        int64  `json:"height"`
	Version       int32  `json:"version"`
	PrevBlockHash string `json:"prevBlockHash"`
	MerkleRoot    string `json:"merkleRoot"`
	Timestamp     int64  `json:"timestamp"`
	Bits          uint32 `json:"bits"`
	Nonce         uint32 `json:"nonce"`
}

func (h ordBlockHeader) ToBlockHeader() (types.BlockHeader, error) {
	hash, err := chainhash.NewHashFromStr(h.Hash)
	if err != nil {
		return types.BlockHeader{}, errors.Wrap(err, "can't convert hash")
	}
	prevBlock, err := chainhash.NewHashFromStr(h.PrevBlockHash)
	if err != nil {
		return types.BlockHeader{}, errors.Wrap(err, "can't convert previous block hash")
	}
	merkleRoot, err := chainhash.NewHashFromStr(h.MerkleRoot)
	if err != nil {
		return types.BlockHeader{}, errors.Wrap(err, "can't convert merkle root")
	}
	return types.BlockHeader{
		Hash:       *hash,
		Height:     h.Height,
		Version:    h.Version,
		PrevBlock:  *prevBlock,
		MerkleRoot: *merkleRoot,
		Timestamp:  time.Unix(h.Timestamp, 0).UTC(),
		Bits:       h.Bits,
		Nonce:      h.Nonce,
	}, nil
}

type ordBlock struct {
	Header    ordBlockHeader `json:"header"`
	Transfers []ordTransfer  `json:"transfers"`
}

type ordTransfer struct {
	InscriptionId     string `json:"inscriptionId"`
	InscriptionNumber uint64 `json:"inscriptionNumber"`
	TxIndex           uint32 `json:"txIndex"`
	TxHash            string `json:"txHash"`
	Content           []byte `json:"content,omitempty"`
	FromPkScript      string `json:"fromPkScript"`
	FromInputIndex    uint32 `json:"fromInputIndex"`
	OldSatPoint       string `json:"oldSatPoint,omitempty"`
	NewSatPoint       string `json:"newSatPoint,omitempty"`
	NewPkScript       string `json:"newPkScript"`
	NewOutputValue    uint64 `json:"newOutputValue"`
	SentAsFee         bool   `json:"sentAsFee"`
	TransferCount     uint32 `json:"transferCount"`
}

func (t ordTransfer) ToInscriptionTransfer(header types.BlockHeader) (*entity.InscriptionTransfer, error) {
	inscriptionId, err := ordinals.NewInscriptionIdFromString(t.InscriptionId)
	if err != nil {
		return nil, errors.Wrap(err, "can't parse inscription id")
	}
	txHash, err := chainhash.NewHashFromStr(t.TxHash)
	if err != nil {
		return nil, errors.Wrap(err, "can't parse tx hash")
	}
	fromPkScript, err := hex.DecodeString(t.FromPkScript)
	if err != nil {
		return nil, errors.Wrap(err, "can't decode from pkscript")
	}
	newPkScript, err := hex.DecodeString(t.NewPkScript)
	if err != nil {
		return nil, errors.Wrap(err, "can't decode new pkscript")
	}
	var oldSatPoint, newSatPoint ordinals.SatPoint
	if t.OldSatPoint != "" {
		oldSatPoint, err = ordinals.NewSatPointFromString(t.OldSatPoint)
		if err != nil {
			return nil, errors.Wrap(err, "can't parse old satpoint")
		}
	}
	if t.NewSatPoint != "" {
		newSatPoint, err = ordinals.NewSatPointFromString(t.NewSatPoint)
		if err != nil {
			return nil, errors.Wrap(err, "can't parse new satpoint")
		}
	}
	return &entity.InscriptionTransfer{
		InscriptionId:     inscriptionId,
		InscriptionNumber: t.InscriptionNumber,
		BlockHeight:       uint64(header.Height),
		TxIndex:           t.TxIndex,
		TxHash:            lo.FromPtr(txHash),
		Content:           t.Content,
		FromPkScript:      fromPkScript,
		FromInputIndex:    t.FromInputIndex,
		OldSatPoint:       oldSatPoint,
		NewSatPoint:       newSatPoint,
		NewPkScript:       newPkScript,
		NewOutputValue:    t.NewOutputValue,
		SentAsFee:         t.SentAsFee,
		TransferCount:     t.TransferCount,
		Timestamp:         header.Timestamp,
	}, nil
}
