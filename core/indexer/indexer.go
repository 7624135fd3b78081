package indexer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/dogecoin-indexer/common/errs"
	"github.com/gaze-network/dogecoin-indexer/core/datasources"
	"github.com/gaze-network/dogecoin-indexer/core/types"
	"github.com/gaze-network/dogecoin-indexer/pkg/logger"
	"github.com/gaze-network/dogecoin-indexer/pkg/logger/slogx"
)

const (
	// maxReorgLookBack bounds the fork-point search during a reorg.
	maxReorgLookBack = 1000

	// pollingInterval is the default polling interval for the indexer polling worker
	pollingInterval = 15 * time.Second
)

// Indexer is a generic worker that fetches inputs from a datasource and feeds
// them to a processor, reverting processed data when the chain reorganizes.
type Indexer[T Input] struct {
	Processor    Processor[T]
	Datasource   datasources.Datasource[T]
	currentBlock types.BlockHeader

	quitOnce sync.Once
	quit     chan struct{}
	done     chan struct{}
}

var _ IndexerWorker = (*Indexer[Input])(nil)

// New create new generic indexer
func New[T Input](processor Processor[T], datasource datasources.Datasource[T]) *Indexer[T] {
	return &Indexer[T]{
		Processor:  processor,
		Datasource: datasource,

		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
}

func (i *Indexer[T]) Shutdown() error {
	return i.ShutdownWithContext(context.Background())
}

func (i *Indexer[T]) ShutdownWithTimeout(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return i.ShutdownWithContext(ctx)
}

func (i *Indexer[T]) ShutdownWithContext(ctx context.Context) (err error) {
	i.quitOnce.Do(func() {
		close(i.quit)
		select {
		case <-i.done:
		case <-ctx.Done():
			err = errors.Wrap(ctx.Err(), "indexer shutdown context canceled")
		}
	})
	return
}

func (i *Indexer[T]) Run(ctx context.Context) (err error) {
	defer close(i.done)

	ctx = logger.WithContext(ctx,
		slog.String("package", "indexer"),
		slog.String("processor", i.Processor.Name()),
		slog.String("datasource", i.Datasource.Name()),
	)

	if err := i.Processor.VerifyStates(ctx); err != nil {
		return errors.Wrap(err, "processor state verification failed")
	}

	// set to -1 to start from genesis block
	i.currentBlock, err = i.Processor.CurrentBlock(ctx)
	if err != nil {
		if !errors.Is(err, errs.NotFound) {
			return errors.Wrap(err, "can't init state, failed to get indexer current block")
		}
		i.currentBlock.Height = -1
	}

	ticker := time.NewTicker(pollingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-i.quit:
			logger.InfoContext(ctx, "Got quit signal, stopping indexer")
			if err := i.Processor.Shutdown(ctx); err != nil {
				logger.ErrorContext(ctx, "Failed to shutdown processor", slogx.Error(err))
				return errors.Wrap(err, "processor shutdown failed")
			}
			return nil
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := i.process(ctx); err != nil {
				logger.ErrorContext(ctx, "Indexer failed while processing", slogx.Error(err))
				return errors.Wrap(err, "process failed")
			}
			logger.DebugContext(ctx, "Waiting for next polling interval")
		}
	}
}

func (i *Indexer[T]) process(ctx context.Context) error {
	from := i.currentBlock.Height + 1

	ch := make(chan []T)
	sub, err := i.Datasource.FetchAsync(ctx, from, -1, ch)
	if err != nil {
		return errors.Wrap(err, "failed to fetch input data")
	}
	defer sub.Unsubscribe()

	for {
		select {
		case <-i.quit:
			return nil
		case inputs := <-ch:
			if len(inputs) == 0 {
				continue
			}

			startAt := time.Now()
			first := inputs[0].BlockHeader()
			last := inputs[len(inputs)-1].BlockHeader()
			ctx := logger.WithContext(ctx,
				slogx.Int64("from", first.Height),
				slogx.Int64("to", last.Height),
			)

			// reorg check against the last indexed block
			if i.currentBlock.Height >= 0 && !first.PrevBlock.IsEqual(&i.currentBlock.Hash) {
				if err := i.revertToForkPoint(ctx); err != nil {
					return errors.WithStack(err)
				}
				// end this round, fetch again from the fork point
				return nil
			}

			// inputs must be continuous and internally linked
			for n := 1; n < len(inputs); n++ {
				header, prev := inputs[n].BlockHeader(), inputs[n-1].BlockHeader()
				if header.Height != prev.Height+1 {
					return errors.Wrapf(errs.InternalState, "input is not continuous, height %d follows %d", header.Height, prev.Height)
				}
				if !header.PrevBlock.IsEqual(&prev.Hash) {
					logger.WarnContext(ctx, "Chain reorganization occurred in the middle of batch fetching, retrying")
					return nil
				}
			}

			logger.InfoContext(ctx, "Processing inputs", slog.Int("total_inputs", len(inputs)))
			if err := i.Processor.Process(ctx, inputs); err != nil {
				return errors.WithStack(err)
			}

			i.currentBlock = last
			logger.InfoContext(ctx, "Processed inputs successfully",
				slogx.String("event", "processed_inputs"),
				slogx.Int64("current_block", i.currentBlock.Height),
				slogx.Duration("duration", time.Since(startAt)),
			)
		case <-sub.Done():
			if err := ctx.Err(); err != nil {
				return errors.Wrap(err, "context done")
			}
			return nil
		case err := <-sub.Err():
			if err != nil {
				return errors.Wrap(err, "got error while fetching async")
			}
		case <-ctx.Done():
			return errors.WithStack(ctx.Err())
		}
	}
}

// revertToForkPoint walks back from the current block until the indexed chain
// and the remote chain agree, then reverts all data above that height.
func (i *Indexer[T]) revertToForkPoint(ctx context.Context) error {
	logger.WarnContext(ctx, "Detected chain reorganization. Searching for fork point...",
		slogx.String("event", "reorg_detected"),
		slogx.Stringer("current_hash", i.currentBlock.Hash),
	)

	start := time.Now()
	forkPoint := types.BlockHeader{Height: -1}
	targetHeight := i.currentBlock.Height - 1
	for n := 0; n < maxReorgLookBack && targetHeight >= 0; n++ {
		indexedHeader, err := i.Processor.GetIndexedBlock(ctx, targetHeight)
		if err != nil {
			return errors.Wrapf(err, "failed to get indexed block, height: %d", targetHeight)
		}
		remoteHeader, err := i.Datasource.GetBlockHeader(ctx, targetHeight)
		if err != nil {
			return errors.Wrapf(err, "failed to get remote block header, height: %d", targetHeight)
		}
		if indexedHeader.Hash.IsEqual(&remoteHeader.Hash) {
			forkPoint = remoteHeader
			break
		}
		targetHeight--
	}
	if forkPoint.Height < 0 {
		return errors.Wrap(errs.SomethingWentWrong, "reorg look back limit reached")
	}

	logger.InfoContext(ctx, "Found reorg fork point, starting to revert data...",
		slogx.String("event", "reorg_forkpoint"),
		slogx.Int64("since", forkPoint.Height+1),
		slogx.Duration("search_duration", time.Since(start)),
	)

	if err := i.Processor.RevertData(ctx, forkPoint.Height+1); err != nil {
		return errors.Wrap(err, "failed to revert data")
	}

	i.currentBlock = forkPoint
	logger.InfoContext(ctx, "Fixing chain reorganization completed",
		slogx.Int64("current_block", i.currentBlock.Height),
	)
	return nil
}
