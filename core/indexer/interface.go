package indexer

import (
	"context"
	"time"

	"github.com/gaze-network/dogecoin-indexer/core/types"
)

// Input is one unit of data fetched from a datasource, anchored to a block.
type Input interface {
	BlockHeader() types.BlockHeader
}

// Processor consumes ordered inputs and maintains derived state for one module.
type Processor[T Input] interface {
	Name() string

	// VerifyStates checks that persisted state is compatible with this build
	// (schema version, network) before the first Process call.
	VerifyStates(ctx context.Context) error

	// Process processes the input data and indexes it.
	Process(ctx context.Context, inputs []T) error

	// CurrentBlock returns the latest indexed block header.
	CurrentBlock(ctx context.Context) (types.BlockHeader, error)

	// GetIndexedBlock returns the indexed block header at the given height,
	// used to locate the fork point during a chain reorganization.
	GetIndexedBlock(ctx context.Context, height int64) (types.BlockHeader, error)

	// RevertData reverts indexed data from the specified block height for re-indexing.
	RevertData(ctx context.Context, from int64) error

	Shutdown(ctx context.Context) error
}

// IndexerWorker is a runnable indexing unit managed by the run command.
type IndexerWorker interface {
	Run(ctx context.Context) error
	ShutdownWithTimeout(timeout time.Duration) error
}
