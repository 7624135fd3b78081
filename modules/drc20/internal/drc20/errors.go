package drc20

// Error is a protocol-level rejection of an operation. Rejections are routine
// outcomes recorded in receipts, not faults: processing continues with the
// next operation. Invariant violations (overflow, inconsistent bookkeeping)
// are NOT represented here; they surface as errs.InternalState and abort the
// batch instead.
type Error string

const (
	ErrDuplicateTicker             Error = "tick has already been deployed"
	ErrInvalidSupply               Error = "max supply must be greater than zero"
	ErrInvalidMintLimit            Error = "limit per mint must be greater than zero and not exceed max supply"
	ErrTickerNotFound              Error = "tick has not been deployed"
	ErrMintLimitExceeded           Error = "mint amount exceeds limit per mint"
	ErrSupplyExhausted             Error = "max supply has been fully minted"
	ErrInsufficientBalance         Error = "insufficient balance"
	ErrTransferInscriptionNotFound Error = "transfer inscription not found"
)

func (e Error) Error() string {
	return string(e)
}
