package usecase

import (
	"github.com/gaze-network/dogecoin-indexer/modules/drc20/internal/datagateway"
)

type Usecase struct {
	drc20Dg datagateway.DRC20DataGateway
}

func New(drc20Dg datagateway.DRC20DataGateway) *Usecase {
	return &Usecase{
		drc20Dg: drc20Dg,
	}
}
