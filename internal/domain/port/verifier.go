package port

import (
	"context"
	"net/http"

	"custodia.io/internal/domain/entity"
)

// CallVerifier authenticates an inbound HTTP call and returns the
// account that signed it. The verified account is authoritative: it is
// the deposit sender and the withdrawal caller.
type CallVerifier interface {
	Verify(ctx context.Context, r *http.Request, body []byte) (entity.Account, error)
}
