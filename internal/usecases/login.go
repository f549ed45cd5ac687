package usecases

import (
	"context"
	"time"

	"github.com/CopeeeTang/rednote-mind-mcp/internal/domain"
)

// DefaultLoginTimeout bounds how long the interactive login waits for
// the user to scan the QR code.
const DefaultLoginTimeout = 5 * time.Minute

// LoginUseCase runs the interactive login flow: open the site, wait for
// the user to authenticate in the visible browser window, then persist
// the session.
type LoginUseCase struct {
	session SessionController
}

func NewLoginUseCase(session SessionController) *LoginUseCase {
	return &LoginUseCase{session: session}
}

// Execute waits up to timeout for authentication. A timeout is reported
// in the result, not as an error; partial outcomes (authenticated but
// cookies unpersisted, identity unresolved) surface as warnings.
func (uc *LoginUseCase) Execute(ctx context.Context, timeout time.Duration) (domain.LoginResult, error) {
	if timeout <= 0 {
		timeout = DefaultLoginTimeout
	}
	return uc.session.Login(ctx, timeout)
}
