package usecases

import (
	"context"

	"github.com/CopeeeTang/rednote-mind-mcp/internal/domain"
)

// CheckSessionUseCase probes whether the stored session is still valid
// against the live site.
type CheckSessionUseCase struct {
	session SessionController
}

func NewCheckSessionUseCase(session SessionController) *CheckSessionUseCase {
	return &CheckSessionUseCase{session: session}
}

// Execute reports the current login state. Probe failures degrade to a
// logged-out status with an explanatory message rather than an error:
// callers only need to know whether to run the login flow.
func (uc *CheckSessionUseCase) Execute(ctx context.Context) (domain.LoginStatus, error) {
	return uc.session.Check(ctx)
}
