package agents

import (
	"context"
	"fmt"

	"github.com/codearcheologist/codearch-backend/internal/migration/domain"
	"github.com/codearcheologist/codearch-backend/internal/migration/fallback"
)

const opDesign = "architect.design"

// Designer turns an audit report into a modernization blueprint.
type Designer struct {
	rt *Runtime
}

func NewDesigner(rt *Runtime) *Designer {
	return &Designer{rt: rt}
}

// Design never fails; without a usable model answer it returns the
// simulated blueprint.
func (d *Designer) Design(ctx context.Context, audit *domain.AuditReport) *domain.Blueprint {
	var o outcome[*domain.Blueprint]

	auditJSON, err := indentJSON(audit)
	if err != nil {
		o = failed[*domain.Blueprint](FailureInvalid, fmt.Errorf("encode audit report: %w", err))
	} else {
		o = request(ctx, d.rt, opDesign, designPrompt(auditJSON), designerParams,
			func(bp *domain.Blueprint) error {
				if bp.ProjectName == "" && audit != nil {
					bp.ProjectName = audit.ProjectName
				}
				bp.Mode = domain.ModeAIPowered
				return nil
			})
	}
	logFallback(ctx, opDesign, o)

	return settle(o, func() *domain.Blueprint {
		return fallback.Blueprint(audit)
	})
}
