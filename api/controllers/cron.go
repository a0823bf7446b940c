package controllers

import (
	"net/http"

	"github.com/bloomstack/bloomstack-backend/api/responses"
	"github.com/bloomstack/bloomstack-backend/internal/cron"
	pkgerrors "github.com/bloomstack/bloomstack-backend/pkg/errors"
	"github.com/bloomstack/bloomstack-backend/pkg/logger"
)

// CronCheckSubscriptions runs one locked pass of the registered cron jobs
// on demand. An external scheduler hits this when no worker is deployed.
func CronCheckSubscriptions(svc *cron.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cron service unavailable"))
			return
		}

		if err := svc.RunCycle(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "run cron cycle"))
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "completed"})
	}
}
