package router

import (
	"net/http"
	"strings"

	"github.com/samber/lo"
	"github.com/shandysiswandi/numsphere/internal/pkg/config"
)

// maintenanceRules holds the routes listed in app.maintenance.endpoints. An
// entry ending in "*" blocks every route under that prefix.
type maintenanceRules struct {
	exact    map[string]struct{}
	prefixes []string
}

func newMaintenanceRules(entries []string) maintenanceRules {
	prefixes, exact := lo.FilterReject(entries, func(e string, _ int) bool {
		return strings.HasSuffix(e, "*")
	})

	return maintenanceRules{
		exact: lo.Keyify(exact),
		prefixes: lo.Map(prefixes, func(e string, _ int) string {
			return strings.TrimSuffix(e, "*")
		}),
	}
}

func (m maintenanceRules) blocks(route string) bool {
	if route == "/health" {
		return false
	}
	if _, ok := m.exact[route]; ok {
		return true
	}
	return lo.SomeBy(m.prefixes, func(p string) bool {
		return strings.HasPrefix(route, p)
	})
}

func middlewareMaintenance(cfg config.Config) Middleware {
	var rules maintenanceRules
	if cfg != nil {
		rules = newMaintenanceRules(cfg.GetArray("app.maintenance.endpoints"))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rules.blocks(matchedRoutePath(r)) {
				writeJSON(w, errorResponse{Message: "service is under maintenance"}, http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
