package middleware

import (
	"context"
	"net/http"

	"go-medical-booking/internal/domain/entity"
	"go-medical-booking/internal/gate"
	"go-medical-booking/internal/session"
	"go-medical-booking/pkg/response"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// SnapshotReader exposes the current session state
type SnapshotReader interface {
	Snapshot() session.Snapshot
}

// GateRecorder receives route gate decisions
type GateRecorder interface {
	ObserveGateDecision(route, outcome string)
}

// RouteGate applies gate.Decide to portal routes. It never mutates session state.
type RouteGate struct {
	state   SnapshotReader
	log     *logrus.Logger
	metrics GateRecorder
}

func NewRouteGate(state SnapshotReader, log *logrus.Logger, metrics GateRecorder) *RouteGate {
	return &RouteGate{
		state:   state,
		log:     log,
		metrics: metrics,
	}
}

func (g *RouteGate) Require(roles ...entity.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			snapshot := g.state.Snapshot()
			decision := gate.Decide(snapshot.User, snapshot.Loading, roles...)

			route := r.URL.Path
			if current := mux.CurrentRoute(r); current != nil {
				if tpl, err := current.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			if g.metrics != nil {
				g.metrics.ObserveGateDecision(route, decision.Outcome.String())
			}

			switch decision.Outcome {
			case gate.Loading:
				w.Header().Set("Retry-After", "1")
				response.Error(w, http.StatusServiceUnavailable, "Loading...", nil)
			case gate.Render:
				ctx := context.WithValue(r.Context(), UserViewKey, snapshot.User)
				next.ServeHTTP(w, r.WithContext(ctx))
			default:
				g.log.WithFields(logrus.Fields{
					"route":    route,
					"outcome":  decision.Outcome.String(),
					"location": decision.Location,
				}).Debug("Route gate redirect")
				http.Redirect(w, r, decision.Location, http.StatusFound)
			}
		})
	}
}
