package http

import (
	"net/http"

	"go-medical-booking/internal/delivery/http/handler"
	"go-medical-booking/internal/delivery/http/middleware"
	"go-medical-booking/internal/domain/entity"

	"github.com/gorilla/mux"
)

// PortalRouter serves the client process: public session routes plus the
// role dashboards behind the route gate
type PortalRouter struct {
	router         *mux.Router
	portalHandler  *handler.PortalHandler
	routeGate      *middleware.RouteGate
	corsMiddleware *middleware.CORSMiddleware
	metricsHandler http.Handler
}

func NewPortalRouter(
	portalHandler *handler.PortalHandler,
	routeGate *middleware.RouteGate,
	corsMiddleware *middleware.CORSMiddleware,
	metricsHandler http.Handler,
) *PortalRouter {
	return &PortalRouter{
		router:         mux.NewRouter(),
		portalHandler:  portalHandler,
		routeGate:      routeGate,
		corsMiddleware: corsMiddleware,
		metricsHandler: metricsHandler,
	}
}

func (r *PortalRouter) Setup() *mux.Router {
	if r.metricsHandler != nil {
		r.router.Handle("/metrics", r.metricsHandler).Methods(http.MethodGet)
	}
	r.router.HandleFunc("/health", healthCheck).Methods(http.MethodGet)

	// Public
	r.router.HandleFunc("/login", r.portalHandler.LoginPage).Methods(http.MethodGet)
	r.router.HandleFunc("/login", r.portalHandler.Login).Methods(http.MethodPost)
	r.router.HandleFunc("/register", r.portalHandler.Register).Methods(http.MethodPost)
	r.router.HandleFunc("/logout", r.portalHandler.Logout).Methods(http.MethodPost)
	r.router.HandleFunc("/session", r.portalHandler.Session).Methods(http.MethodGet)
	r.router.HandleFunc("/notifications", r.portalHandler.Notifications).Methods(http.MethodGet)
	r.router.HandleFunc("/profile/refresh", r.portalHandler.RefreshProfile).Methods(http.MethodPost)

	// Role dashboards
	for _, role := range []entity.Role{entity.RolePatient, entity.RoleDoctor, entity.RoleAdmin} {
		home := r.router.PathPrefix(role.HomePath()).Subrouter()
		home.Use(r.routeGate.Require(role))
		home.HandleFunc("", r.portalHandler.Dashboard).Methods(http.MethodGet)
		home.HandleFunc("/profile", r.portalHandler.Profile).Methods(http.MethodGet)
		home.HandleFunc("/profile", r.portalHandler.UpdateProfile).Methods(http.MethodPut)

		if role == entity.RoleAdmin {
			home.HandleFunc("/doctor-approvals", r.portalHandler.DoctorApprovals).Methods(http.MethodGet)
			home.HandleFunc("/doctor-approvals/{id}/approve", r.portalHandler.ApproveDoctor).Methods(http.MethodPost)
			home.HandleFunc("/doctor-approvals/{id}/reject", r.portalHandler.RejectDoctor).Methods(http.MethodPost)
		}
	}

	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}
