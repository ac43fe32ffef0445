package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"courier-track/internal/domain/courier"
	"courier-track/internal/domain/parcel"
	"courier-track/internal/general/jwt"
	"courier-track/internal/general/logger"
	"courier-track/internal/general/websocket"
	"courier-track/internal/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// DispatchHTTPHandler adapts HTTP requests to the DispatchService.
type DispatchHTTPHandler struct {
	svc       ports.DispatchService
	logger    *logger.Logger
	auth      *jwt.Manager
	websocket *websocket.Handler
}

// NewDispatchHTTPHandler wires an HTTP handler around the DispatchService.
func NewDispatchHTTPHandler(
	svc ports.DispatchService,
	logger *logger.Logger,
	auth *jwt.Manager,
	ws *websocket.Handler,
) *DispatchHTTPHandler {
	return &DispatchHTTPHandler{svc: svc, logger: logger, auth: auth, websocket: ws}
}

// RegisterRoutes mounts all dispatch endpoints on the provided mux.
// Reads are open; mutations require a token. Status updates accept
// courier tokens so delivery apps can report their own state.
func (handler *DispatchHTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	adminOnly := jwt.AuthMiddlewareFunc(handler.auth, courier.RoleAdmin)
	anyAccount := jwt.AuthMiddlewareFunc(handler.auth, courier.RoleAdmin, courier.RoleCourier)

	mux.HandleFunc("GET /api/health", handler.handleHealth)
	mux.HandleFunc("POST /api/auth/login", handler.handleLogin)

	mux.HandleFunc("GET /api/deliveries", handler.handleListCouriers)
	mux.HandleFunc("POST /api/deliveries", adminOnly(handler.handleCreateCourier))
	mux.HandleFunc("GET /api/deliveries/available", handler.handleListAvailableCouriers)
	mux.HandleFunc("PUT /api/deliveries/{id}/status", anyAccount(handler.handleUpdateCourierStatus))

	mux.HandleFunc("GET /api/packages", handler.handleListParcels)
	mux.HandleFunc("POST /api/packages", adminOnly(handler.handleCreateParcel))
	mux.HandleFunc("GET /api/packages/{id}", handler.handleGetParcel)
	mux.HandleFunc("PUT /api/packages/{id}", adminOnly(handler.handleUpdateParcel))
	mux.HandleFunc("DELETE /api/packages/{id}", adminOnly(handler.handleDeleteParcel))
	mux.HandleFunc("PUT /api/packages/{id}/status", anyAccount(handler.handleUpdateParcelStatus))
	mux.HandleFunc("PUT /api/packages/{id}/assign", adminOnly(handler.handleAssignParcel))

	mux.HandleFunc("GET /api/delivery-locations/latest", handler.handleLatestLocations)
	mux.HandleFunc("GET /api/map-data", handler.handleMapData)
	mux.HandleFunc("GET /api/locations", handler.handleLegacyLocations)

	// the websocket endpoint does not authenticate; any connection may
	// join channels and report positions
	mux.HandleFunc("GET /ws", handler.websocket.Connect)
}

func (handler *DispatchHTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)
	handler.jsonResponse(ctx, w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleLegacyLocations serves the retired locations listing by
// pointing clients at the parcels listing that replaced it.
func (handler *DispatchHTTPHandler) handleLegacyLocations(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/api/packages", http.StatusMovedPermanently)
}

// ----- general helpers -----

func (handler *DispatchHTTPHandler) jsonResponse(ctx context.Context, w http.ResponseWriter, status int, data any) {
	// encode to buffer first so we can control status on failure
	var buf []byte
	var err error

	if data != nil {
		buf, err = json.Marshal(data)
		if err != nil {
			handler.logger.Error(ctx, "response_encode_failed", "Failed to encode response", err, nil)
			http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
			return
		}
	} else {
		buf = []byte("{}")
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf)
}

// httpError sends a JSON error response with a message.
func (handler *DispatchHTTPHandler) httpError(ctx context.Context, w http.ResponseWriter, status int, msg string, err error) {
	action := "request_failed"
	if status >= 500 {
		action = "http_internal_error"
	} else if status == http.StatusBadRequest {
		action = "validation_failed"
	}
	handler.logger.Error(ctx, action, msg, err, nil)

	type errBody struct {
		Error string `json:"error"`
	}
	handler.jsonResponse(ctx, w, status, errBody{Error: msg})
}

// serviceError maps service-layer errors onto HTTP statuses.
func (handler *DispatchHTTPHandler) serviceError(ctx context.Context, w http.ResponseWriter, err error) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 23505 = unique_violation (duplicate username and the like)
		if pgErr.Code == "23505" {
			handler.httpError(ctx, w, http.StatusConflict, "Record already exists", err)
			return
		}
		handler.httpError(ctx, w, http.StatusInternalServerError, "database error", err)
		return
	}

	switch {
	case errors.Is(err, ports.ErrInvalidCredentials):
		handler.httpError(ctx, w, http.StatusUnauthorized, "Invalid credentials", err)
	case errors.Is(err, courier.ErrNotFound):
		handler.httpError(ctx, w, http.StatusNotFound, "Courier not found", err)
	case errors.Is(err, parcel.ErrNotFound):
		handler.httpError(ctx, w, http.StatusNotFound, "Package not found", err)
	case errors.Is(err, courier.ErrInvalidStatus),
		errors.Is(err, parcel.ErrInvalidStatus),
		errors.Is(err, courier.ErrEmptyUsername),
		errors.Is(err, courier.ErrEmptyName),
		errors.Is(err, parcel.ErrEmptyRecipient),
		errors.Is(err, parcel.ErrEmptyAddress):
		handler.httpError(ctx, w, http.StatusBadRequest, err.Error(), err)
	default:
		handler.httpError(ctx, w, http.StatusInternalServerError, "Internal server error", err)
	}
}

// withReqID extracts or generates a request ID and adds it to the context.
func (handler *DispatchHTTPHandler) withReqID(ctx context.Context, r *http.Request) context.Context {
	reqID := r.Header.Get("X-Request-ID")
	if strings.TrimSpace(reqID) == "" {
		reqID = uuid.NewString()
	}
	return handler.logger.WithRequestID(ctx, reqID)
}
