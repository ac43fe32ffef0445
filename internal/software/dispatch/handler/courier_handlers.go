package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"courier-track/internal/domain/courier"
	"courier-track/internal/ports"
)

type createCourierRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (handler *DispatchHTTPHandler) handleListCouriers(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	list, err := handler.svc.ListCouriers(ctx)
	if err != nil {
		handler.serviceError(ctx, w, err)
		return
	}
	handler.jsonResponse(ctx, w, http.StatusOK, list)
}

func (handler *DispatchHTTPHandler) handleListAvailableCouriers(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	list, err := handler.svc.ListAvailableCouriers(ctx)
	if err != nil {
		handler.serviceError(ctx, w, err)
		return
	}
	handler.jsonResponse(ctx, w, http.StatusOK, list)
}

func (handler *DispatchHTTPHandler) handleCreateCourier(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	var req createCourierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" || strings.TrimSpace(req.Name) == "" {
		handler.httpError(ctx, w, http.StatusBadRequest, "username, password and name are required", nil)
		return
	}

	view, err := handler.svc.CreateCourier(ctx, ports.CreateCourierInput{
		Username: req.Username,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		handler.serviceError(ctx, w, err)
		return
	}
	handler.jsonResponse(ctx, w, http.StatusCreated, view)
}

func (handler *DispatchHTTPHandler) handleUpdateCourierStatus(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)
	id := r.PathValue("id")

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	status, err := courier.ParseStatus(req.Status)
	if err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "status must be one of available, busy, offline", err)
		return
	}

	view, err := handler.svc.UpdateCourierStatus(ctx, id, status)
	if err != nil {
		handler.serviceError(ctx, w, err)
		return
	}
	handler.jsonResponse(ctx, w, http.StatusOK, view)
}
