package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"courier-track/internal/domain/parcel"
	"courier-track/internal/ports"
)

type createParcelRequest struct {
	Recipient string  `json:"recipient"`
	Address   string  `json:"address"`
	CourierID *string `json:"courier_id"`
	Status    *string `json:"status"`
}

type updateParcelRequest struct {
	Recipient *string `json:"recipient"`
	Address   *string `json:"address"`
	CourierID *string `json:"courier_id"`
	Status    *string `json:"status"`
}

type assignParcelRequest struct {
	CourierID string `json:"courier_id"`
}

func (handler *DispatchHTTPHandler) handleListParcels(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	list, err := handler.svc.ListParcels(ctx)
	if err != nil {
		handler.serviceError(ctx, w, err)
		return
	}
	handler.jsonResponse(ctx, w, http.StatusOK, list)
}

func (handler *DispatchHTTPHandler) handleGetParcel(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	view, err := handler.svc.GetParcel(ctx, r.PathValue("id"))
	if err != nil {
		handler.serviceError(ctx, w, err)
		return
	}
	handler.jsonResponse(ctx, w, http.StatusOK, view)
}

func (handler *DispatchHTTPHandler) handleCreateParcel(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	var req createParcelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Recipient) == "" || strings.TrimSpace(req.Address) == "" {
		handler.httpError(ctx, w, http.StatusBadRequest, "recipient and address are required", nil)
		return
	}

	in := ports.CreateParcelInput{
		Recipient: req.Recipient,
		Address:   req.Address,
		CourierID: req.CourierID,
	}
	if req.Status != nil {
		status, err := parcel.ParseStatus(*req.Status)
		if err != nil {
			handler.httpError(ctx, w, http.StatusBadRequest, "invalid package status", err)
			return
		}
		in.Status = &status
	}

	view, err := handler.svc.CreateParcel(ctx, in)
	if err != nil {
		handler.serviceError(ctx, w, err)
		return
	}
	handler.jsonResponse(ctx, w, http.StatusCreated, view)
}

func (handler *DispatchHTTPHandler) handleUpdateParcel(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	var req updateParcelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Recipient == nil && req.Address == nil && req.CourierID == nil && req.Status == nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "no fields to update", nil)
		return
	}

	in := ports.UpdateParcelInput{
		Recipient: req.Recipient,
		Address:   req.Address,
		CourierID: req.CourierID,
	}
	if req.Status != nil {
		status, err := parcel.ParseStatus(*req.Status)
		if err != nil {
			handler.httpError(ctx, w, http.StatusBadRequest, "invalid package status", err)
			return
		}
		in.Status = &status
	}

	view, err := handler.svc.UpdateParcel(ctx, r.PathValue("id"), in)
	if err != nil {
		handler.serviceError(ctx, w, err)
		return
	}
	handler.jsonResponse(ctx, w, http.StatusOK, view)
}

func (handler *DispatchHTTPHandler) handleUpdateParcelStatus(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	status, err := parcel.ParseStatus(req.Status)
	if err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "invalid package status", err)
		return
	}

	view, err := handler.svc.UpdateParcelStatus(ctx, r.PathValue("id"), status)
	if err != nil {
		handler.serviceError(ctx, w, err)
		return
	}
	handler.jsonResponse(ctx, w, http.StatusOK, view)
}

func (handler *DispatchHTTPHandler) handleDeleteParcel(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	if err := handler.svc.DeleteParcel(ctx, r.PathValue("id")); err != nil {
		handler.serviceError(ctx, w, err)
		return
	}
	handler.jsonResponse(ctx, w, http.StatusOK, map[string]string{"message": "Package deleted"})
}

func (handler *DispatchHTTPHandler) handleAssignParcel(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	var req assignParcelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.CourierID) == "" {
		handler.httpError(ctx, w, http.StatusBadRequest, "courier_id is required", nil)
		return
	}

	view, err := handler.svc.AssignParcel(ctx, r.PathValue("id"), req.CourierID)
	if err != nil {
		handler.serviceError(ctx, w, err)
		return
	}
	handler.jsonResponse(ctx, w, http.StatusOK, view)
}
