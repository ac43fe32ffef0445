package handler

import "net/http"

func (handler *DispatchHTTPHandler) handleLatestLocations(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	list, err := handler.svc.LatestLocations(ctx)
	if err != nil {
		handler.serviceError(ctx, w, err)
		return
	}
	handler.jsonResponse(ctx, w, http.StatusOK, list)
}

func (handler *DispatchHTTPHandler) handleMapData(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	data, err := handler.svc.MapData(ctx)
	if err != nil {
		handler.serviceError(ctx, w, err)
		return
	}
	handler.jsonResponse(ctx, w, http.StatusOK, data)
}
