package service

import (
	"context"

	"courier-track/internal/domain/courier"
	"courier-track/internal/domain/parcel"
	"courier-track/internal/ports"
)

// CreateParcel registers a new parcel, optionally pre-assigned.
func (service *dispatchService) CreateParcel(ctx context.Context, in ports.CreateParcelInput) (ports.ParcelView, error) {
	p, err := parcel.New(in.Recipient, in.Address, in.CourierID)
	if err != nil {
		return ports.ParcelView{}, err
	}
	if in.Status != nil {
		p.Status = *in.Status
	} else if in.CourierID != nil {
		p.Status = parcel.StatusAssigned
	}
	if err := p.Validate(); err != nil {
		return ports.ParcelView{}, err
	}

	var view ports.ParcelView
	err = service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		if err := service.parcels.Create(txCtx, p); err != nil {
			return err
		}
		v, err := service.enrichParcel(txCtx, *p)
		if err != nil {
			return err
		}
		view = v
		return nil
	})
	if err != nil {
		service.logger.Error(ctx, "parcel_create_failed", "Failed to create parcel", err,
			map[string]any{"recipient": in.Recipient})
		return ports.ParcelView{}, err
	}

	service.logger.Info(ctx, "parcel_created", "Parcel created", map[string]any{
		"parcel_id": p.ID,
		"status":    p.Status.String(),
	})

	return view, nil
}

// ListParcels returns all parcels joined with assigned courier identity.
func (service *dispatchService) ListParcels(ctx context.Context) ([]ports.ParcelView, error) {
	var out []ports.ParcelView

	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		list, err := service.parcels.List(txCtx)
		if err != nil {
			return err
		}
		assigned, err := service.couriers.GetByIDs(txCtx, assignedCourierIDs(list))
		if err != nil {
			return err
		}
		out = make([]ports.ParcelView, 0, len(list))
		for _, p := range list {
			out = append(out, parcelView(p, assigned))
		}
		return nil
	})
	if err != nil {
		service.logger.Error(ctx, "parcel_list_failed", "Failed to list parcels", err, nil)
		return nil, err
	}

	return out, nil
}

// GetParcel fetches a single parcel by id.
func (service *dispatchService) GetParcel(ctx context.Context, id string) (ports.ParcelView, error) {
	var view ports.ParcelView

	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		p, err := service.parcels.Get(txCtx, id)
		if err != nil {
			return err
		}
		v, err := service.enrichParcel(txCtx, *p)
		if err != nil {
			return err
		}
		view = v
		return nil
	})
	if err != nil {
		return ports.ParcelView{}, err
	}
	return view, nil
}

// UpdateParcel applies a partial update.
func (service *dispatchService) UpdateParcel(ctx context.Context, id string, in ports.UpdateParcelInput) (ports.ParcelView, error) {
	upd := parcel.Update{
		Recipient: in.Recipient,
		Address:   in.Address,
		CourierID: in.CourierID,
		Status:    in.Status,
	}
	return service.applyParcelUpdate(ctx, id, upd, "parcel_updated", "Parcel updated")
}

// UpdateParcelStatus transitions a parcel's delivery status.
func (service *dispatchService) UpdateParcelStatus(ctx context.Context, id string, status parcel.Status) (ports.ParcelView, error) {
	return service.applyParcelUpdate(ctx, id, parcel.Update{Status: &status}, "parcel_status_updated", "Parcel status changed")
}

// AssignParcel hands a parcel to a courier and marks the courier busy.
func (service *dispatchService) AssignParcel(ctx context.Context, id, courierID string) (ports.ParcelView, error) {
	var view ports.ParcelView

	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		p, err := service.parcels.Assign(txCtx, id, courierID)
		if err != nil {
			return err
		}
		// assignment implies the courier is now working
		if _, err := service.couriers.UpdateStatus(txCtx, courierID, courier.StatusBusy); err != nil {
			return err
		}
		v, err := service.enrichParcel(txCtx, *p)
		if err != nil {
			return err
		}
		view = v
		return nil
	})
	if err != nil {
		service.logger.Error(ctx, "parcel_assign_failed", "Failed to assign parcel", err,
			map[string]any{"parcel_id": id, "courier_id": courierID})
		return ports.ParcelView{}, err
	}

	service.logger.Info(ctx, "parcel_assigned", "Parcel assigned to courier", map[string]any{
		"parcel_id":  id,
		"courier_id": courierID,
	})

	return view, nil
}

// DeleteParcel removes a parcel record.
func (service *dispatchService) DeleteParcel(ctx context.Context, id string) error {
	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		return service.parcels.Delete(txCtx, id)
	})
	if err != nil {
		service.logger.Error(ctx, "parcel_delete_failed", "Failed to delete parcel", err,
			map[string]any{"parcel_id": id})
		return err
	}

	service.logger.Info(ctx, "parcel_deleted", "Parcel deleted", map[string]any{"parcel_id": id})
	return nil
}

func (service *dispatchService) applyParcelUpdate(ctx context.Context, id string, upd parcel.Update, action, msg string) (ports.ParcelView, error) {
	var view ports.ParcelView

	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		p, err := service.parcels.Update(txCtx, id, upd)
		if err != nil {
			return err
		}
		v, err := service.enrichParcel(txCtx, *p)
		if err != nil {
			return err
		}
		view = v
		return nil
	})
	if err != nil {
		service.logger.Error(ctx, action+"_failed", "Parcel update failed", err,
			map[string]any{"parcel_id": id})
		return ports.ParcelView{}, err
	}

	service.logger.Info(ctx, action, msg, map[string]any{"parcel_id": id})
	return view, nil
}

// enrichParcel joins the assigned courier's identity onto a parcel.
// Must run within a transaction context.
func (service *dispatchService) enrichParcel(txCtx context.Context, p parcel.Parcel) (ports.ParcelView, error) {
	assigned := map[string]courier.Courier{}
	if p.CourierID != nil {
		m, err := service.couriers.GetByIDs(txCtx, []string{*p.CourierID})
		if err != nil {
			return ports.ParcelView{}, err
		}
		assigned = m
	}
	return parcelView(p, assigned), nil
}
