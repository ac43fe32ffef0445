package service

import (
	"context"

	"courier-track/internal/domain/courier"
	"courier-track/internal/ports"
)

// CreateCourier registers a new delivery account.
func (service *dispatchService) CreateCourier(ctx context.Context, in ports.CreateCourierInput) (ports.CourierView, error) {
	c, err := courier.New(in.Username, in.Name)
	if err != nil {
		return ports.CourierView{}, err
	}

	err = service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		return service.couriers.Create(txCtx, c, in.Password)
	})
	if err != nil {
		service.logger.Error(ctx, "courier_create_failed", "Failed to create courier account", err,
			map[string]any{"username": in.Username})
		return ports.CourierView{}, err
	}

	service.logger.Info(ctx, "courier_created", "Courier account created", map[string]any{
		"courier_id": c.ID,
		"username":   c.Username,
	})

	return courierView(*c), nil
}

// ListCouriers returns every delivery account.
func (service *dispatchService) ListCouriers(ctx context.Context) ([]ports.CourierView, error) {
	var list []courier.Courier

	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		var err error
		list, err = service.couriers.ListByRole(txCtx, courier.RoleCourier)
		return err
	})
	if err != nil {
		service.logger.Error(ctx, "courier_list_failed", "Failed to list couriers", err, nil)
		return nil, err
	}

	out := make([]ports.CourierView, 0, len(list))
	for _, c := range list {
		out = append(out, courierView(c))
	}
	return out, nil
}

// ListAvailableCouriers returns delivery accounts currently available
// for an assignment.
func (service *dispatchService) ListAvailableCouriers(ctx context.Context) ([]ports.CourierView, error) {
	var list []courier.Courier

	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		var err error
		list, err = service.couriers.ListAvailable(txCtx)
		return err
	})
	if err != nil {
		service.logger.Error(ctx, "courier_list_available_failed", "Failed to list available couriers", err, nil)
		return nil, err
	}

	out := make([]ports.CourierView, 0, len(list))
	for _, c := range list {
		out = append(out, courierView(c))
	}
	return out, nil
}

// UpdateCourierStatus flips a courier's availability.
func (service *dispatchService) UpdateCourierStatus(ctx context.Context, id string, status courier.Status) (ports.CourierView, error) {
	var updated *courier.Courier

	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		c, err := service.couriers.UpdateStatus(txCtx, id, status)
		if err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		service.logger.Error(ctx, "courier_status_update_failed", "Failed to update courier status", err,
			map[string]any{"courier_id": id, "status": status.String()})
		return ports.CourierView{}, err
	}

	service.logger.Info(ctx, "courier_status_updated", "Courier status changed", map[string]any{
		"courier_id": id,
		"status":     status.String(),
	})

	return courierView(*updated), nil
}
