package handlers

import (
	"strings"

	"delivery-lifecycle/internal/domain"
)

func (req createDeliveryRequest) toModel() *domain.Delivery {
	d := &domain.Delivery{
		Reference:    req.Reference,
		CustomerName: req.CustomerName,
		Address:      req.Address,
		PaymentType:  domain.PaymentType(strings.ToLower(req.PaymentType)),
		AmountDue:    req.AmountDue,
		Kind:         domain.DeliveryKind(strings.ToLower(req.Kind)),
	}
	if req.Location != nil {
		d.Location = &domain.Coordinate{Lat: req.Location.Lat, Lng: req.Location.Lng}
	}
	return d
}

func deliveryToResponse(d domain.Delivery) deliveryDTO {
	out := deliveryDTO{
		ID:           d.ID,
		Reference:    d.Reference,
		CustomerName: d.CustomerName,
		Address:      d.Address,
		PaymentType:  string(d.PaymentType),
		AmountDue:    d.AmountDue,
		Kind:         string(d.Kind),
		Status:       string(d.Status),
		StatusLabel:  d.Status.Label(),
		DriverID:     d.DriverID,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
	if d.Location != nil {
		out.Location = &coordinateDTO{Lat: d.Location.Lat, Lng: d.Location.Lng}
	}
	return out
}

func deliveriesToResponse(list []domain.Delivery) []deliveryDTO {
	out := make([]deliveryDTO, 0, len(list))
	for _, d := range list {
		out = append(out, deliveryToResponse(d))
	}
	return out
}

func eventToResponse(e domain.HistoryEvent) historyEventDTO {
	return historyEventDTO{
		ID:        e.ID,
		Reference: e.Reference,
		Seq:       e.Seq,
		From:      string(e.FromStatus),
		To:        string(e.ToStatus),
		Reason:    e.Reason,
		ActorID:   e.ActorID,
		ActorRole: string(e.ActorRole),
		DriverID:  e.DriverID,
		At:        e.At,
	}
}

func eventsToResponse(list []domain.HistoryEvent) []historyEventDTO {
	out := make([]historyEventDTO, 0, len(list))
	for _, e := range list {
		out = append(out, eventToResponse(e))
	}
	return out
}

func autoAssignToResponse(res domain.AutoAssignResult) autoAssignResponse {
	out := autoAssignResponse{
		Assigned:  make([]assignmentDTO, 0, len(res.Assigned)),
		Unmatched: append([]string{}, res.Unmatched...),
		Skipped:   append([]string{}, res.Skipped...),
	}
	for _, a := range res.Assigned {
		out.Assigned = append(out.Assigned, assignmentDTO{Reference: a.Reference, DriverID: a.DriverID})
	}
	return out
}

func (req createDriverRequest) toModel() *domain.Driver {
	return &domain.Driver{
		Name:    req.Name,
		Phone:   req.Phone,
		Status:  domain.DriverStatus(req.Status),
		Vehicle: domain.VehicleType(req.Vehicle),
	}
}

func (req updateDriverRequest) toModel(id int64) domain.PartialDriverUpdate {
	u := domain.PartialDriverUpdate{
		ID:    id,
		Name:  req.Name,
		Phone: req.Phone,
	}
	if req.Status != nil {
		s := domain.DriverStatus(*req.Status)
		u.Status = &s
	}
	if req.Vehicle != nil {
		v := domain.VehicleType(*req.Vehicle)
		u.Vehicle = &v
	}
	return u
}

func locationToResponse(l domain.Location) locationDTO {
	return locationDTO{Lat: l.Lat, Lng: l.Lng, At: l.At}
}

func driverToResponse(d domain.Driver) driverDTO {
	out := driverDTO{
		ID:      d.ID,
		Name:    d.Name,
		Phone:   d.Phone,
		Status:  string(d.Status),
		Vehicle: string(d.Vehicle),
		Active:  d.Active,
	}
	if d.Location != nil {
		loc := locationToResponse(*d.Location)
		out.Location = &loc
	}
	return out
}

func driversToResponse(list []domain.Driver) []driverDTO {
	out := make([]driverDTO, 0, len(list))
	for _, d := range list {
		out = append(out, driverToResponse(d))
	}
	return out
}
