package handler

import (
	"github.com/consigntrack/consignment-tracker/internal/core/domain"
)

// toShipmentResponse maps a domain shipment to its public JSON view. The
// status field is re-resolved from the checkpoint sequence so the rendered
// view always agrees with the resolver's policy, even for documents written
// before a policy change.
func toShipmentResponse(s *domain.Shipment, includeSubscribers bool) shipmentResponse {
	resp := shipmentResponse{
		TrackingNumber: s.TrackingNumber,
		Title:          s.Title,
		Status:         string(domain.ResolveStatus(s.Checkpoints, s.StatusOverride)),
		Origin:         coordinatesResponse{Lat: s.Origin.Lat, Lng: s.Origin.Lng},
		Destination:    coordinatesResponse{Lat: s.Destination.Lat, Lng: s.Destination.Lng},
		UpdatedAt:      s.UpdatedAt,
		Checkpoints:    make([]checkpointResponse, 0, len(s.Checkpoints)),
	}
	for _, cp := range s.Checkpoints {
		resp.Checkpoints = append(resp.Checkpoints, toCheckpointResponse(cp))
	}
	if includeSubscribers {
		for _, sub := range s.ActiveSubscribers() {
			resp.Subscribers = append(resp.Subscribers, subscriberResponse{
				Email:   sub.Email,
				AddedAt: sub.AddedAt,
			})
		}
	}
	return resp
}

func toCheckpointResponse(cp domain.Checkpoint) checkpointResponse {
	return checkpointResponse{
		ID:        cp.ID,
		Coords:    coordinatesResponse{Lat: cp.Coords.Lat, Lng: cp.Coords.Lng},
		Label:     cp.Label,
		Note:      cp.Note,
		Timestamp: cp.Timestamp,
		Position:  cp.Position,
	}
}
