package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

// --- Request types ---

type coordinatesRequest struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"gte=-180,lte=180"`
}

type createShipmentRequest struct {
	TrackingNumber string             `json:"tracking_number" validate:"required"`
	Title          string             `json:"title"`
	Origin         coordinatesRequest `json:"origin"`
	Destination    coordinatesRequest `json:"destination"`
}

type addCheckpointRequest struct {
	Lat   float64 `json:"lat"   validate:"gte=-90,lte=90"`
	Lng   float64 `json:"lng"   validate:"gte=-180,lte=180"`
	Label string  `json:"label"`
	Note  string  `json:"note"`
	// Status, when set, becomes the shipment's explicit status override.
	Status string `json:"status"`
}

type subscribeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type removeSubscriberRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type simulateRequest struct {
	Steps           int     `json:"steps"            validate:"gte=0,lte=100"`
	IntervalSeconds float64 `json:"interval_seconds" validate:"gte=0,lte=3600"`
}

// --- Response types ---

type coordinatesResponse struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type checkpointResponse struct {
	ID        string              `json:"id"`
	Coords    coordinatesResponse `json:"coords"`
	Label     string              `json:"label"`
	Note      string              `json:"note,omitempty"`
	Timestamp time.Time           `json:"timestamp"`
	Position  int                 `json:"position"`
}

type subscriberResponse struct {
	Email   string    `json:"email"`
	AddedAt time.Time `json:"added_at"`
}

type shipmentResponse struct {
	TrackingNumber string               `json:"tracking_number"`
	Title          string               `json:"title"`
	Status         string               `json:"status"`
	Origin         coordinatesResponse  `json:"origin"`
	Destination    coordinatesResponse  `json:"destination"`
	UpdatedAt      time.Time            `json:"updated_at"`
	Checkpoints    []checkpointResponse `json:"checkpoints"`
	// Subscribers is populated only on admin views.
	Subscribers []subscriberResponse `json:"subscribers,omitempty"`
}

type addCheckpointResponse struct {
	Checkpoint checkpointResponse `json:"checkpoint"`
	Status     string             `json:"status"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string `json:"token"`
}
