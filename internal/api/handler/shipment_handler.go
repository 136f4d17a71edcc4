package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/consigntrack/consignment-tracker/internal/core/ports"
)

// ShipmentHandler handles HTTP requests for shipment operations. It delegates
// to the same ShipmentService the bot executor uses, so checkpoints created
// here take the identical resolver and notification path.
type ShipmentHandler struct {
	service ports.ShipmentService
}

func NewShipmentHandler(service ports.ShipmentService) *ShipmentHandler {
	return &ShipmentHandler{service: service}
}

// Get handles GET /v1/shipments/:tracking_number, the public tracking view.
//
// @Summary      Get a shipment by tracking number
// @Tags         shipments
// @Produce      json
// @Param        tracking_number  path      string  true  "Tracking number"
// @Success      200              {object}  shipmentResponse
// @Failure      404              {object}  errorResponse
// @Router       /v1/shipments/{tracking_number} [get]
func (h *ShipmentHandler) Get(c echo.Context) error {
	shipment, err := h.service.Get(c.Request().Context(), c.Param("tracking_number"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toShipmentResponse(shipment, false))
}

// List handles GET /v1/shipments, the admin listing with subscribers included.
//
// @Summary      List recent shipments
// @Tags         shipments
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Max shipments to return"
// @Success      200    {array}   shipmentResponse
// @Router       /v1/shipments [get]
func (h *ShipmentHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	shipments, err := h.service.List(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	out := make([]shipmentResponse, 0, len(shipments))
	for _, s := range shipments {
		out = append(out, toShipmentResponse(s, true))
	}
	return c.JSON(http.StatusOK, out)
}

// Create handles POST /v1/shipments.
//
// @Summary      Create a new shipment
// @Tags         shipments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createShipmentRequest  true  "Shipment details"
// @Success      201   {object}  shipmentResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/shipments [post]
func (h *ShipmentHandler) Create(c echo.Context) error {
	var req createShipmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	shipment, err := h.service.Create(c.Request().Context(), ports.CreateShipmentInput{
		TrackingNumber: req.TrackingNumber,
		Title:          req.Title,
		Origin:         ports.CoordinatesInput{Lat: req.Origin.Lat, Lng: req.Origin.Lng},
		Destination:    ports.CoordinatesInput{Lat: req.Destination.Lat, Lng: req.Destination.Lng},
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toShipmentResponse(shipment, false))
}

// AddCheckpoint handles POST /v1/shipments/:tracking_number/checkpoints.
//
// @Summary      Append a checkpoint to a shipment
// @Tags         shipments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        tracking_number  path      string                true  "Tracking number"
// @Param        body             body      addCheckpointRequest  true  "Checkpoint details"
// @Success      201              {object}  addCheckpointResponse
// @Failure      400              {object}  errorResponse
// @Failure      404              {object}  errorResponse
// @Router       /v1/shipments/{tracking_number}/checkpoints [post]
func (h *ShipmentHandler) AddCheckpoint(c echo.Context) error {
	var req addCheckpointRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.service.AppendCheckpoint(c.Request().Context(), ports.AppendCheckpointInput{
		TrackingNumber: c.Param("tracking_number"),
		Coords:         ports.CoordinatesInput{Lat: req.Lat, Lng: req.Lng},
		Label:          req.Label,
		Note:           req.Note,
		StatusOverride: req.Status,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, addCheckpointResponse{
		Checkpoint: toCheckpointResponse(result.Checkpoint),
		Status:     string(result.Status),
	})
}

// Subscribe handles POST /v1/shipments/:tracking_number/subscribe: public,
// idempotent registration.
//
// @Summary      Subscribe an email to shipment updates
// @Tags         subscriptions
// @Accept       json
// @Produce      json
// @Param        tracking_number  path      string            true  "Tracking number"
// @Param        body             body      subscribeRequest  true  "Subscriber email"
// @Success      200              {object}  okResponse
// @Failure      404              {object}  errorResponse
// @Router       /v1/shipments/{tracking_number}/subscribe [post]
func (h *ShipmentHandler) Subscribe(c echo.Context) error {
	var req subscribeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.Subscribe(c.Request().Context(), c.Param("tracking_number"), req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, okResponse{OK: true})
}

// Unsubscribe handles GET /v1/shipments/:tracking_number/unsubscribe, the
// link embedded in notification emails. The token authenticates the request.
//
// @Summary      Unsubscribe via emailed token
// @Tags         subscriptions
// @Produce      json
// @Param        tracking_number  path      string  true  "Tracking number"
// @Param        email            query     string  true  "Subscriber email"
// @Param        token            query     string  true  "Unsubscribe token"
// @Success      200              {object}  okResponse
// @Failure      403              {object}  errorResponse
// @Router       /v1/shipments/{tracking_number}/unsubscribe [get]
func (h *ShipmentHandler) Unsubscribe(c echo.Context) error {
	err := h.service.Unsubscribe(c.Request().Context(),
		c.Param("tracking_number"), c.QueryParam("email"), c.QueryParam("token"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, okResponse{OK: true})
}

// RemoveSubscriber handles POST /v1/shipments/:tracking_number/remove_subscriber.
//
// @Summary      Remove a subscriber (admin)
// @Tags         subscriptions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        tracking_number  path      string                   true  "Tracking number"
// @Param        body             body      removeSubscriberRequest  true  "Subscriber email"
// @Success      200              {object}  okResponse
// @Failure      404              {object}  errorResponse
// @Router       /v1/shipments/{tracking_number}/remove_subscriber [post]
func (h *ShipmentHandler) RemoveSubscriber(c echo.Context) error {
	var req removeSubscriberRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.RemoveSubscriber(c.Request().Context(), c.Param("tracking_number"), req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, okResponse{OK: true})
}

// Simulate handles POST /v1/shipments/:tracking_number/simulate. It starts a
// detached background simulation and returns immediately.
//
// @Summary      Start a checkpoint simulation
// @Tags         shipments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        tracking_number  path      string           true   "Tracking number"
// @Param        body             body      simulateRequest  false  "Simulation parameters"
// @Success      202              {object}  okResponse
// @Failure      404              {object}  errorResponse
// @Router       /v1/shipments/{tracking_number}/simulate [post]
func (h *ShipmentHandler) Simulate(c echo.Context) error {
	var req simulateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	interval := time.Duration(req.IntervalSeconds * float64(time.Second))
	err := h.service.Simulate(c.Request().Context(), c.Param("tracking_number"), req.Steps, interval)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, okResponse{OK: true})
}
