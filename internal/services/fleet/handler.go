package fleet

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/LeonardoBeccarini/field_simulator/internal/device"
	"github.com/LeonardoBeccarini/field_simulator/internal/farm"
	field_simulator "github.com/LeonardoBeccarini/field_simulator/internal/field-simulator"
)

// Simulation is the part of the simulator the API drives.
type Simulation interface {
	Zones() []*farm.Zone
	ZoneByID(id int) (*farm.Zone, bool)
	RemoveZone(id int) error
	Built() bool
	Ready() bool
	Stats() field_simulator.Stats
}

type Handler struct {
	sim    Simulation
	logger *slog.Logger
}

func NewHandler(sim Simulation, logger *slog.Logger) *Handler {
	return &Handler{sim: sim, logger: logger.With(slog.String("component", "fleet-api"))}
}

// NewRouter mounts health, metrics and the fleet routes.
func NewRouter(h *Handler, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.health)
	r.Get("/readyz", h.ready)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/zones", func(r chi.Router) {
		r.Get("/", h.handle(h.listZones))
		r.Route("/{zoneID}", func(r chi.Router) {
			r.Get("/", h.handle(h.getZone))
			r.Delete("/", h.handle(h.deleteZone))

			r.Route("/fields/{fieldID}", func(r chi.Router) {
				r.Get("/", h.handle(h.getField))
				r.Delete("/", h.handle(h.deleteField))

				r.Delete("/sensors/{deviceID}", h.handle(h.deleteSensor))
				r.Post("/sensors/{deviceID}/activate", h.handle(h.activateSensor))

				r.Delete("/actuators/{deviceID}", h.handle(h.deleteActuator))
				r.Put("/actuators/{deviceID}/value", h.handle(h.setActuatorValue))
				r.Post("/actuators/{deviceID}/activate", h.handle(h.activateActuator))
			})
		})
	})
	return r
}

func (h *Handler) listZones(w http.ResponseWriter, _ *http.Request) error {
	zones := h.sim.Zones()
	out := make([]zoneView, 0, len(zones))
	for _, z := range zones {
		out = append(out, newZoneView(z))
	}
	h.respondJSON(w, http.StatusOK, out)
	return nil
}

func (h *Handler) getZone(w http.ResponseWriter, r *http.Request) error {
	zone, err := h.zone(r)
	if err != nil {
		return err
	}
	h.respondJSON(w, http.StatusOK, newZoneView(zone))
	return nil
}

func (h *Handler) deleteZone(w http.ResponseWriter, r *http.Request) error {
	id, err := intParam(r, "zoneID")
	if err != nil {
		return err
	}
	if err := h.sim.RemoveZone(id); err != nil {
		if errors.Is(err, field_simulator.ErrZoneNotFound) {
			return notFound("zone %d not found", id)
		}
		return err
	}
	h.logger.Info("zone removed", slog.Int("zone_id", id))
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (h *Handler) getField(w http.ResponseWriter, r *http.Request) error {
	field, err := h.field(r)
	if err != nil {
		return err
	}
	h.respondJSON(w, http.StatusOK, newFieldView(field))
	return nil
}

func (h *Handler) deleteField(w http.ResponseWriter, r *http.Request) error {
	zone, err := h.zone(r)
	if err != nil {
		return err
	}
	id, err := intParam(r, "fieldID")
	if err != nil {
		return err
	}
	if err := zone.RemoveField(id); err != nil {
		if errors.Is(err, farm.ErrFieldNotFound) {
			return notFound("field %d not found in zone %d", id, zone.ID())
		}
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (h *Handler) deleteSensor(w http.ResponseWriter, r *http.Request) error {
	field, id, err := h.fieldDevice(r)
	if err != nil {
		return err
	}
	if err := field.DeleteSensor(id); err != nil {
		if errors.Is(err, farm.ErrSensorNotFound) {
			return notFound("sensor %d not found in field %d", id, field.ID())
		}
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (h *Handler) deleteActuator(w http.ResponseWriter, r *http.Request) error {
	field, id, err := h.fieldDevice(r)
	if err != nil {
		return err
	}
	if err := field.DeleteActuator(id); err != nil {
		if errors.Is(err, farm.ErrActuatorNotFound) {
			return notFound("actuator %d not found in field %d", id, field.ID())
		}
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (h *Handler) activateSensor(w http.ResponseWriter, r *http.Request) error {
	field, id, err := h.fieldDevice(r)
	if err != nil {
		return err
	}
	sensor, ok := field.SensorByID(id)
	if !ok {
		return notFound("sensor %d not found in field %d", id, field.ID())
	}
	return h.activate(w, sensor.Device)
}

func (h *Handler) activateActuator(w http.ResponseWriter, r *http.Request) error {
	field, id, err := h.fieldDevice(r)
	if err != nil {
		return err
	}
	actuator, ok := field.ActuatorByID(id)
	if !ok {
		return notFound("actuator %d not found in field %d", id, field.ID())
	}
	return h.activate(w, actuator.Device)
}

func (h *Handler) activate(w http.ResponseWriter, d *device.Device) error {
	if err := d.Activate(); err != nil {
		if errors.Is(err, device.ErrNotActive) {
			return conflict("%s is %s", d.Name(), d.Status())
		}
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (h *Handler) setActuatorValue(w http.ResponseWriter, r *http.Request) error {
	field, id, err := h.fieldDevice(r)
	if err != nil {
		return err
	}
	actuator, ok := field.ActuatorByID(id)
	if !ok {
		return notFound("actuator %d not found in field %d", id, field.ID())
	}
	req, err := decodeJSON[valueRequest](w, r)
	if err != nil {
		return err
	}
	if req.Value == nil {
		return badRequest("value is required")
	}
	stored := actuator.SetValue(*req.Value)
	h.logger.Info("actuator value set",
		slog.String("actuator", actuator.Name()),
		slog.Float64("requested", *req.Value),
		slog.Float64("value", stored))
	h.respondJSON(w, http.StatusOK, valueResponse{Value: stored})
	return nil
}

func (h *Handler) zone(r *http.Request) (*farm.Zone, error) {
	id, err := intParam(r, "zoneID")
	if err != nil {
		return nil, err
	}
	zone, ok := h.sim.ZoneByID(id)
	if !ok {
		return nil, notFound("zone %d not found", id)
	}
	return zone, nil
}

func (h *Handler) field(r *http.Request) (*farm.Field, error) {
	zone, err := h.zone(r)
	if err != nil {
		return nil, err
	}
	id, err := intParam(r, "fieldID")
	if err != nil {
		return nil, err
	}
	field, ok := zone.FieldByID(id)
	if !ok {
		return nil, notFound("field %d not found in zone %d", id, zone.ID())
	}
	return field, nil
}

func (h *Handler) fieldDevice(r *http.Request) (*farm.Field, int, error) {
	field, err := h.field(r)
	if err != nil {
		return nil, 0, err
	}
	id, err := intParam(r, "deviceID")
	if err != nil {
		return nil, 0, err
	}
	return field, id, nil
}

func intParam(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.Atoi(raw)
	if err != nil || id < 0 {
		return 0, badRequest("invalid %s %q", name, raw)
	}
	return id, nil
}
