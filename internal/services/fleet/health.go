package fleet

import (
	"net/http"

	field_simulator "github.com/LeonardoBeccarini/field_simulator/internal/field-simulator"
)

type healthStatus struct {
	Status  string                `json:"status"`
	Built   bool                  `json:"built"`
	Devices field_simulator.Stats `json:"devices"`
}

// health always answers 200: ok when devices are live, degraded when the
// roster is built but nothing is connected, down before the build.
func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	st := healthStatus{Built: h.sim.Built(), Devices: h.sim.Stats()}
	switch {
	case st.Built && st.Devices.Active > 0:
		st.Status = "ok"
	case st.Built:
		st.Status = "degraded"
	default:
		st.Status = "down"
	}
	h.respondJSON(w, http.StatusOK, st)
}

// ready is 200 only once the simulator is serving devices.
func (h *Handler) ready(w http.ResponseWriter, _ *http.Request) {
	type resp struct {
		Ready bool `json:"ready"`
	}
	ready := h.sim.Ready()
	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	h.respondJSON(w, status, resp{Ready: ready})
}
