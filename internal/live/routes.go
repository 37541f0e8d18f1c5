package live

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/banshee-data/rotation.report/internal/charts"
	"github.com/banshee-data/rotation.report/internal/httputil"
	"tailscale.com/tsweb"
)

// Pauser is the playback control exposed over HTTP.
type Pauser interface {
	Paused() bool
	TogglePause() bool
}

// AttachDebugRoutes mounts the rotation pages on the tsweb debug handler
// and the sample stream on mux. hub and pauser may be nil.
func AttachDebugRoutes(mux *http.ServeMux, debug *tsweb.DebugHandler, tracker *StateTracker, hub *Hub, pauser Pauser) {
	debug.KVFunc("Rotations", func() any { return tracker.Status().State.RotationCount })

	debug.Handle("rotation/state", "Current tracking state (JSON)", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !httputil.RequireMethod(w, r, http.MethodGet) {
			return
		}
		st := tracker.Status()
		if pauser != nil {
			st.Paused = pauser.Paused()
		}
		httputil.WriteJSON(w, http.StatusOK, st)
	}))

	debug.Handle("rotation/chart", "Bearing and trajectory charts", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !httputil.RequireMethod(w, r, http.MethodGet) {
			return
		}
		st := tracker.Status()
		var buf bytes.Buffer
		if err := charts.RenderHTML(&buf, st.RunID, tracker.Samples(), st.State.Pivot); err != nil {
			httputil.WriteJSONError(w, http.StatusInternalServerError, fmt.Sprintf("render error: %v", err))
			return
		}
		httputil.WriteHTML(w, buf.Bytes())
	}))

	if pauser != nil {
		debug.Handle("rotation/pause", "Toggle playback (POST)", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !httputil.RequireMethod(w, r, http.MethodPost) {
				return
			}
			httputil.WriteJSON(w, http.StatusOK, map[string]bool{"paused": pauser.TogglePause()})
		}))
	}

	if hub != nil {
		mux.Handle("/ws/samples", hub)
	}
}
