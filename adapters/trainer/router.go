package trainer

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"mlstudio/domain/training"
	"mlstudio/ports"
)

// NewSimulatorRouter exposes a Training Service over the /train and /health contract
func NewSimulatorRouter(svc ports.TrainingService) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		status, err := svc.Health(req.Context())
		if err != nil {
			writeJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		writeJSON(w, http.StatusOK, status)
	})

	r.Post("/train", func(w http.ResponseWriter, req *http.Request) {
		var body training.Request
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{
				"success": false,
				"detail":  "invalid request body: " + err.Error(),
			})
			return
		}

		resp, err := svc.Train(req.Context(), body)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
				"success": false,
				"detail":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, resp)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
