package http

import (
	"net/http"

	"finans/internal/log"
)

// handleSeed wipes all data and loads the sample fixture. Development
// convenience, kept as a deliberate endpoint.
func (s *Server) handleSeed(w http.ResponseWriter, r *http.Request) {
	userID, err := s.store.SeedSampleData(r.Context())
	if err != nil {
		reqLog(r).ErrorContext(r.Context(), "Failed to seed database", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	// Everything cached is derived from data that just got wiped.
	s.forecastCache.Clear()
	s.weeklyCache.Clear()

	reqLog(r).InfoContext(r.Context(), "Database seeded",
		log.NewFields().WithUser(userID).WithOperation(log.OpSeed).ToSlice()...)

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "seeded",
		"user_id": userID,
		"message": msgSeeded,
	})
}
