// cmd/api/healthcheck.go
package main

import (
	"net/http"
	"time"
)

// healthCheckHandler handles GET /health-check.
// It is unauthenticated so load balancers and uptime monitors can probe it.
func (app *applicationDependencies) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	data := envelope{
		"success": true,
		"message": "Server is running well!",
		"date":    time.Now().UTC().Format(time.RFC3339),
	}

	err := app.writeJSON(w, http.StatusOK, data, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
