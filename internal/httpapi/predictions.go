// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/pdiddy/dimensions-gateway/pkg/types"
)

// defaultPeriod is the placeholder horizon used when the caller omits one.
const defaultPeriod = "3"

// handlePredictions returns the deterministic opportunity prediction stub.
// The entries are placeholder data for the dashboard; a real implementation
// would compute them from a model. Nothing here touches the network.
func (a *API) handlePredictions(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Term   string  `json:"term"`
		Period *string `json:"period"`
	}
	_ = json.NewDecoder(r.Body).Decode(&payload)

	// Only an absent or empty term is rejected; whitespace counts as a term
	// and is echoed as sent.
	if payload.Term == "" {
		writeError(w, http.StatusBadRequest, errorBody{Error: "Missing required field: term"})
		return
	}

	// The default applies only when the key is absent; a supplied period is
	// echoed even when empty.
	period := defaultPeriod
	if payload.Period != nil {
		period = *payload.Period
	}

	writeJSON(w, http.StatusOK, types.PredictionResponse{
		Term:   payload.Term,
		Period: period,
		Predictions: []types.Prediction{
			{Year: 2024, Count: 42},
			{Year: 2025, Count: 47},
			{Year: 2026, Count: 53},
		},
	})
}
