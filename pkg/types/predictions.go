// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Prediction is one forward-looking entry of the opportunity prediction stub.
type Prediction struct {
	// Year is the calendar year the prediction covers.
	Year int `json:"year" yaml:"year"`

	// Count is the predicted number of publications.
	Count int `json:"count" yaml:"count"`
}

// PredictionResponse is the body returned by /api/opportunity-predictions.
// The predictions are placeholder data for the dashboard: deterministic,
// derived only from the request, never from the network.
type PredictionResponse struct {
	// Term echoes the search term from the request.
	Term string `json:"term" yaml:"term"`

	// Period echoes the requested period, defaulting to "3" when omitted.
	Period string `json:"period" yaml:"period"`

	// Predictions always holds exactly three entries.
	Predictions []Prediction `json:"predictions" yaml:"predictions"`
}
