// Data Explorer - Token-gated Analytics Query Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dataexplorer

package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/dataexplorer/internal/models"
	"github.com/tomtom215/dataexplorer/internal/query"
)

// ListDatasets handles list_datasets
//
// @Summary List datasets
// @Description Returns the whitelisted datasets in catalog order
// @Tags Share
// @Produce json
// @Param token path string true "Share token"
// @Success 200 {object} models.APIResponse{data=[]models.DatasetSummary} "Datasets"
// @Failure 401 {object} models.APIResponse "Invalid or inactive share token"
// @Router /share/{token}/datasets [get]
func (h *Handler) ListDatasets(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.explorer.ListDatasets(r.Context(), shareToken(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	out := make([]models.DatasetSummary, len(summaries))
	for i, s := range summaries {
		out[i] = models.DatasetSummary{ID: s.ID, Label: s.Label}
	}
	respondSuccess(w, r, out)
}

// GetFields handles get_dataset_fields
//
// @Summary List dataset fields
// @Description Returns the dimension and measure names of one dataset
// @Tags Share
// @Produce json
// @Param token path string true "Share token"
// @Param dataset_id path string true "Dataset id" example(orders)
// @Success 200 {object} models.APIResponse{data=models.DatasetFields} "Fields"
// @Failure 401 {object} models.APIResponse "Invalid or inactive share token"
// @Failure 404 {object} models.APIResponse "Dataset not found"
// @Router /share/{token}/dataset/{dataset_id}/fields [get]
func (h *Handler) GetFields(w http.ResponseWriter, r *http.Request) {
	fields, err := h.explorer.GetFields(r.Context(), shareToken(r), chi.URLParam(r, "dataset_id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, models.DatasetFields{
		Dimensions: fields.Dimensions,
		Measures:   fields.Measures,
	})
}

// ExecuteQuery handles execute_query
//
// @Summary Run an aggregation query
// @Description Aggregates one measure by one dimension over [date_from, date_to), optionally filtered by platform
// @Tags Share
// @Accept json
// @Produce json
// @Param token path string true "Share token"
// @Param request body models.QueryRequest true "Query"
// @Success 200 {object} models.APIResponse{data=models.QueryResult} "Rows"
// @Failure 400 {object} models.APIResponse "Invalid request; details.valid_options lists allowed fields"
// @Failure 401 {object} models.APIResponse "Invalid or inactive share token"
// @Failure 404 {object} models.APIResponse "Dataset not found"
// @Failure 502 {object} models.APIResponse "Data source failed; details.hint explains"
// @Router /share/{token}/query [post]
func (h *Handler) ExecuteQuery(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var body models.QueryRequest
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxQueryBodyBytes))
	if err == nil {
		err = json.Unmarshal(raw, &body)
	}
	if err != nil {
		// The token is still checked first so that a bad token never
		// learns more than 401.
		if authErr := h.explorer.Authorize(shareToken(r)); authErr != nil {
			respondServiceError(w, r, authErr)
			return
		}
		message := "Request body must be a JSON query object"
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			message = "Request body too large"
		}
		respondError(w, r, http.StatusBadRequest, ErrCodeInvalidJSON, message, nil)
		return
	}

	resp, err := h.explorer.ExecuteQuery(r.Context(), shareToken(r), query.Request{
		DatasetID: body.DatasetID,
		Dimension: body.Dimension,
		Measure:   body.Measure,
		DateFrom:  body.DateFrom,
		DateTo:    body.DateTo,
		Platform:  body.Platform,
		Limit:     body.Limit,
		Order:     body.Order,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	meta := newMetadata(r)
	meta.QueryTimeMS = time.Since(start).Milliseconds()
	meta.Engine = h.explorer.EngineName()
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   models.StatusSuccess,
		Data:     models.QueryResult{Rows: resp.Rows},
		Metadata: meta,
	})
}
