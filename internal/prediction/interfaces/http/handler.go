package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"inspection-cloud/internal/prediction/application"
	prediction "inspection-cloud/internal/prediction/domain"
	"inspection-cloud/internal/prediction/interfaces"
)

const basePath = "/api/v1/inspections/"

// Handler provides assessment HTTP endpoints.
type Handler struct {
	service *application.Service
}

// NewHandler constructs a handler.
func NewHandler(service *application.Service) (*Handler, error) {
	if service == nil {
		return nil, errors.New("assessment handler: nil service")
	}
	return &Handler{service: service}, nil
}

type readingRequest struct {
	Pressure      *float64 `json:"pressure"`
	Temperature   *float64 `json:"temperature"`
	WallThickness *float64 `json:"wall_thickness"`
	CorrosionRate *float64 `json:"corrosion_rate"`
	Vibration     *float64 `json:"vibration"`
	FlowRate      *float64 `json:"flow_rate"`
	Notes         string   `json:"notes"`
	RecordedByID  int64    `json:"recorded_by_id"`
}

type readingResponse struct {
	ID            int64    `json:"id"`
	InspectionID  int64    `json:"inspection_id"`
	Pressure      *float64 `json:"pressure,omitempty"`
	Temperature   *float64 `json:"temperature,omitempty"`
	WallThickness *float64 `json:"wall_thickness,omitempty"`
	CorrosionRate *float64 `json:"corrosion_rate,omitempty"`
	Vibration     *float64 `json:"vibration,omitempty"`
	FlowRate      *float64 `json:"flow_rate,omitempty"`
	Notes         string   `json:"notes,omitempty"`
	RecordedByID  int64    `json:"recorded_by_id"`
	RecordedAt    string   `json:"recorded_at"`
}

type predictionResponse struct {
	ID                   int64   `json:"id"`
	SensorReadingID      int64   `json:"sensor_reading_id"`
	InspectionID         int64   `json:"inspection_id"`
	ProbabilityOfFailure float64 `json:"probability_of_failure"`
	ConsequenceOfFailure string  `json:"consequence_of_failure"`
	ConfidenceScore      float64 `json:"confidence_score"`
	RiskScore            float64 `json:"risk_score"`
	RecommendedAction    string  `json:"recommended_action"`
	Priority             string  `json:"priority"`
	ModelVersion         string  `json:"model_version"`
	PredictedAt          string  `json:"predicted_at"`
}

type assessmentResponse struct {
	Reading    readingResponse    `json:"sensor_reading"`
	Prediction predictionResponse `json:"prediction"`
}

// ServeHTTP handles /api/v1/inspections/{id}/assessments and subroutes.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.URL.Path, basePath) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, basePath), "/")
	if len(parts) < 2 || parts[1] != "assessments" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	inspectionID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || inspectionID <= 0 {
		http.Error(w, "invalid inspection id", http.StatusBadRequest)
		return
	}

	switch {
	case len(parts) == 2 && r.Method == http.MethodPost:
		h.handleAssess(w, r, inspectionID)
	case len(parts) == 2 && r.Method == http.MethodGet:
		h.handleHistory(w, r, inspectionID)
	case len(parts) == 3 && parts[2] == "poll" && r.Method == http.MethodPost:
		h.handlePoll(w, r, inspectionID)
	case len(parts) == 3 && parts[2] == "latest" && r.Method == http.MethodGet:
		h.handleLatest(w, r, inspectionID)
	case len(parts) == 3 && parts[2] == "export" && r.Method == http.MethodGet:
		h.handleExport(w, r, inspectionID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleAssess(w http.ResponseWriter, r *http.Request, inspectionID int64) {
	var req readingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	input := application.ReadingInput{
		Pressure:      req.Pressure,
		Temperature:   req.Temperature,
		WallThickness: req.WallThickness,
		CorrosionRate: req.CorrosionRate,
		Vibration:     req.Vibration,
		FlowRate:      req.FlowRate,
		Notes:         req.Notes,
	}
	result, err := h.service.Assess(r.Context(), inspectionID, input, req.RecordedByID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toAssessmentResponse(*result))
}

func (h *Handler) handlePoll(w http.ResponseWriter, r *http.Request, inspectionID int64) {
	result, err := h.service.TriggerPoll(r.Context(), inspectionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toAssessmentResponse(*result))
}

func (h *Handler) handleLatest(w http.ResponseWriter, r *http.Request, inspectionID int64) {
	result, err := h.service.Latest(r.Context(), inspectionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toAssessmentResponse(*result))
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request, inspectionID int64) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	items, err := h.service.History(r.Context(), inspectionID, limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	responses := make([]assessmentResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, toAssessmentResponse(item))
	}
	respondJSON(w, http.StatusOK, responses)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request, inspectionID int64) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "xlsx"
	}

	items, err := h.service.History(r.Context(), inspectionID, 0)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	switch format {
	case "xlsx":
		data, err := interfaces.BuildHistoryXLSX(inspectionID, items)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", exportFilename(inspectionID, "xlsx"))
		_, _ = w.Write(data)
	case "pdf":
		data, err := interfaces.BuildHistoryPDF(inspectionID, items)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", exportFilename(inspectionID, "pdf"))
		_, _ = w.Write(data)
	default:
		http.Error(w, "format must be xlsx or pdf", http.StatusBadRequest)
	}
}

func exportFilename(inspectionID int64, ext string) string {
	return "attachment; filename=assessments-" + strconv.FormatInt(inspectionID, 10) + "." + ext
}

func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, prediction.ErrInspectionNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, prediction.ErrNoAssessment):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, prediction.ErrInspectionNotEligible):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func toAssessmentResponse(item prediction.Assessment) assessmentResponse {
	return assessmentResponse{
		Reading: readingResponse{
			ID:            item.Reading.ID,
			InspectionID:  item.Reading.InspectionID,
			Pressure:      item.Reading.Pressure,
			Temperature:   item.Reading.Temperature,
			WallThickness: item.Reading.WallThickness,
			CorrosionRate: item.Reading.CorrosionRate,
			Vibration:     item.Reading.Vibration,
			FlowRate:      item.Reading.FlowRate,
			Notes:         item.Reading.Notes,
			RecordedByID:  item.Reading.RecordedByID,
			RecordedAt:    item.Reading.RecordedAt.Format(time.RFC3339),
		},
		Prediction: predictionResponse{
			ID:                   item.Prediction.ID,
			SensorReadingID:      item.Prediction.SensorReadingID,
			InspectionID:         item.Prediction.InspectionID,
			ProbabilityOfFailure: item.Prediction.ProbabilityOfFailure,
			ConsequenceOfFailure: string(item.Prediction.ConsequenceOfFailure),
			ConfidenceScore:      item.Prediction.ConfidenceScore,
			RiskScore:            item.Prediction.RiskScore,
			RecommendedAction:    item.Prediction.RecommendedAction,
			Priority:             string(item.Prediction.Priority),
			ModelVersion:         item.Prediction.ModelVersion,
			PredictedAt:          item.Prediction.PredictedAt.Format(time.RFC3339),
		},
	}
}
