package http

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http/httptest"
	"strings"
	"testing"

	inspection "inspection-cloud/internal/inspection/domain"
	"inspection-cloud/internal/prediction/application"
	prediction "inspection-cloud/internal/prediction/domain"
	"inspection-cloud/internal/prediction/engine"
)

type stubInspectionRepo struct {
	items map[int64]inspection.Inspection
}

func (s stubInspectionRepo) GetByID(_ context.Context, id int64) (*inspection.Inspection, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, inspection.ErrNotFound
	}
	return &item, nil
}

func (s stubInspectionRepo) ListByStatus(_ context.Context, status inspection.Status) ([]inspection.Inspection, error) {
	items := make([]inspection.Inspection, 0)
	for _, item := range s.items {
		if item.Status == status {
			items = append(items, item)
		}
	}
	return items, nil
}

type memoryAssessmentRepo struct {
	items []prediction.Assessment
}

func (m *memoryAssessmentRepo) InsertAssessment(_ context.Context, reading *prediction.SensorReading, pred *prediction.FailurePrediction) error {
	reading.ID = int64(len(m.items) + 1)
	pred.ID = reading.ID
	pred.SensorReadingID = reading.ID
	m.items = append([]prediction.Assessment{{Reading: *reading, Prediction: *pred}}, m.items...)
	return nil
}

func (m *memoryAssessmentRepo) LatestByInspection(_ context.Context, _ int64) (*prediction.Assessment, error) {
	if len(m.items) == 0 {
		return nil, prediction.ErrNoAssessment
	}
	return &m.items[0], nil
}

func (m *memoryAssessmentRepo) HistoryByInspection(_ context.Context, _ int64, limit int) ([]prediction.Assessment, error) {
	if limit > 0 && limit < len(m.items) {
		return m.items[:limit], nil
	}
	return m.items, nil
}

type stubSource struct{}

func (stubSource) Read(_ context.Context, _ inspection.Inspection) (application.ReadingInput, error) {
	pressure := 9.0
	return application.ReadingInput{Pressure: &pressure}, nil
}

func newTestHandler(t *testing.T, items map[int64]inspection.Inspection) (*Handler, *memoryAssessmentRepo) {
	t.Helper()
	repo := &memoryAssessmentRepo{}
	service, err := application.NewService(
		stubInspectionRepo{items: items},
		repo,
		stubSource{},
		log.New(io.Discard, "", 0),
		application.WithEngine(engine.New(engine.WithJitterSource(func() float64 { return 0 }))),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	handler, err := NewHandler(service)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	return handler, repo
}

func TestHandleAssessCreated(t *testing.T) {
	handler, repo := newTestHandler(t, map[int64]inspection.Inspection{
		7: {ID: 7, Status: inspection.StatusInProgress},
	})

	body := strings.NewReader(`{"pressure": 22, "temperature": 125, "wall_thickness": 4.5, "corrosion_rate": 0.6, "vibration": 8.0, "flow_rate": 110, "recorded_by_id": 1}`)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/inspections/7/assessments", body))

	if rec.Code != 201 {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	var resp assessmentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Prediction.Priority != "critical" {
		t.Fatalf("priority = %q, want critical", resp.Prediction.Priority)
	}
	if len(repo.items) != 1 {
		t.Fatalf("stored %d assessments, want 1", len(repo.items))
	}
}

func TestHandlePollNotFoundAndNotEligible(t *testing.T) {
	handler, _ := newTestHandler(t, map[int64]inspection.Inspection{
		8: {ID: 8, Status: inspection.StatusCompleted},
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/inspections/999/assessments/poll", nil))
	if rec.Code != 404 {
		t.Fatalf("missing inspection status = %d, want 404", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/inspections/8/assessments/poll", nil))
	if rec.Code != 409 {
		t.Fatalf("ineligible inspection status = %d, want 409", rec.Code)
	}
}

func TestHandleLatestEmpty(t *testing.T) {
	handler, _ := newTestHandler(t, map[int64]inspection.Inspection{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/inspections/7/assessments/latest", nil))
	if rec.Code != 404 {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHandleHistoryWithLimit(t *testing.T) {
	handler, _ := newTestHandler(t, map[int64]inspection.Inspection{
		7: {ID: 7, Status: inspection.StatusInProgress},
	})

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/inspections/7/assessments/poll", nil))
		if rec.Code != 201 {
			t.Fatalf("poll status = %d, want 201", rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/inspections/7/assessments?limit=2", nil))
	if rec.Code != 200 {
		t.Fatalf("history status = %d, want 200", rec.Code)
	}
	var items []assessmentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("history returned %d items, want 2", len(items))
	}
}

func TestHandleExportFormats(t *testing.T) {
	handler, _ := newTestHandler(t, map[int64]inspection.Inspection{
		7: {ID: 7, Status: inspection.StatusInProgress},
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/inspections/7/assessments/poll", nil))
	if rec.Code != 201 {
		t.Fatalf("poll status = %d, want 201", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/inspections/7/assessments/export?format=xlsx", nil))
	if rec.Code != 200 {
		t.Fatalf("xlsx export status = %d, want 200", rec.Code)
	}
	if rec.Body.Len() == 0 {
		t.Fatalf("xlsx export returned empty body")
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/inspections/7/assessments/export?format=pdf", nil))
	if rec.Code != 200 {
		t.Fatalf("pdf export status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/inspections/7/assessments/export?format=csv", nil))
	if rec.Code != 400 {
		t.Fatalf("unknown format status = %d, want 400", rec.Code)
	}
}

func TestInvalidInspectionID(t *testing.T) {
	handler, _ := newTestHandler(t, map[int64]inspection.Inspection{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/inspections/abc/assessments", nil))
	if rec.Code != 400 {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
