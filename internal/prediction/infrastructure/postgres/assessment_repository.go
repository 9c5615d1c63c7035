package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	prediction "inspection-cloud/internal/prediction/domain"
)

const (
	defaultReadingTable    = "sensor_readings"
	defaultPredictionTable = "failure_predictions"
	defaultHistoryLimit    = 50
)

// AssessmentRepository is a Postgres implementation for sensor readings and
// their failure predictions.
type AssessmentRepository struct {
	db              *sql.DB
	readingTable    string
	predictionTable string
}

// RepositoryOption configures the repository.
type RepositoryOption func(*AssessmentRepository)

// WithReadingTable overrides the default sensor reading table name.
func WithReadingTable(table string) RepositoryOption {
	return func(repo *AssessmentRepository) {
		if table != "" {
			repo.readingTable = table
		}
	}
}

// WithPredictionTable overrides the default prediction table name.
func WithPredictionTable(table string) RepositoryOption {
	return func(repo *AssessmentRepository) {
		if table != "" {
			repo.predictionTable = table
		}
	}
}

// NewAssessmentRepository constructs a repository with default table names.
func NewAssessmentRepository(db *sql.DB, opts ...RepositoryOption) *AssessmentRepository {
	repo := &AssessmentRepository{
		db:              db,
		readingTable:    defaultReadingTable,
		predictionTable: defaultPredictionTable,
	}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// InsertAssessment stores a reading and its prediction in one transaction.
// Either both rows commit or neither does; a reading is never left without
// its prediction.
func (r *AssessmentRepository) InsertAssessment(ctx context.Context, reading *prediction.SensorReading, pred *prediction.FailurePrediction) error {
	if r == nil || r.db == nil {
		return errors.New("assessment repo: nil db")
	}
	if reading == nil || pred == nil {
		return errors.New("assessment repo: nil reading or prediction")
	}
	if reading.InspectionID == 0 || reading.RecordedAt.IsZero() {
		return errors.New("assessment repo: invalid reading")
	}
	if !pred.ConsequenceOfFailure.Valid() || !pred.Priority.Valid() {
		return errors.New("assessment repo: invalid prediction levels")
	}

	readingQuery := fmt.Sprintf(`
INSERT INTO %s (
	inspection_id,
	pressure,
	temperature,
	wall_thickness,
	corrosion_rate,
	vibration,
	flow_rate,
	notes,
	recorded_by_id,
	recorded_at
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
)
RETURNING id`, r.readingTable)

	predictionQuery := fmt.Sprintf(`
INSERT INTO %s (
	sensor_reading_id,
	inspection_id,
	probability_of_failure,
	consequence_of_failure,
	confidence_score,
	risk_score,
	recommended_action,
	priority,
	model_version,
	predicted_at
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
)
RETURNING id`, r.predictionTable)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	row := tx.QueryRowContext(
		ctx,
		readingQuery,
		reading.InspectionID,
		nullFloat(reading.Pressure),
		nullFloat(reading.Temperature),
		nullFloat(reading.WallThickness),
		nullFloat(reading.CorrosionRate),
		nullFloat(reading.Vibration),
		nullFloat(reading.FlowRate),
		reading.Notes,
		reading.RecordedByID,
		reading.RecordedAt,
	)
	if err := row.Scan(&reading.ID); err != nil {
		_ = tx.Rollback()
		return err
	}

	pred.SensorReadingID = reading.ID
	row = tx.QueryRowContext(
		ctx,
		predictionQuery,
		pred.SensorReadingID,
		pred.InspectionID,
		pred.ProbabilityOfFailure,
		string(pred.ConsequenceOfFailure),
		pred.ConfidenceScore,
		pred.RiskScore,
		pred.RecommendedAction,
		string(pred.Priority),
		pred.ModelVersion,
		pred.PredictedAt,
	)
	if err := row.Scan(&pred.ID); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// LatestByInspection returns the newest assessment for an inspection or
// prediction.ErrNoAssessment.
func (r *AssessmentRepository) LatestByInspection(ctx context.Context, inspectionID int64) (*prediction.Assessment, error) {
	items, err := r.HistoryByInspection(ctx, inspectionID, 1)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, prediction.ErrNoAssessment
	}
	return &items[0], nil
}

// HistoryByInspection returns assessments newest-first, bounded by limit.
func (r *AssessmentRepository) HistoryByInspection(ctx context.Context, inspectionID int64, limit int) ([]prediction.Assessment, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("assessment repo: nil db")
	}
	if inspectionID == 0 {
		return nil, errors.New("assessment repo: invalid inspection id")
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	query := fmt.Sprintf(`
SELECT
	sr.id, sr.inspection_id, sr.pressure, sr.temperature, sr.wall_thickness,
	sr.corrosion_rate, sr.vibration, sr.flow_rate, sr.notes, sr.recorded_by_id, sr.recorded_at,
	fp.id, fp.probability_of_failure, fp.consequence_of_failure, fp.confidence_score,
	fp.risk_score, fp.recommended_action, fp.priority, fp.model_version, fp.predicted_at
FROM %s sr
JOIN %s fp ON fp.sensor_reading_id = sr.id
WHERE sr.inspection_id = $1
ORDER BY sr.recorded_at DESC, sr.id DESC
LIMIT $2`, r.readingTable, r.predictionTable)

	rows, err := r.db.QueryContext(ctx, query, inspectionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]prediction.Assessment, 0, limit)
	for rows.Next() {
		var item prediction.Assessment
		var pressure, temperature, thickness, corrosion, vibration, flow sql.NullFloat64
		var consequence, priority string
		if err := rows.Scan(
			&item.Reading.ID,
			&item.Reading.InspectionID,
			&pressure,
			&temperature,
			&thickness,
			&corrosion,
			&vibration,
			&flow,
			&item.Reading.Notes,
			&item.Reading.RecordedByID,
			&item.Reading.RecordedAt,
			&item.Prediction.ID,
			&item.Prediction.ProbabilityOfFailure,
			&consequence,
			&item.Prediction.ConfidenceScore,
			&item.Prediction.RiskScore,
			&item.Prediction.RecommendedAction,
			&priority,
			&item.Prediction.ModelVersion,
			&item.Prediction.PredictedAt,
		); err != nil {
			return nil, err
		}
		item.Reading.Pressure = floatPtr(pressure)
		item.Reading.Temperature = floatPtr(temperature)
		item.Reading.WallThickness = floatPtr(thickness)
		item.Reading.CorrosionRate = floatPtr(corrosion)
		item.Reading.Vibration = floatPtr(vibration)
		item.Reading.FlowRate = floatPtr(flow)
		item.Prediction.SensorReadingID = item.Reading.ID
		item.Prediction.InspectionID = item.Reading.InspectionID
		item.Prediction.ConsequenceOfFailure = prediction.ConsequenceLevel(consequence)
		item.Prediction.Priority = prediction.PriorityLevel(priority)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func nullFloat(value *float64) sql.NullFloat64 {
	if value == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *value, Valid: true}
}

func floatPtr(value sql.NullFloat64) *float64 {
	if !value.Valid {
		return nil
	}
	v := value.Float64
	return &v
}
