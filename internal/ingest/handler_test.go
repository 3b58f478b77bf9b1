package ingest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ekremunalytu/CDTPBackend/internal/repository"
)

func setupRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock, func()) {
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	handler := NewHandler(repository.NewBatchRepository(db, zap.NewNop()), zap.NewNop())
	router := gin.New()
	handler.RegisterRoutes(router)

	return router, mock, func() { db.Close() }
}

func validBody() map[string]interface{} {
	return map[string]interface{}{
		"patient_id": "patient-1",
		"timestamp":  1700000000.5,
		"accelerometer": map[string][]float64{
			"x": {0.1, 0.2},
			"y": {0.0, 0.0},
			"z": {0.98, 0.99},
		},
		"gyroscope": map[string][]float64{
			"x": {0, 0},
			"y": {0, 0},
			"z": {0, 0},
		},
		"ppg_raw": []int{2000, 2100},
	}
}

func postIngest(router *gin.Engine, body interface{}) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestIngestSensorData_Accepted(t *testing.T) {
	router, mock, cleanup := setupRouter(t)
	defer cleanup()

	mock.ExpectQuery(`INSERT INTO sensor_data_queue`).
		WithArgs("patient-1", 1700000000.5, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), time.Now()))

	w := postIngest(router, validBody())

	assert.Equal(t, http.StatusAccepted, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "Data queued", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIngestSensorData_MissingPatientID(t *testing.T) {
	router, _, cleanup := setupRouter(t)
	defer cleanup()

	body := validBody()
	delete(body, "patient_id")

	w := postIngest(router, body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIngestSensorData_MissingAccelerometer(t *testing.T) {
	router, _, cleanup := setupRouter(t)
	defer cleanup()

	body := validBody()
	delete(body, "accelerometer")

	w := postIngest(router, body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIngestSensorData_MalformedJSON(t *testing.T) {
	router, _, cleanup := setupRouter(t)
	defer cleanup()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ingest", bytes.NewReader([]byte("not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIngestSensorData_DatabaseUnavailable(t *testing.T) {
	router, mock, cleanup := setupRouter(t)
	defer cleanup()

	mock.ExpectQuery(`INSERT INTO sensor_data_queue`).
		WillReturnError(assert.AnError)

	w := postIngest(router, validBody())

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["success"])
}

func TestHealth(t *testing.T) {
	router, _, cleanup := setupRouter(t)
	defer cleanup()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestValidateRequest_MQTTPath(t *testing.T) {
	req := &SensorDataRequest{
		PatientID: "patient-1",
		Timestamp: 1700000000,
		Accelerometer: AxisPayload{
			X: []float64{0.1}, Y: []float64{0.1}, Z: []float64{0.98},
		},
		Gyroscope: AxisPayload{
			X: []float64{0}, Y: []float64{0}, Z: []float64{0},
		},
	}
	assert.NoError(t, validateRequest(req))

	req.PatientID = ""
	assert.Error(t, validateRequest(req))

	req.PatientID = "patient-1"
	req.Accelerometer.Z = nil
	assert.Error(t, validateRequest(req))
}
