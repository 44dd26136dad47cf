package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Tesis-SiembraSmart/api-modelos/internal/common/logger"
	"github.com/Tesis-SiembraSmart/api-modelos/internal/inference"
	"github.com/Tesis-SiembraSmart/api-modelos/internal/prediction"
	"github.com/Tesis-SiembraSmart/api-modelos/pkg/registry"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, engines map[string]inference.Engine) *Server {
	t.Helper()
	profiles, err := prediction.NewRegistry(prediction.DefaultProfiles()...)
	require.NoError(t, err)

	testLog := logger.NewTestLogger(t)
	d := prediction.NewDispatcher(profiles, inference.NewRegistry(engines), testLog)
	return New(Options{Predictor: d, Crops: d, Logger: testLog, Mode: gin.TestMode, Version: "test"})
}

func constant(v float64) inference.Engine {
	return inference.EngineFunc(func(context.Context, []float64) (float64, error) { return v, nil })
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestRoot(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(t, s, http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Modelo de predicciones de cultivos listo"}`, rec.Body.String())
	_, err := uuid.Parse(rec.Header().Get(RequestIDHeader))
	assert.NoError(t, err)
}

func TestPredict_Cacao(t *testing.T) {
	s := newTestServer(t, map[string]inference.Engine{"cacao": constant(0.25)})

	rec := do(t, s, http.MethodPost, "/predict",
		`{"crop_type":"CACAO","parameters":{"Area_Sembrada":10,"Area_Cosechada":9,"Produccion":5}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp prediction.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Cacao", resp.Modelo)
	assert.Equal(t, 0.25, resp.RendimientoPredicho)
	assert.Equal(t, "bajo", resp.Clasificacion)
	assert.Len(t, resp.Consejos, 4)
}

func TestPredict_Errors(t *testing.T) {
	tests := []struct {
		name       string
		engines    map[string]inference.Engine
		body       string
		wantStatus int
		wantCode   string
		wantFields []string
		wantDetail string
	}{
		{
			name:       "malformed body",
			body:       `{"crop_type":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_REQUEST",
		},
		{
			name:       "missing crop_type",
			body:       `{"parameters":{}}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_REQUEST",
		},
		{
			name:       "unsupported crop",
			body:       `{"crop_type":"arroz","parameters":{}}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "UNSUPPORTED_CROP",
			wantDetail: "Tipo de cultivo no soportado",
		},
		{
			name:       "missing fields",
			engines:    map[string]inference.Engine{"cacao": constant(1)},
			body:       `{"crop_type":"cacao","parameters":{"Area_Sembrada":10}}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "MISSING_FIELDS",
			wantFields: []string{"Area_Cosechada", "Produccion"},
			wantDetail: "Datos de entrada incompletos para cacao. Faltan los siguientes campos: Area_Cosechada, Produccion",
		},
		{
			name:       "non numeric parameter",
			engines:    map[string]inference.Engine{"cacao": constant(1)},
			body:       `{"crop_type":"cacao","parameters":{"Area_Sembrada":"diez","Area_Cosechada":9,"Produccion":5}}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_PARAMETERS",
			wantFields: []string{"Area_Sembrada"},
		},
		{
			name: "inference failure",
			engines: map[string]inference.Engine{"cacao": inference.EngineFunc(
				func(context.Context, []float64) (float64, error) { return 0, errors.New("session closed") })},
			body:       `{"crop_type":"cacao","parameters":{"Area_Sembrada":10,"Area_Cosechada":9,"Produccion":5}}`,
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INFERENCE_FAILED",
			wantDetail: "Error en la predicción de cacao: session closed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, tt.engines)
			rec := do(t, s, http.MethodPost, "/predict", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.Equal(t, tt.wantFields, resp.Fields)
			assert.NotEmpty(t, resp.RequestID)
			if tt.wantDetail != "" {
				assert.Equal(t, tt.wantDetail, resp.Detail)
			}
		})
	}
}

func TestPredict_ClassificationUndefined(t *testing.T) {
	s := newTestServer(t, map[string]inference.Engine{"cafe": constant(203.5)})

	params := map[string]interface{}{"Year": 2020}
	for _, name := range prediction.EconomicFields("coffee") {
		params[name] = 100
	}
	body, err := json.Marshal(map[string]interface{}{"crop_type": "cafe", "parameters": params})
	require.NoError(t, err)

	rec := do(t, s, http.MethodPost, "/predict", string(body))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "CLASSIFICATION_UNDEFINED", decodeError(t, rec).Code)
}

func TestPredict_RequestIDPropagated(t *testing.T) {
	s := newTestServer(t, nil)
	id := uuid.NewString()

	req := httptest.NewRequest(http.MethodPost, "/predict", bytes.NewReader([]byte(`{"crop_type":"x"}`)))
	req.Header.Set(RequestIDHeader, id)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, id, rec.Header().Get(RequestIDHeader))
	assert.Equal(t, id, decodeError(t, rec).RequestID)
}

func TestReady(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(t, s, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	s = newTestServer(t, map[string]inference.Engine{"maiz": constant(1), "cacao": constant(1)})
	rec = do(t, s, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ready","crops":["cacao","maiz"]}`, rec.Body.String())
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(t, nil), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
}

func TestCrops(t *testing.T) {
	s := newTestServer(t, map[string]inference.Engine{"cafe": constant(1)})
	rec := do(t, s, http.MethodGet, "/crops", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var cat registry.CropCatalog
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cat))
	require.Len(t, cat.Crops, 3)

	cafe, ok := cat.Find("cafe")
	require.True(t, ok)
	assert.Equal(t, registry.StatusLoaded, cafe.Status)
	assert.Equal(t, 14, cafe.VectorArity)

	cacao, ok := cat.Find("cacao")
	require.True(t, ok)
	assert.Equal(t, registry.StatusUnavailable, cacao.Status)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, map[string]inference.Engine{"cacao": constant(0.5)})
	do(t, s, http.MethodPost, "/predict",
		`{"crop_type":"cacao","parameters":{"Area_Sembrada":1,"Area_Cosechada":1,"Produccion":1}}`)

	rec := do(t, s, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "crop_predictions_total")
}
