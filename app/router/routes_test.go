package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/amirphl/dispupr-numbering/app/handlers"
	"github.com/amirphl/dispupr-numbering/app/router"
	businessflow "github.com/amirphl/dispupr-numbering/business_flow"
	"github.com/amirphl/dispupr-numbering/config"
	"github.com/amirphl/dispupr-numbering/repository"
	testingutil "github.com/amirphl/dispupr-numbering/testing"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string          `json:"code"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func testConfig() *config.ProductionConfig {
	return &config.ProductionConfig{
		Server: config.ServerConfig{
			BodyLimit:    1 << 20,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
			IdleTimeout:  5 * time.Second,
			UserIDHeader: "X-User-ID",
		},
		Security: config.SecurityConfig{
			AllowedOrigins:     []string{"http://localhost:3000"},
			CORSMaxAge:         60,
			GlobalRateLimit:    1000,
			GenerateRateLimit:  1000,
			RateLimitWindow:    time.Minute,
			ContentSecurityPol: "default-src 'self'",
		},
		Metrics: config.MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Deployment: config.DeploymentConfig{
			Environment: "production",
			Version:     "test-version",
		},
	}
}

func newTestApp(testDB *testingutil.TestDB, cfg *config.ProductionConfig) *fiber.App {
	counterRepo := repository.NewCounterRepository(testDB.DB)
	generator := businessflow.NewGenerator(counterRepo)
	bastFlow := businessflow.NewBastFlow(repository.NewBastRecordRepository(testDB.DB), generator, nil, testDB.DB)
	contractFlow := businessflow.NewContractFlow(repository.NewContractRecordRepository(testDB.DB), generator, nil, testDB.DB)

	r := router.NewFiberRouter(
		cfg,
		io.Discard,
		handlers.NewBastHandler(bastFlow),
		handlers.NewContractHandler(contractFlow),
		handlers.NewCounterHandler(businessflow.NewCounterFlow(counterRepo)),
	)
	r.SetupRoutes()
	return r.GetApp()
}

func doRequest(t *testing.T, app *fiber.App, method, target string, body any, headers map[string]string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = strings.NewReader(b)
		default:
			bs, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewReader(bs)
		}
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := app.Test(req, fiber.TestConfig{Timeout: 10 * time.Second, FailOnTimeout: true})
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return env
}

func TestHealthAndFallbackRoutes(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		app := newTestApp(testDB, testConfig())

		t.Run("Health", func(t *testing.T) {
			resp := doRequest(t, app, fiber.MethodGet, "/api/v1/health", nil, nil)
			assert.Equal(t, fiber.StatusOK, resp.StatusCode)
			assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

			env := decode(t, resp)
			assert.True(t, env.Success)
			var data map[string]any
			require.NoError(t, json.Unmarshal(env.Data, &data))
			assert.Equal(t, "ok", data["status"])
			assert.Equal(t, "test-version", data["version"])
		})

		t.Run("UnknownRoute", func(t *testing.T) {
			resp := doRequest(t, app, fiber.MethodGet, "/api/v1/nothing-here", nil, nil)
			assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
			assert.Equal(t, "NOT_FOUND", decode(t, resp).Error.Code)
		})

		t.Run("DocsHiddenInProduction", func(t *testing.T) {
			resp := doRequest(t, app, fiber.MethodGet, "/api/v1/docs", nil, nil)
			assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
		})
		return nil
	})
	require.NoError(t, err)
}

func TestDocsInDevelopment(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		cfg := testConfig()
		cfg.Deployment.Environment = "development"
		app := newTestApp(testDB, cfg)

		resp := doRequest(t, app, fiber.MethodGet, "/api/v1/docs", nil, nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		env := decode(t, resp)
		assert.Contains(t, string(env.Data), "/api/v1/bast/generate")

		resp = doRequest(t, app, fiber.MethodGet, "/api/v1/swagger.json", nil, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		var doc map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
		resp.Body.Close()
		assert.Equal(t, "2.0", doc["swagger"])
		paths, ok := doc["paths"].(map[string]any)
		require.True(t, ok)
		assert.Contains(t, paths, "/api/v1/contract/generate")
		return nil
	})
	require.NoError(t, err)
}

func TestBastEndpoints(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		app := newTestApp(testDB, testConfig())

		var firstID uint
		t.Run("Generate", func(t *testing.T) {
			resp := doRequest(t, app, fiber.MethodPost, "/api/v1/bast/generate", map[string]any{
				"project_name": "Jembatan Kali Bening",
				"bast_date":    "2025-03-14",
				"company_name": "CV Maju",
			}, map[string]string{"X-User-ID": "clerk-9"})
			require.Equal(t, fiber.StatusCreated, resp.StatusCode)

			env := decode(t, resp)
			assert.True(t, env.Success)
			var data struct {
				ID         uint   `json:"id"`
				BastNumber string `json:"bast_number"`
				Sequence   int64  `json:"sequence"`
			}
			require.NoError(t, json.Unmarshal(env.Data, &data))
			assert.Equal(t, "01/BAST-BM/III/2025", data.BastNumber)
			assert.Equal(t, int64(1), data.Sequence)
			firstID = data.ID

			resp = doRequest(t, app, fiber.MethodPost, "/api/v1/bast/generate", map[string]any{
				"project_name": "Talud Sungai",
				"bast_date":    "2025-03-02",
			}, nil)
			require.Equal(t, fiber.StatusCreated, resp.StatusCode)
			require.NoError(t, json.Unmarshal(decode(t, resp).Data, &data))
			assert.Equal(t, "02/BAST-BM/III/2025", data.BastNumber)
		})

		t.Run("GenerateValidation", func(t *testing.T) {
			tests := []struct {
				name string
				body any
				code string
			}{
				{name: "malformed json", body: `{"project_name":`, code: "INVALID_REQUEST"},
				{name: "missing project", body: map[string]any{"bast_date": "2025-03-14"}, code: "VALIDATION_ERROR"},
				{name: "impossible date", body: map[string]any{"project_name": "X", "bast_date": "2025-02-30"}, code: "VALIDATION_ERROR"},
				{name: "wrong date format", body: map[string]any{"project_name": "X", "bast_date": "14/03/2025"}, code: "VALIDATION_ERROR"},
				{name: "blank project", body: map[string]any{"project_name": "   ", "bast_date": "2025-03-14"}, code: "PROJECT_NAME_REQUIRED"},
			}
			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					resp := doRequest(t, app, fiber.MethodPost, "/api/v1/bast/generate", tt.body, nil)
					assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
					assert.Equal(t, tt.code, decode(t, resp).Error.Code)
				})
			}
		})

		t.Run("ListRecordsOperator", func(t *testing.T) {
			resp := doRequest(t, app, fiber.MethodGet, "/api/v1/bast/records?year=2025&limit=1", nil, nil)
			require.Equal(t, fiber.StatusOK, resp.StatusCode)

			var data struct {
				Records []struct {
					ID         uint    `json:"id"`
					BastNumber string  `json:"bast_number"`
					UserID     *string `json:"user_id"`
				} `json:"records"`
				Total int64 `json:"total"`
				Limit int   `json:"limit"`
			}
			require.NoError(t, json.Unmarshal(decode(t, resp).Data, &data))
			assert.Equal(t, int64(2), data.Total)
			assert.Equal(t, 1, data.Limit)
			require.Len(t, data.Records, 1)
			assert.Equal(t, "02/BAST-BM/III/2025", data.Records[0].BastNumber)
			assert.Nil(t, data.Records[0].UserID)

			resp = doRequest(t, app, fiber.MethodGet, "/api/v1/bast/records?offset=1", nil, nil)
			require.NoError(t, json.Unmarshal(decode(t, resp).Data, &data))
			require.Len(t, data.Records, 1)
			require.NotNil(t, data.Records[0].UserID)
			assert.Equal(t, "clerk-9", *data.Records[0].UserID)
		})

		t.Run("ListRejectsBadQuery", func(t *testing.T) {
			resp := doRequest(t, app, fiber.MethodGet, "/api/v1/bast/records?year=abc", nil, nil)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "INVALID_QUERY", decode(t, resp).Error.Code)

			resp = doRequest(t, app, fiber.MethodGet, "/api/v1/bast/records?limit=-4", nil, nil)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "VALIDATION_ERROR", decode(t, resp).Error.Code)
		})

		t.Run("UpdateKeepsSequence", func(t *testing.T) {
			resp := doRequest(t, app, fiber.MethodPut, "/api/v1/bast/update", map[string]any{
				"id":           firstID,
				"project_name": "Jembatan Kali Bening (revisi)",
				"bast_date":    "2025-10-01",
			}, nil)
			require.Equal(t, fiber.StatusOK, resp.StatusCode)

			var data struct {
				BastNumber string `json:"bast_number"`
			}
			require.NoError(t, json.Unmarshal(decode(t, resp).Data, &data))
			assert.Equal(t, "01/BAST-BM/X/2025", data.BastNumber)
		})

		t.Run("UpdateMissingRecord", func(t *testing.T) {
			resp := doRequest(t, app, fiber.MethodPut, "/api/v1/bast/update", map[string]any{
				"id":           99999,
				"project_name": "Ghost",
				"bast_date":    "2025-10-01",
			}, nil)
			assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
			assert.Equal(t, "BAST_RECORD_NOT_FOUND", decode(t, resp).Error.Code)
		})

		t.Run("Counter", func(t *testing.T) {
			resp := doRequest(t, app, fiber.MethodGet, "/api/v1/bast/counters/2025", nil, nil)
			require.Equal(t, fiber.StatusOK, resp.StatusCode)
			var data struct {
				Counter      int64 `json:"counter"`
				NextSequence int64 `json:"next_sequence"`
			}
			require.NoError(t, json.Unmarshal(decode(t, resp).Data, &data))
			assert.Equal(t, int64(2), data.Counter)
			assert.Equal(t, int64(3), data.NextSequence)

			resp = doRequest(t, app, fiber.MethodGet, "/api/v1/bast/counters/twenty", nil, nil)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "INVALID_YEAR", decode(t, resp).Error.Code)
		})

		t.Run("Export", func(t *testing.T) {
			resp := doRequest(t, app, fiber.MethodGet, "/api/v1/bast/records/export?year=2025", nil, nil)
			require.Equal(t, fiber.StatusOK, resp.StatusCode)
			assert.Equal(t, businessflow.XLSXContentType, resp.Header.Get("Content-Type"))
			assert.Contains(t, resp.Header.Get("Content-Disposition"), "bast_records_2025.xlsx")

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			resp.Body.Close()
			// xlsx files are zip archives
			assert.True(t, bytes.HasPrefix(body, []byte("PK")))
		})
		return nil
	})
	require.NoError(t, err)
}

func TestContractEndpoints(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		app := newTestApp(testDB, testConfig())

		generate := func(t *testing.T, location, workType, procurementType, date string) (uint, string) {
			resp := doRequest(t, app, fiber.MethodPost, "/api/v1/contract/generate", map[string]any{
				"project_name":     "Rehabilitasi Jalan",
				"contract_date":    date,
				"location":         location,
				"work_type":        workType,
				"procurement_type": procurementType,
			}, nil)
			require.Equal(t, fiber.StatusCreated, resp.StatusCode)
			var data struct {
				ID             uint   `json:"id"`
				ContractNumber string `json:"contract_number"`
			}
			require.NoError(t, json.Unmarshal(decode(t, resp).Data, &data))
			return data.ID, data.ContractNumber
		}

		var firstID uint
		t.Run("GenerateScopedCounters", func(t *testing.T) {
			var number string
			firstID, number = generate(t, "621", "BM", "SP", "2025-01-20")
			assert.Equal(t, "621/DISPUPR/BM/SP/01/I/2025", number)

			_, number = generate(t, "621", "BM", "SP", "2025-02-03")
			assert.Equal(t, "621/DISPUPR/BM/SP/02/II/2025", number)

			_, number = generate(t, "622", "BM-KONS", "SPK", "2025-02-03")
			assert.Equal(t, "622/DISPUPR/BM-KONS/SPK/01/II/2025", number)
		})

		t.Run("GenerateRejectsUnknownCategory", func(t *testing.T) {
			resp := doRequest(t, app, fiber.MethodPost, "/api/v1/contract/generate", map[string]any{
				"project_name":     "X",
				"contract_date":    "2025-02-03",
				"location":         "623",
				"work_type":        "BM",
				"procurement_type": "SP",
			}, nil)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			env := decode(t, resp)
			assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
			assert.Contains(t, string(env.Error.Details), "Location must be one of: 621 622")
		})

		t.Run("ListWithFilters", func(t *testing.T) {
			resp := doRequest(t, app, fiber.MethodGet, "/api/v1/contract/records?location_code=621&work_type=BM&procurement_type=SP", nil, nil)
			require.Equal(t, fiber.StatusOK, resp.StatusCode)
			var data struct {
				Records []struct {
					ContractNumber string `json:"contract_number"`
				} `json:"records"`
				Total int64 `json:"total"`
			}
			require.NoError(t, json.Unmarshal(decode(t, resp).Data, &data))
			assert.Equal(t, int64(2), data.Total)

			resp = doRequest(t, app, fiber.MethodGet, "/api/v1/contract/records?work_type=XX", nil, nil)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		})

		t.Run("UpdateChangesCategoryKeepsSequence", func(t *testing.T) {
			resp := doRequest(t, app, fiber.MethodPut, "/api/v1/contract/update", map[string]any{
				"id":               firstID,
				"project_name":     "Rehabilitasi Jalan",
				"contract_date":    "2025-06-09",
				"location":         "622",
				"work_type":        "BM",
				"procurement_type": "SPK",
			}, nil)
			require.Equal(t, fiber.StatusOK, resp.StatusCode)
			var data struct {
				ContractNumber string `json:"contract_number"`
			}
			require.NoError(t, json.Unmarshal(decode(t, resp).Data, &data))
			assert.Equal(t, "622/DISPUPR/BM/SPK/01/VI/2025", data.ContractNumber)
		})

		t.Run("Counter", func(t *testing.T) {
			resp := doRequest(t, app, fiber.MethodGet, "/api/v1/contract/counters?location_code=621&work_type=BM&procurement_type=SP&year=2025", nil, nil)
			require.Equal(t, fiber.StatusOK, resp.StatusCode)
			var data struct {
				Counter      int64 `json:"counter"`
				NextSequence int64 `json:"next_sequence"`
			}
			require.NoError(t, json.Unmarshal(decode(t, resp).Data, &data))
			assert.Equal(t, int64(2), data.Counter)
			assert.Equal(t, int64(3), data.NextSequence)

			resp = doRequest(t, app, fiber.MethodGet, "/api/v1/contract/counters?location_code=621&year=2025", nil, nil)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "VALIDATION_ERROR", decode(t, resp).Error.Code)
		})

		t.Run("Export", func(t *testing.T) {
			resp := doRequest(t, app, fiber.MethodGet, "/api/v1/contract/records/export?location_code=622", nil, nil)
			require.Equal(t, fiber.StatusOK, resp.StatusCode)
			assert.Equal(t, businessflow.XLSXContentType, resp.Header.Get("Content-Type"))
			assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
			resp.Body.Close()
		})
		return nil
	})
	require.NoError(t, err)
}

func TestMetricsEndpoint(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		app := newTestApp(testDB, testConfig())

		resp := doRequest(t, app, fiber.MethodPost, "/api/v1/bast/generate", map[string]any{
			"project_name": "Drainase",
			"bast_date":    "2025-05-05",
		}, nil)
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
		resp.Body.Close()

		resp = doRequest(t, app, fiber.MethodGet, "/metrics", nil, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		resp.Body.Close()

		assert.Contains(t, string(body), `document_numbers_issued_total{document="bast"}`)
		assert.Contains(t, string(body), `http_requests_total{method="POST",route="/api/v1/bast/generate",status="201"}`)
		return nil
	})
	require.NoError(t, err)
}

func TestGenerateRateLimit(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		cfg := testConfig()
		cfg.Security.GenerateRateLimit = 1
		app := newTestApp(testDB, cfg)

		body := map[string]any{"project_name": "Embung", "bast_date": "2025-07-07"}

		resp := doRequest(t, app, fiber.MethodPost, "/api/v1/bast/generate", body, nil)
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
		resp.Body.Close()

		resp = doRequest(t, app, fiber.MethodPost, "/api/v1/bast/generate", body, nil)
		assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
		assert.Equal(t, "RATE_LIMIT_EXCEEDED", decode(t, resp).Error.Code)

		// Contract generation keeps its own quota
		contractBody := map[string]any{
			"project_name":     "Embung",
			"contract_date":    "2025-07-07",
			"location":         "621",
			"work_type":        "BM",
			"procurement_type": "SP",
		}
		resp = doRequest(t, app, fiber.MethodPost, "/api/v1/contract/generate", contractBody, nil)
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
		resp.Body.Close()

		resp = doRequest(t, app, fiber.MethodPost, "/api/v1/contract/generate", contractBody, nil)
		assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
		resp.Body.Close()

		// Reads are only subject to the global limit
		resp = doRequest(t, app, fiber.MethodGet, "/api/v1/bast/records", nil, nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		resp.Body.Close()
		return nil
	})
	require.NoError(t, err)
}
