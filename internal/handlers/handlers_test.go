package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-rentals/internal/clock"
	"github.com/sjperalta/fintera-rentals/internal/config"
	"github.com/sjperalta/fintera-rentals/internal/database"
	"github.com/sjperalta/fintera-rentals/internal/jobs"
	"github.com/sjperalta/fintera-rentals/internal/middleware"
	"github.com/sjperalta/fintera-rentals/internal/models"
	"github.com/sjperalta/fintera-rentals/internal/repository"
	"github.com/sjperalta/fintera-rentals/internal/services"
	"github.com/sjperalta/fintera-rentals/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testJWTSecret = "handlers-test-secret"

type apiFixture struct {
	router *gin.Engine
	db     *gorm.DB
	admin  string
	manage string
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2025, 2, 15, 9, 0, 0, 0, time.UTC))
	worker := jobs.NewWorker(1, clk)
	t.Cleanup(worker.Shutdown)

	cfg := &config.Config{JWTSecret: testJWTSecret, Billing: config.DefaultBillingConfig()}
	cfg.Billing.ScanConcurrency = 1
	svcs := services.NewServices(repository.NewRepositories(db), worker, store, cfg, db, clk)

	router := gin.New()
	NewHandlers(svcs, db).RegisterRoutes(router.Group("/api/v1"), middleware.Auth(testJWTSecret))

	return &apiFixture{
		router: router,
		db:     db,
		admin:  signTestToken(t, middleware.RoleAdmin),
		manage: signTestToken(t, middleware.RoleManager),
	}
}

func signTestToken(t *testing.T, role string) string {
	t.Helper()
	claims := middleware.Claims{
		UserID: 1,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return token
}

func (f *apiFixture) seedContract(t *testing.T) *models.Contract {
	t.Helper()
	unit := &models.Unit{Code: "A-101", Name: "Apto 101"}
	require.NoError(t, f.db.Create(unit).Error)

	cycle := models.PaymentCycleMonthly
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	expiry := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	contract := &models.Contract{
		UnitID:           unit.ID,
		TenantID:         9,
		Status:           models.ContractStatusActive,
		RentAmount:       decimal.NewFromInt(5000000),
		PaymentCycle:     &cycle,
		BillingStartDate: &start,
		ExpiryDate:       &expiry,
	}
	require.NoError(t, f.db.Create(contract).Error)
	return contract
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decodeBody(t, w)["database"])
}

func TestRoutesRequireRoles(t *testing.T) {
	f := newAPIFixture(t)

	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/api/v1/schedules/due", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, f.do(t, http.MethodPost, "/api/v1/billing/scan", f.manage, nil).Code)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/v1/schedules/due", f.manage, nil).Code)
}

func TestBillingFlow(t *testing.T) {
	f := newAPIFixture(t)
	contract := f.seedContract(t)
	base := "/api/v1/contracts/" + jsonID(contract.ID)

	w := f.do(t, http.MethodPost, base+"/schedules/generate", f.manage, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 3, decodeBody(t, w)["created"])

	w = f.do(t, http.MethodPost, base+"/schedules/generate", f.manage, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, decodeBody(t, w)["created"])

	// manual invoice, nested and flat bodies hit the same ledger row
	w = f.do(t, http.MethodPost, base+"/invoices", f.manage, gin.H{"invoice": gin.H{"period": "2025-02"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	invoice := decodeBody(t, w)["invoice"].(map[string]interface{})
	assert.Equal(t, "INV-202502-"+padID(contract.ID), invoice["number"])
	assert.Equal(t, "5000000", invoice["total_amount"])
	invoiceID := jsonNumber(invoice["id"])

	w = f.do(t, http.MethodPost, base+"/invoices", f.manage, gin.H{"period": "2025-02"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, invoiceID, jsonNumber(decodeBody(t, w)["invoice"].(map[string]interface{})["id"]))

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, base+"/invoices", f.manage, gin.H{"period": "2025-13"}).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, base+"/invoices", f.manage, gin.H{}).Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPost, "/api/v1/contracts/999/invoices", f.manage, gin.H{"period": "2025-02"}).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/v1/contracts/abc/invoices", f.manage, gin.H{"period": "2025-02"}).Code)

	w = f.do(t, http.MethodGet, base+"/invoices", f.manage, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody(t, w)["invoices"], 1)

	w = f.do(t, http.MethodGet, "/api/v1/invoices/"+jsonID(invoiceID), f.manage, nil)
	require.Equal(t, http.StatusOK, w.Code)
	lines := decodeBody(t, w)["invoice"].(map[string]interface{})["lines"].([]interface{})
	assert.Len(t, lines, 1)

	w = f.do(t, http.MethodGet, "/api/v1/invoices/"+jsonID(invoiceID)+"/pdf", f.manage, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))

	// scan bills January; February is already linked
	w = f.do(t, http.MethodPost, "/api/v1/billing/scan", f.admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	scan := decodeBody(t, w)
	assert.EqualValues(t, 2, scan["collected"])
	assert.EqualValues(t, 1, scan["invoiced"])
	assert.EqualValues(t, 1, scan["skipped"])

	var january models.RentSchedule
	require.NoError(t, f.db.Where("contract_id = ?", contract.ID).Order("scheduled_date").First(&january).Error)
	require.NotNil(t, january.InvoiceID)

	paymentPath := "/api/v1/schedules/" + jsonID(january.ID) + "/record_payment"
	w = f.do(t, http.MethodPost, paymentPath, f.manage, gin.H{"payment_id": 77})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "paid", decodeBody(t, w)["schedule"].(map[string]interface{})["status"])
	assert.Equal(t, http.StatusUnprocessableEntity, f.do(t, http.MethodPost, paymentPath, f.manage, gin.H{"payment_id": 78}).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, paymentPath, f.manage, gin.H{}).Code)

	w = f.do(t, http.MethodGet, base+"/schedules/export", f.manage, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))

	w = f.do(t, http.MethodPost, base+"/terminate", f.admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.EqualValues(t, 1, body["cancelled_schedules"])
	assert.Equal(t, "terminated", body["contract"].(map[string]interface{})["status"])
	assert.Equal(t, http.StatusUnprocessableEntity, f.do(t, http.MethodPost, base+"/terminate", f.admin, nil).Code)

	w = f.do(t, http.MethodGet, "/api/v1/jobs/status", f.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "idle", decodeBody(t, w)["scan_state"])

	w = f.do(t, http.MethodGet, "/api/v1/audits?entity=Contract&entity_id="+jsonID(contract.ID), f.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	actions := []string{}
	for _, a := range decodeBody(t, w)["audits"].([]interface{}) {
		actions = append(actions, a.(map[string]interface{})["action"].(string))
	}
	assert.Contains(t, actions, models.AuditActionContractTerminated)
	assert.Contains(t, actions, models.AuditActionSchedulesGenerated)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/api/v1/audits", f.admin, nil).Code)
}

func jsonNumber(v interface{}) uint {
	return uint(v.(float64))
}

func jsonID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func padID(id uint) string {
	return fmt.Sprintf("%06d", id)
}
