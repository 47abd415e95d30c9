package handlers

import (
	"bytes"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindNestedOrFlat(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name        string
		body        string
		expected    CreateInvoiceRequest
		expectError bool
	}{
		{
			name:     "nested",
			body:     `{"invoice": {"period": "2025-02"}}`,
			expected: CreateInvoiceRequest{Period: "2025-02"},
		},
		{
			name:     "flat",
			body:     `{"period": "2025-03"}`,
			expected: CreateInvoiceRequest{Period: "2025-03"},
		},
		{
			name:     "other keys fall back to flat",
			body:     `{"contract": 4, "period": "2025-04"}`,
			expected: CreateInvoiceRequest{Period: "2025-04"},
		},
		{
			name:        "wrong type",
			body:        `{"period": 202502}`,
			expectError: true,
		},
		{
			name:        "nested wrong type",
			body:        `{"invoice": "2025-02"}`,
			expectError: true,
		},
		{
			name:        "empty body",
			body:        ``,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("POST", "/", bytes.NewBufferString(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			var result CreateInvoiceRequest
			err := BindNestedOrFlat(c, "invoice", &result)

			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestBindNestedOrFlat_RestoresBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("POST", "/", bytes.NewBufferString(`{"payment": {"payment_id": 12}}`))

	var req RecordPaymentRequest
	require.NoError(t, BindNestedOrFlat(c, "payment", &req))
	assert.Equal(t, uint(12), req.PaymentID)

	again, err := io.ReadAll(c.Request.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"payment": {"payment_id": 12}}`, string(again))
}
