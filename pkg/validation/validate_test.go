package validation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Tickers []string `json:"tickers" validate:"required,min=1,max=3,unique"`
	Days    int      `json:"days" default:"180" validate:"gte=1,lte=3650"`
	Format  string   `json:"format" default:"json" validate:"oneof=json markdown"`
}

func TestDecodeJSON_AppliesDefaults(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"tickers":["AAA","BBB"]}`))

	var req sampleRequest
	errs := DecodeJSON(r, &req)
	require.Empty(t, errs)

	assert.Equal(t, 180, req.Days)
	assert.Equal(t, "json", req.Format)
}

func TestDecodeJSON_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		code  string
		field string
	}{
		{"missing tickers", `{}`, "ERR_REQUIRED", "tickers"},
		{"duplicates", `{"tickers":["AAA","AAA"]}`, "ERR_UNIQUE", "tickers"},
		{"too many", `{"tickers":["A","B","C","D"]}`, "ERR_MAX", "tickers"},
		{"bad format", `{"tickers":["A"],"format":"xml"}`, "ERR_ONEOF", "format"},
		{"malformed", `{"tickers":`, "ERR_INVALID_BODY", ""},
		{"unknown field", `{"tickers":["A"],"extra":1}`, "ERR_INVALID_BODY", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var req sampleRequest
			errs := DecodeJSON(r, &req)
			require.NotEmpty(t, errs)
			assert.Equal(t, tt.code, errs[0].Code)
			assert.Equal(t, tt.field, errs[0].Field)
			assert.NotEmpty(t, Message(errs))
		})
	}
}

func TestValidate_Struct(t *testing.T) {
	req := sampleRequest{Tickers: []string{"AAA"}, Days: 5000}
	errs := Validate(context.Background(), &req)
	require.Len(t, errs, 1)
	assert.Equal(t, "days", errs[0].Field)
	assert.Equal(t, "3650", errs[0].Params["max"])
}

func TestRegisterValidation_RejectsEmptyTag(t *testing.T) {
	err := RegisterValidation("", func(validator.FieldLevel) bool { return true })
	assert.Error(t, err)
}
