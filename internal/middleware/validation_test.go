package middleware

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Test struct with validation tags
type testRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required,es_phone"`
}

func decodeTestRequest(t *testing.T, body map[string]interface{}) error {
	t.Helper()
	reqBody, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", "/test", bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")

	var v testRequest
	return DecodeAndValidate(req, &v)
}

func TestProperty_RequiredFieldValidationWorks(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("missing required fields are rejected", prop.ForAll(
		func(includeName bool, includeEmail bool, includePhone bool) bool {
			reqMap := make(map[string]interface{})
			if includeName {
				reqMap["name"] = "Ana Garcia"
			}
			if includeEmail {
				reqMap["email"] = "ana@example.com"
			}
			if includePhone {
				reqMap["phone"] = "+34 600 123 456"
			}

			err := decodeTestRequest(t, reqMap)

			allFieldsPresent := includeName && includeEmail && includePhone
			if allFieldsPresent {
				return err == nil
			}
			return err != nil
		},
		gen.Bool(),
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestSpanishPhoneValidation(t *testing.T) {
	valid := []string{
		"600123456",
		"+34600123456",
		"0034600123456",
		"34600123456",
		"+34 600 123 456",
		"91-234-56-78",
		"722334455",
		"800112233",
	}
	invalid := []string{
		"500123456",
		"12345",
		"+1 555 0100",
		"+3460012345",
		"6001234567",
		"abc123456",
	}

	for _, phone := range valid {
		err := decodeTestRequest(t, map[string]interface{}{
			"name":  "Ana Garcia",
			"email": "ana@example.com",
			"phone": phone,
		})
		if err != nil {
			t.Errorf("Phone %q should pass validation, got %v", phone, err)
		}
	}

	for _, phone := range invalid {
		err := decodeTestRequest(t, map[string]interface{}{
			"name":  "Ana Garcia",
			"email": "ana@example.com",
			"phone": phone,
		})
		if err == nil {
			t.Errorf("Phone %q should fail validation", phone)
		}
	}
}

// Test that validation errors are properly formatted
func TestValidationErrorsAreFormatted(t *testing.T) {
	err := decodeTestRequest(t, map[string]interface{}{
		"name":  "Ana Garcia",
		"email": "invalid-email",
		"phone": "600123456",
	})
	if err == nil {
		t.Fatal("Expected a validation error")
	}

	validationErrors := FormatValidationErrors(err)
	if len(validationErrors) == 0 {
		t.Fatal("Expected formatted validation errors")
	}

	for _, ve := range validationErrors {
		if ve.Field == "" || ve.Message == "" {
			t.Errorf("Validation error missing field or message: %+v", ve)
		}
	}
}

func TestMalformedJSONRejected(t *testing.T) {
	req := httptest.NewRequest("POST", "/test", bytes.NewReader([]byte(`{"name":`)))
	req.Header.Set("Content-Type", "application/json")

	var v testRequest
	if err := DecodeAndValidate(req, &v); err == nil {
		t.Error("Malformed JSON should be rejected")
	}
}
