package workitem

import (
	"encoding/json"
	"testing"
)

func TestParseFields(t *testing.T) {
	empty, err := ParseFields([]byte("null"))
	if err != nil || !empty.IsEmpty() {
		t.Errorf("ParseFields(null) = %v, %v", empty, err)
	}

	if _, err := ParseFields([]byte(`["a"]`)); err != ErrFieldsNotObject {
		t.Errorf("ParseFields(array) error = %v, want ErrFieldsNotObject", err)
	}

	if _, err := ParseFields([]byte(`{broken`)); err == nil {
		t.Error("ParseFields(broken) should fail")
	}
}

func TestFields_EmptyObjectIsNotNull(t *testing.T) {
	fields, err := ParseFields([]byte(`{}`))
	if err != nil {
		t.Fatalf("ParseFields({}) error = %v", err)
	}
	if fields.IsNull() || !fields.IsEmpty() {
		t.Errorf("ParseFields({}) IsNull = %v, IsEmpty = %v", fields.IsNull(), fields.IsEmpty())
	}
	data, err := json.Marshal(fields)
	if err != nil || string(data) != "{}" {
		t.Errorf("Marshal({}) = %s, %v", data, err)
	}

	if !NewFields(nil).IsNull() {
		t.Error("NewFields(nil) should be null")
	}
	if NewFields(map[string]any{}).IsNull() {
		t.Error("NewFields(empty map) should not be null")
	}
	data, _ = json.Marshal(Fields{})
	if string(data) != "null" {
		t.Errorf("Marshal(zero Fields) = %s, want null", data)
	}
}

func TestFields_TypedLeavesAbsentValuesNil(t *testing.T) {
	fields, err := ParseFields([]byte(`{
		"summary": "Rear-end collision",
		"intent": {"intent_type": "new_claim", "confidence_score": 0.92},
		"claimants": [{"name": "Jane"}],
		"claimants_count": 1,
		"plaintiff": null,
		"lawsuit_or_complaint_received": false
	}`))
	if err != nil {
		t.Fatalf("ParseFields() error = %v", err)
	}

	typed, err := fields.Typed()
	if err != nil {
		t.Fatalf("Typed() error = %v", err)
	}
	if typed.Summary == nil || *typed.Summary != "Rear-end collision" {
		t.Errorf("Summary = %v", typed.Summary)
	}
	if typed.Intent == nil || *typed.Intent.ConfidenceScore != 0.92 {
		t.Errorf("Intent = %+v", typed.Intent)
	}
	if len(typed.Claimants) != 1 || *typed.Claimants[0].Name != "Jane" {
		t.Errorf("Claimants = %+v", typed.Claimants)
	}
	if typed.Plaintiff != nil {
		t.Errorf("Plaintiff = %v, want nil", *typed.Plaintiff)
	}
	if typed.Policy != nil {
		t.Error("Policy should be nil when absent")
	}
	if typed.LawsuitOrComplaintReceived == nil || *typed.LawsuitOrComplaintReceived {
		t.Error("LawsuitOrComplaintReceived should be false")
	}
}

func TestFields_ClaimCategoryFallsBackToRawLookup(t *testing.T) {
	// claimants_count as a string breaks the typed view.
	fields := NewFields(map[string]any{
		"claimants_count": "two",
		"claim_type":      map[string]any{"category": "Liability"},
	})
	if _, err := fields.Typed(); err == nil {
		t.Fatal("Typed() should fail on mistyped leaf")
	}
	if got := fields.ClaimCategory(); got != "Liability" {
		t.Errorf("ClaimCategory() = %q, want Liability", got)
	}
}

func TestDegradedFields(t *testing.T) {
	raw := "not json"
	fields := DegradedFields("invalid character", &raw)
	if !fields.IsDegraded() {
		t.Error("IsDegraded() = false")
	}

	data, err := json.Marshal(fields)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `{"error":"invalid character","llm_response":"not json"}` {
		t.Errorf("Marshal() = %s", data)
	}

	none := DegradedFields("timeout", nil)
	v, ok := none.Get(FieldLLMResponse)
	if !ok || v != nil {
		t.Errorf("llm_response = %v, %v; want nil, true", v, ok)
	}
}
