package workitem

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrFieldsNotObject indicates extracted fields that are not a JSON object.
var ErrFieldsNotObject = errors.New("extracted fields must be a JSON object")

// Degraded-result keys written when field extraction fails.
const (
	FieldError       = "error"
	FieldLLMResponse = "llm_response"
)

// Fields is the extracted-field object of a work item, kept verbatim.
// A typed view is available through Typed.
type Fields struct {
	values map[string]any
}

// NewFields wraps an already-decoded object.
func NewFields(values map[string]any) Fields {
	if values == nil {
		return Fields{}
	}
	copied := make(map[string]any, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return Fields{values: copied}
}

// ParseFields decodes raw JSON. Empty input and JSON null yield empty Fields;
// anything other than an object is rejected.
func ParseFields(data []byte) (Fields, error) {
	if len(data) == 0 {
		return Fields{}, nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return Fields{}, fmt.Errorf("decode extracted fields: %w", err)
	}
	if v == nil {
		return Fields{}, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return Fields{}, ErrFieldsNotObject
	}
	return Fields{values: m}, nil
}

// DegradedFields builds the operator-visible record written when the
// extraction call fails. rawResponse may be nil when nothing came back.
func DegradedFields(message string, rawResponse *string) Fields {
	values := map[string]any{FieldError: message, FieldLLMResponse: nil}
	if rawResponse != nil {
		values[FieldLLMResponse] = *rawResponse
	}
	return Fields{values: values}
}

// IsEmpty reports whether no fields are present.
func (f Fields) IsEmpty() bool { return len(f.values) == 0 }

// IsNull reports whether no object was recorded at all. An empty object
// is not null.
func (f Fields) IsNull() bool { return f.values == nil }

// IsDegraded reports whether the fields carry an extraction error.
func (f Fields) IsDegraded() bool {
	_, ok := f.values[FieldError]
	return ok
}

// Map returns a shallow copy of the top-level object.
func (f Fields) Map() map[string]any {
	result := make(map[string]any, len(f.values))
	for k, v := range f.values {
		result[k] = v
	}
	return result
}

// Get returns a top-level value.
func (f Fields) Get(key string) (any, bool) {
	v, ok := f.values[key]
	return v, ok
}

// MarshalJSON encodes the fields as an object, or null when absent.
func (f Fields) MarshalJSON() ([]byte, error) {
	if f.values == nil {
		return []byte("null"), nil
	}
	return json.Marshal(f.values)
}

// UnmarshalJSON decodes an object or null.
func (f *Fields) UnmarshalJSON(data []byte) error {
	parsed, err := ParseFields(data)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Typed decodes the fields into the typed-optional view. Values of an
// unexpected JSON type cause an error; absent keys stay nil.
func (f Fields) Typed() (ExtractedFields, error) {
	var typed ExtractedFields
	if f.IsEmpty() {
		return typed, nil
	}
	data, err := json.Marshal(f.values)
	if err != nil {
		return typed, fmt.Errorf("encode extracted fields: %w", err)
	}
	if err := json.Unmarshal(data, &typed); err != nil {
		return typed, fmt.Errorf("decode typed fields: %w", err)
	}
	return typed, nil
}

// ClaimCategory returns claim_type.category when it is a non-empty string.
func (f Fields) ClaimCategory() string {
	if typed, err := f.Typed(); err == nil {
		if typed.ClaimType != nil && typed.ClaimType.Category != nil {
			return *typed.ClaimType.Category
		}
		return ""
	}
	claimType, ok := f.values["claim_type"].(map[string]any)
	if !ok {
		return ""
	}
	category, _ := claimType["category"].(string)
	return category
}

// ExtractedFields is the typed view of the extraction schema. Every leaf
// is optional because the producer does not guarantee completeness.
type ExtractedFields struct {
	Summary                         *string               `json:"summary,omitempty"`
	Intent                          *Intent               `json:"intent,omitempty"`
	ReportedByAndMainContactAreSame *bool                 `json:"reported_by_and_main_contact_are_same,omitempty"`
	ClaimType                       *ClaimType            `json:"claim_type,omitempty"`
	ReportingContact                *ReportingContact     `json:"reporting_contact,omitempty"`
	BestContact                     *BestContact          `json:"best_contact,omitempty"`
	ReplyToEmails                   []string              `json:"reply_to_emails,omitempty"`
	Insured                         *Insured              `json:"insured,omitempty"`
	Claimants                       []Claimant            `json:"claimants,omitempty"`
	ClaimantsCount                  *int                  `json:"claimants_count,omitempty"`
	InjuredPersonContact            *InjuredPersonContact `json:"injured_person_contact,omitempty"`
	Plaintiff                       *string               `json:"plaintiff,omitempty"`
	Policy                          *Policy               `json:"policy,omitempty"`
	Loss                            *Loss                 `json:"loss,omitempty"`
	Matter                          *string               `json:"matter,omitempty"`
	Acknowledgment                  *Acknowledgment       `json:"acknowledgment,omitempty"`
	LawsuitOrComplaintReceived      *bool                 `json:"lawsuit_or_complaint_received,omitempty"`
}

// Intent describes what the sender wants.
type Intent struct {
	IntentType      *string  `json:"intent_type,omitempty"`
	ConfidenceScore *float64 `json:"confidence_score,omitempty"`
}

// ClaimType is the claim category pair.
type ClaimType struct {
	Category    *string `json:"category,omitempty"`
	SubCategory *string `json:"sub_category,omitempty"`
}

// ReportingContact is the person who reported the loss.
type ReportingContact struct {
	Name                   *string `json:"name,omitempty"`
	RelationshipToInsured  *string `json:"relationship_to_insured,omitempty"`
	Phone                  *string `json:"phone,omitempty"`
	Email                  *string `json:"email,omitempty"`
	PreferredContactMethod *string `json:"preferred_contact_method,omitempty"`
}

// BestContact is the preferred follow-up contact.
type BestContact struct {
	ContactType *string `json:"contact_type,omitempty"`
	Name        *string `json:"name,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Email       *string `json:"email,omitempty"`
}

// Insured is the policy holder.
type Insured struct {
	FullName     *string `json:"full_name,omitempty"`
	InsuredType  *string `json:"insured_type,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	Email        *string `json:"email,omitempty"`
	AddressLine1 *string `json:"address_line1,omitempty"`
	City         *string `json:"city,omitempty"`
	State        *string `json:"state,omitempty"`
	PostalCode   *string `json:"postal_code,omitempty"`
}

// Claimant is one party claiming against the policy.
type Claimant struct {
	Name         *string `json:"name,omitempty"`
	ClaimantType *string `json:"claimant_type,omitempty"`
	InjuryType   *string `json:"injury_type,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	Email        *string `json:"email,omitempty"`
}

// InjuredPersonContact describes an injured party.
type InjuredPersonContact struct {
	Name                     *string `json:"name,omitempty"`
	InjurySeverity           *string `json:"injury_severity,omitempty"`
	MedicalTreatmentReceived *bool   `json:"medical_treatment_received,omitempty"`
	HospitalName             *string `json:"hospital_name,omitempty"`
}

// Policy holds the policy details.
type Policy struct {
	PolicyNumber   *string `json:"policy_number,omitempty"`
	PolicyType     *string `json:"policy_type,omitempty"`
	LineOfBusiness *string `json:"line_of_business,omitempty"`
	EffectiveDate  *string `json:"effective_date,omitempty"`
	ExpirationDate *string `json:"expiration_date,omitempty"`
	InsurerName    *string `json:"insurer_name,omitempty"`
	PolicyStatus   *string `json:"policy_status,omitempty"`
}

// Loss describes the loss event.
type Loss struct {
	LossDate             *string `json:"loss_date,omitempty"`
	LossTime             *string `json:"loss_time,omitempty"`
	LossType             *string `json:"loss_type,omitempty"`
	CauseOfLoss          *string `json:"cause_of_loss,omitempty"`
	Description          *string `json:"description,omitempty"`
	ReportedDate         *string `json:"reported_date,omitempty"`
	LocationAddressLine1 *string `json:"location_address_line1,omitempty"`
	LocationCity         *string `json:"location_city,omitempty"`
	LocationState        *string `json:"location_state,omitempty"`
	LocationPostalCode   *string `json:"location_postal_code,omitempty"`
}

// Acknowledgment records whether receipt was acknowledged.
type Acknowledgment struct {
	RecipientName      *string `json:"recipient_name,omitempty"`
	RecipientRole      *string `json:"recipient_role,omitempty"`
	DeliveryMethod     *string `json:"delivery_method,omitempty"`
	AcknowledgmentSent *bool   `json:"acknowledgment_sent,omitempty"`
}
