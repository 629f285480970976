package extraction

import "strings"

const fieldList = `summary: str
intent: dict (with keys: intent_type: str, confidence_score: float)
reported_by_and_main_contact_are_same: bool
claim_type: dict (category: str, sub_category: str)
reporting_contact: dict (name: str, relationship_to_insured: str, phone: str, email: str, preferred_contact_method: str)
best_contact: dict (contact_type: str, name: str, phone: str, email: str)
reply_to_emails: List[str]
insured: dict (full_name: str, insured_type: str, phone: str, email: str, address_line1: str, city: str, state: str, postal_code: str)
claimants: List[dict (name: str, claimant_type: str, injury_type: str, phone: str, email: str)]
claimants_count: int
injured_person_contact: dict (name: str, injury_severity: str, medical_treatment_received: bool, hospital_name: str)
plaintiff: str
policy: dict (policy_number: str, policy_type: str, line_of_business: str, effective_date: str, expiration_date: str, insurer_name: str, policy_status: str)
loss: dict (loss_date: str, loss_time: str, loss_type: str, cause_of_loss: str, description: str, reported_date: str, location_address_line1: str, location_city: str, location_state: str, location_postal_code: str)
matter: str
acknowledgment: dict (recipient_name: str, recipient_role: str, delivery_method: str, acknowledgment_sent: bool)
lawsuit_or_complaint_received: bool`

// BuildPrompt renders the extraction request for one email.
func BuildPrompt(subject, body, attachmentText string) string {
	var b strings.Builder
	b.WriteString("You are an expert insurance claims assistant. Extract the following fields and subfields ")
	b.WriteString("from the provided email subject, body, and attachment text. ")
	b.WriteString("Return the result as a JSON object matching this structure:\n\n")
	b.WriteString("<FIELDS>\n")
	b.WriteString(fieldList)
	b.WriteString("\n</FIELDS>\n\n")
	b.WriteString("If a field is not present, use null or an empty string/list as appropriate. ")
	b.WriteString("Only use the information in the provided text.\n\n")
	b.WriteString("Email Subject: ")
	b.WriteString(subject)
	b.WriteString("\nEmail Body: ")
	b.WriteString(body)
	b.WriteString("\nAttachment Text: ")
	b.WriteString(attachmentText)
	b.WriteString("\nReturn only the JSON object.\n")
	return b.String()
}

// Unfence removes a surrounding markdown code fence, if any.
func Unfence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return text
	}

	lines := strings.Split(trimmed, "\n")
	if strings.HasPrefix(lines[0], "```") {
		lines = lines[1:]
	}
	if len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[len(lines)-1]), "```") {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}
