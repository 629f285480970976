package workitem

import "strings"

// DocType is the closed-set classification label of an attachment.
type DocType string

// Document type labels.
const (
	DocTypeClaimForm    DocType = "Claim Form"
	DocTypePoliceReport DocType = "Police Report"
	DocTypeProofOfLoss  DocType = "Proof of Loss"
	DocTypeInvoice      DocType = "Invoice"
	DocTypeDeclaration  DocType = "Declaration"
	DocTypePhoto        DocType = "Photo"
	DocTypeIDDocument   DocType = "ID Document"
	DocTypeOther        DocType = "Other Document"
)

// DocTypeUnclassified is the analytics bucket for attachments without a label.
const DocTypeUnclassified = "Unclassified"

var docTypes = []DocType{
	DocTypeClaimForm,
	DocTypePoliceReport,
	DocTypeProofOfLoss,
	DocTypeInvoice,
	DocTypeDeclaration,
	DocTypePhoto,
	DocTypeIDDocument,
	DocTypeOther,
}

// DocTypes returns every label in the closed set.
func DocTypes() []DocType {
	result := make([]DocType, len(docTypes))
	copy(result, docTypes)
	return result
}

// ParseDocType matches s against the closed label set, ignoring case,
// surrounding whitespace, quotes and a trailing period.
func ParseDocType(s string) (DocType, bool) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.Trim(cleaned, "\"'`*")
	cleaned = strings.TrimSuffix(cleaned, ".")
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	for _, dt := range docTypes {
		if strings.EqualFold(cleaned, string(dt)) {
			return dt, true
		}
	}
	return "", false
}

// String returns the label.
func (d DocType) String() string { return string(d) }

// IsEmpty reports whether the attachment is still unclassified.
func (d DocType) IsEmpty() bool { return d == "" }
