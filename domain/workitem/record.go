package workitem

// Record is a work item hydrated with its attachments.
type Record struct {
	item        WorkItem
	attachments []Attachment
}

// NewRecord composes a work item and its attachments.
func NewRecord(item WorkItem, attachments []Attachment) Record {
	copied := make([]Attachment, len(attachments))
	copy(copied, attachments)
	return Record{item: item, attachments: copied}
}

// WorkItem returns the work item.
func (r Record) WorkItem() WorkItem { return r.item }

// Attachments returns the attachments in insertion order.
func (r Record) Attachments() []Attachment {
	result := make([]Attachment, len(r.attachments))
	copy(result, r.attachments)
	return result
}

// Filenames returns the set of stored filenames.
func (r Record) Filenames() map[string]struct{} {
	result := make(map[string]struct{}, len(r.attachments))
	for _, a := range r.attachments {
		result[a.Filename()] = struct{}{}
	}
	return result
}
