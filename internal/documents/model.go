package documents

import "time"

type Document struct {
	ID            string    `json:"id"`
	DealID        string    `json:"dealId"`
	Name          string    `json:"name"`
	MimeType      *string   `json:"type"`
	SizeBytes     *int64    `json:"size"`
	ObjectPath    string    `json:"objectPath"`
	Category      string    `json:"category"`
	Processed     bool      `json:"aiProcessed"`
	AISummary     *string   `json:"aiSummary"`
	ExtractedText *string   `json:"extractedText"`
	UploadedAt    time.Time `json:"uploadedAt"`
}

const defaultCategory = "general"
