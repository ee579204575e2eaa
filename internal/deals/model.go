package deals

import "time"

// Deal is a pipeline entry. Financial figures are denominated in millions
// of dollars.
type Deal struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     *string   `json:"description"`
	StageID         *string   `json:"stageId"`
	TargetCompany   *string   `json:"targetCompany"`
	Geography       *string   `json:"geography"`
	Valuation       *float64  `json:"valuation"`
	Revenue         *float64  `json:"revenue"`
	EBITDA          *float64  `json:"ebitda"`
	Status          string    `json:"status"`
	AISummary       *string   `json:"aiSummary"`
	AIAnalysis      *string   `json:"aiAnalysis"`
	SummaryContext  *string   `json:"summaryContext"`
	AnalysisContext *string   `json:"analysisContext"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type Activity struct {
	ID          string    `json:"id"`
	DealID      string    `json:"dealId"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Activity types recorded against a deal.
const (
	ActivityDealCreated       = "deal_created"
	ActivityStageChanged      = "stage_changed"
	ActivityDocumentUploaded  = "document_uploaded"
	ActivityDocumentProcessed = "document_processed"
	ActivitySummaryGenerated  = "summary_generated"
	ActivityAnalysisGenerated = "analysis_generated"
)
