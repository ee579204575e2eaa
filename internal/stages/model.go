package stages

type Stage struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color"`
	SortOrder   int    `json:"sortOrder"`
}

// DefaultStages is the pipeline seeded into an empty board.
var DefaultStages = []Stage{
	{Name: "Sourcing", Color: "#6366f1", SortOrder: 0, Description: "Initial deal identification and screening"},
	{Name: "Preliminary Review", Color: "#8b5cf6", SortOrder: 1, Description: "Initial analysis and information gathering"},
	{Name: "Due Diligence", Color: "#f59e0b", SortOrder: 2, Description: "Detailed investigation and analysis"},
	{Name: "Negotiation", Color: "#ef4444", SortOrder: 3, Description: "Term sheet and deal structure negotiations"},
	{Name: "Closing", Color: "#10b981", SortOrder: 4, Description: "Final documentation and closing"},
	{Name: "Post-Close", Color: "#06b6d4", SortOrder: 5, Description: "Integration and value creation"},
}
