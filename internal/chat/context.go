package chat

import (
	"fmt"
	"strconv"
	"strings"

	"dealflow-backend/internal/deals"
	"dealflow-backend/internal/documents"
)

// Per-document content cap inside the prompt context.
const docContentLimit = 4000

// BuildDealContext renders the deal facts and dataroom contents into the
// text block prepended to every generation.
func BuildDealContext(deal deals.Deal, docs []documents.Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Deal: %s\n", deal.Name)
	if deal.TargetCompany != nil && *deal.TargetCompany != "" {
		fmt.Fprintf(&b, "Target Company: %s\n", *deal.TargetCompany)
	}
	if deal.Geography != nil && *deal.Geography != "" {
		fmt.Fprintf(&b, "Geography: %s\n", *deal.Geography)
	}
	if deal.Valuation != nil {
		fmt.Fprintf(&b, "Valuation: $%sM\n", groupDigits(*deal.Valuation))
	}
	if deal.Revenue != nil {
		fmt.Fprintf(&b, "Revenue: $%sM\n", groupDigits(*deal.Revenue))
	}
	if deal.EBITDA != nil {
		fmt.Fprintf(&b, "EBITDA: $%sM\n", groupDigits(*deal.EBITDA))
	}
	if deal.Valuation != nil && deal.EBITDA != nil && *deal.EBITDA > 0 {
		fmt.Fprintf(&b, "EV/EBITDA Multiple: %.1fx\n", *deal.Valuation / *deal.EBITDA)
	}
	if deal.Description != nil && *deal.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", *deal.Description)
	}
	if deal.Status != "" {
		fmt.Fprintf(&b, "Status: %s\n", deal.Status)
	}

	if len(docs) > 0 {
		b.WriteString("\n--- Documents in Dataroom ---\n")
		for _, doc := range docs {
			category := doc.Category
			if category == "" {
				category = "general"
			}
			fmt.Fprintf(&b, "\nDocument: %s (%s)", doc.Name, category)
			if doc.AISummary != nil && *doc.AISummary != "" {
				fmt.Fprintf(&b, "\nSummary: %s", *doc.AISummary)
			}
			if doc.ExtractedText != nil && *doc.ExtractedText != "" {
				content := *doc.ExtractedText
				if len(content) > docContentLimit {
					content = content[:docContentLimit]
				}
				fmt.Fprintf(&b, "\nContent:\n%s", content)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

// groupDigits renders a number with thousands separators, e.g. 1250 as
// "1,250" and 12.5 as "12.5".
func groupDigits(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, fracPart, hasFrac := strings.Cut(s, ".")
	var out strings.Builder
	if neg {
		out.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			out.WriteByte(',')
		}
		out.WriteRune(r)
	}
	if hasFrac {
		out.WriteByte('.')
		out.WriteString(fracPart)
	}
	return out.String()
}
