package deals

import (
	"strconv"

	"dealflow-backend/internal/facts"
)

// Merge policy for extracted facts: numeric fields treat the latest document
// as authoritative and overwrite, categorical fields only fill an empty slot.
type numericRule struct {
	label string
	value func(facts.Facts) *float64
	set   func(*Patch, float64)
}

type textRule struct {
	label   string
	current func(Deal) *string
	value   func(facts.Facts) *string
	set     func(*Patch, string)
}

var numericRules = []numericRule{
	{"Valuation", func(f facts.Facts) *float64 { return f.Valuation }, func(p *Patch, v float64) { p.Valuation = &v }},
	{"Revenue", func(f facts.Facts) *float64 { return f.Revenue }, func(p *Patch, v float64) { p.Revenue = &v }},
	{"EBITDA", func(f facts.Facts) *float64 { return f.EBITDA }, func(p *Patch, v float64) { p.EBITDA = &v }},
}

var textRules = []textRule{
	{"Target Company", func(d Deal) *string { return d.TargetCompany }, func(f facts.Facts) *string { return f.TargetCompany }, func(p *Patch, v string) { p.TargetCompany = &v }},
	{"Geography", func(d Deal) *string { return d.Geography }, func(f facts.Facts) *string { return f.Geography }, func(p *Patch, v string) { p.Geography = &v }},
}

// MergeFacts applies the policy above and returns the resulting patch plus a
// human-readable label per changed field. A zero patch means the document
// contributed nothing new.
func MergeFacts(deal Deal, f facts.Facts) (Patch, []string) {
	var patch Patch
	var changed []string

	for _, rule := range numericRules {
		v := rule.value(f)
		if v == nil {
			continue
		}
		rule.set(&patch, *v)
		changed = append(changed, rule.label+": $"+formatMillions(*v)+"M")
	}
	for _, rule := range textRules {
		v := rule.value(f)
		if v == nil || *v == "" {
			continue
		}
		if cur := rule.current(deal); cur != nil && *cur != "" {
			continue
		}
		rule.set(&patch, *v)
		changed = append(changed, rule.label+": "+*v)
	}
	return patch, changed
}

func formatMillions(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
