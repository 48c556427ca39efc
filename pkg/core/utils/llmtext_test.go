package utils

import "testing"

func TestSmartParseStrictJSON(t *testing.T) {
	var doc struct {
		Decision string `json:"decision"`
	}
	out, err := SmartParse(`{"decision": "approved"}`, &doc)
	if err != nil {
		t.Fatalf("SmartParse: %v", err)
	}
	if out != `{"decision": "approved"}` || doc.Decision != "approved" {
		t.Errorf("got %q, decision %q", out, doc.Decision)
	}
}

func TestSmartParseRepairsTruncatedJSON(t *testing.T) {
	var doc struct {
		TotalPremium float64 `json:"total_premium"`
	}
	if _, err := SmartParse(`{"total_premium": 16770, "breakdown": [`, &doc); err != nil {
		t.Fatalf("SmartParse: %v", err)
	}
	if doc.TotalPremium != 16770 {
		t.Errorf("total_premium = %v", doc.TotalPremium)
	}
}

func TestSmartParseHjsonFallback(t *testing.T) {
	var doc struct {
		RiskLevel string `json:"risk_level"`
	}
	input := "{\n  # underwriter note\n  risk_level: standard\n}"
	if _, err := SmartParse(input, &doc); err != nil {
		t.Fatalf("SmartParse: %v", err)
	}
	if doc.RiskLevel != "standard" {
		t.Errorf("risk_level = %q", doc.RiskLevel)
	}
}

func TestSmartParseGarbage(t *testing.T) {
	var doc struct{}
	if _, err := SmartParse("", &doc); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestCleanMarkdown(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"```markdown\n# Report\n```", "# Report"},
		{"```\n- item\n```", "- item"},
		{"plain **analysis** text", "plain **analysis** text"},
		{"  \n# Padded\n ", "# Padded"},
	}
	for _, c := range cases {
		if got := CleanMarkdown(c.in); got != c.want {
			t.Errorf("CleanMarkdown(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestValidateMarkdown(t *testing.T) {
	if !ValidateMarkdown("# Underwriting Report\n\n- decision: approved") {
		t.Error("well-formed markdown should validate")
	}
}
