package catalog

import "strings"

// Detection is the scam category inferred from an article's text.
type Detection struct {
	Label string `json:"label"`
	Badge string `json:"badge"`
}

var detectionRules = []struct {
	words     []string
	detection Detection
}{
	{[]string{"bank", "sms", "verification"}, Detection{Label: "Bank Verification", Badge: "Verified Safe"}},
	{[]string{"investment", "ponzi", "trading"}, Detection{Label: "Investment Analysis", Badge: "Investment Fraud"}},
	{[]string{"email", "lottery", "winner"}, Detection{Label: "Email Scanner", Badge: "Email Scam"}},
	{[]string{"phishing", "link", "india post"}, Detection{Label: "Bank Verification", Badge: "Verified Safe"}},
}

var fallbackDetection = Detection{Label: "Fraud Prevention", Badge: "Scam Alert"}

// DetectCategory applies the first rule whose words appear in heading or description.
func DetectCategory(heading, description string) Detection {
	text := strings.ToLower(heading + " " + description)
	for _, rule := range detectionRules {
		for _, w := range rule.words {
			if strings.Contains(text, w) {
				return rule.detection
			}
		}
	}
	return fallbackDetection
}
