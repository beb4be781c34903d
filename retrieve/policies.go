package retrieve

import "regexp"

// MaxKeyPolicies caps the policy references attached to a single match.
const MaxKeyPolicies = 10

// Reference shapes seen in decision notices: local plan policies
// ("Policy D1", "Policy H4"), NPPF paragraphs, and London Plan policies.
var policyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Policy\s+[A-Z]\d+`),
	regexp.MustCompile(`(?i)NPPF\s+(?:paragraph\s+)?\d+`),
	regexp.MustCompile(`(?i)London\s+Plan\s+Policy\s+\w+`),
}

// ExtractPolicies returns the planning policy references mentioned in
// text, deduplicated in first-seen order, capped at MaxKeyPolicies.
func ExtractPolicies(text string) []string {
	var policies []string
	seen := make(map[string]bool)

	for _, pattern := range policyPatterns {
		for _, match := range pattern.FindAllString(text, -1) {
			if seen[match] {
				continue
			}
			seen[match] = true
			policies = append(policies, match)
			if len(policies) == MaxKeyPolicies {
				return policies
			}
		}
	}
	return policies
}
