package agent

import (
	"fmt"
	"strings"
	"time"

	"agentchat-backend/internal/content"
	"agentchat-backend/internal/submit"
)

// Form data shapes are lenient on the responder side: a known action never
// fails on malformed form data, it just falls back to defaults.

func (m *Mock) handleSecurityAction(env *submit.Envelope) []content.Block {
	var choice struct {
		Value string `json:"value"`
	}
	_ = env.DecodeFormData(&choice)

	switch choice.Value {
	case "scan":
		return []content.Block{
			content.Text{Text: "Running security scan..."},
			content.Progress{
				Title:      "Security Scan",
				Status:     "in_progress",
				Percentage: 0,
				Steps: []content.ProgressStep{
					{Label: "Scanning IAM roles", Status: "in_progress"},
					{Label: "Analyzing network config", Status: "pending"},
					{Label: "Checking encryption", Status: "pending"},
					{Label: "Validating access controls", Status: "pending"},
				},
				RefreshButton: &content.Button{Text: "Refresh Scan Status", OnSubmit: "refreshScan"},
			},
		}
	case "report":
		return []content.Block{
			content.Text{Text: "Here's your security report:"},
			content.SecurityReport{
				Title:     "Security Audit Report",
				Timestamp: m.now().UTC().Format(time.RFC3339),
				Findings: []content.Finding{
					{Severity: "high", Category: "Authentication", Message: "MFA not enabled for all users", Recommendation: "Enable MFA for all IAM users"},
					{Severity: "medium", Category: "Access Control", Message: "Overly permissive IAM roles", Recommendation: "Apply principle of least privilege"},
					{Severity: "low", Category: "Encryption", Message: "Some data not encrypted at rest", Recommendation: "Enable encryption for all S3 buckets"},
				},
				DownloadButton: &content.Button{Text: "Download PDF Report", OnSubmit: "downloadReport"},
			},
		}
	default:
		return []content.Block{
			content.Text{Text: "Opening security settings..."},
			content.Form{
				Title: "Security Settings",
				Fields: []content.Field{
					{Type: "checkbox", ID: "securityFeatures", Label: "Security Features", Options: []content.Option{
						{Label: "Enable MFA", Value: "mfa"},
						{Label: "API request validation", Value: "validation", Checked: true},
						{Label: "Rate limiting", Value: "rateLimit", Checked: true},
						{Label: "Automatic session timeout", Value: "sessionTimeout", Checked: true},
					}},
					{Type: "select", ID: "timeout", Label: "Session Timeout", Required: true, Options: []content.Option{
						{Label: "15 minutes", Value: "15"},
						{Label: "30 minutes", Value: "30"},
						{Label: "1 hour", Value: "60"},
						{Label: "4 hours", Value: "240"},
					}},
				},
				SubmitButton: &content.Button{Text: "Save Security Settings", OnSubmit: "saveSecuritySettings"},
			},
		}
	}
}

func (m *Mock) handleServiceSelected(env *submit.Envelope) []content.Block {
	var selected content.Option
	_ = env.DecodeFormData(&selected)
	if selected.Label == "" {
		selected.Label = "the selected service"
	}

	return []content.Block{
		content.Text{Text: fmt.Sprintf("You've selected %s (%s).", selected.Label, selected.Value)},
		content.Text{Text: fmt.Sprintf("Here's how to get started with %s:", selected.Label)},
		content.Steps{
			Title: fmt.Sprintf("Getting Started with %s", selected.Label),
			Steps: []string{
				"Create an AWS account if you don't have one",
				"Navigate to the AWS console",
				fmt.Sprintf("Find %s in the services menu", selected.Label),
				`Click "Get Started" to begin setting up your service`,
			},
		},
	}
}

func (m *Mock) handleFeaturesEnabled(env *submit.Envelope) []content.Block {
	// Form data may be a single option or a list of them.
	var selected []content.Option
	if err := env.DecodeFormData(&selected); err != nil {
		var one content.Option
		if derr := env.DecodeFormData(&one); derr == nil {
			selected = []content.Option{one}
		}
	}
	labels := make([]string, 0, len(selected))
	for _, opt := range selected {
		if opt.Label != "" {
			labels = append(labels, opt.Label)
		}
	}

	return []content.Block{
		content.Text{Text: fmt.Sprintf("You've enabled the following features: %s", strings.Join(labels, ", "))},
		content.Text{Text: "Would you like to configure these features now?"},
		content.Choices{
			Question: "Configure Features Now?",
			Options: []content.Option{
				{Label: "Yes, configure now", Value: "configure"},
				{Label: "No, I'll do it later", Value: "later"},
			},
			SelectionType: "radio",
			SubmitButton:  &content.Button{Text: "Proceed", OnSubmit: "configureFeatures"},
		},
	}
}

// handleUnknownAction is the mandatory default entry in the dispatch table:
// unknown identifiers get a generic acknowledgement, never an error.
func (m *Mock) handleUnknownAction(env *submit.Envelope) []content.Block {
	return []content.Block{
		content.Text{Text: fmt.Sprintf("Action '%s' performed successfully.", env.Action)},
		content.Text{Text: "What would you like to do next?"},
	}
}
