package agent

import (
	"fmt"
	"strings"

	"agentchat-backend/internal/content"
)

// keywordRule maps a free-text predicate to a canned demonstration reply.
// Rules are evaluated in order, first match wins, so precedence is auditable.
type keywordRule struct {
	name  string
	match func(lower string) bool
	reply func(prompt string) []content.Block
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func matchAny(needles ...string) func(string) bool {
	return func(lower string) bool { return containsAny(lower, needles...) }
}

func defaultKeywordRules() []keywordRule {
	return []keywordRule{
		{name: "security", match: matchAny("security", "secure"), reply: securityReply},
		{name: "single-select", match: matchAny("choose", "select one"), reply: singleSelectReply},
		{name: "multi-select", match: matchAny("features", "select multiple"), reply: multiSelectReply},
		{name: "single-input", match: matchAny("input", "text field"), reply: singleInputReply},
		{name: "multi-input", match: matchAny("form", "multiple fields"), reply: multiInputReply},
		{name: "scheduling", match: matchAny("date", "schedule"), reply: schedulingReply},
		{name: "upload", match: matchAny("upload", "file"), reply: uploadReply},
		{name: "feedback", match: matchAny("feedback", "rate"), reply: feedbackReply},
		{name: "video", match: matchAny("video", "demo"), reply: videoReply},
		{name: "confirmation", match: matchAny("confirm", "verify"), reply: confirmationReply},
		{name: "progress", match: matchAny("status", "progress"), reply: progressReply},
	}
}

func securityReply(string) []content.Block {
	return []content.Block{
		content.Text{Text: "AWS Bedrock Security Features:"},
		content.SecurityDashboard{
			Title:         "Security Dashboard",
			SecurityScore: 85,
			Recommendations: []string{
				"Enable multi-factor authentication",
				"Use IAM roles with least privilege",
				"Implement request validation",
				"Set up rate limiting",
				"Use backend proxy for API calls",
			},
			Actions: []content.Option{
				{Label: "Run Security Scan", Value: "scan"},
				{Label: "View Security Report", Value: "report"},
				{Label: "Update Security Settings", Value: "settings"},
			},
			SubmitButton: &content.Button{Text: "Take Action", OnSubmit: "securityAction"},
		},
	}
}

func singleSelectReply(string) []content.Block {
	return []content.Block{
		content.Text{Text: "Please select your preferred AWS service:"},
		content.Choices{
			Question: "Which AWS service are you most interested in?",
			Options: []content.Option{
				{Label: "AWS Bedrock", Value: "bedrock", Description: "Foundation models for generative AI"},
				{Label: "Amazon SageMaker", Value: "sagemaker", Description: "Build, train, and deploy ML models"},
				{Label: "Amazon Comprehend", Value: "comprehend", Description: "Natural language processing"},
				{Label: "Amazon Rekognition", Value: "rekognition", Description: "Image and video analysis"},
			},
			SelectionType: "radio",
			SubmitButton:  &content.Button{Text: "Confirm Selection", OnSubmit: "serviceSelected"},
		},
	}
}

func multiSelectReply(string) []content.Block {
	return []content.Block{
		content.Text{Text: "Please select all features you want to enable:"},
		content.Choices{
			Question: "AWS Bedrock Features",
			Options: []content.Option{
				{Label: "Knowledge Base Integration", Value: "kb", Description: "Connect to your existing data sources"},
				{Label: "Multi-agent Collaboration", Value: "multi-agent", Description: "Enable agents to work together"},
				{Label: "Custom Prompt Templates", Value: "templates", Description: "Create reusable prompt templates"},
				{Label: "API Integration", Value: "api", Description: "Connect with external services"},
			},
			SelectionType: "checkbox",
			SubmitButton:  &content.Button{Text: "Enable Features", OnSubmit: "featuresEnabled"},
		},
	}
}

func singleInputReply(string) []content.Block {
	return []content.Block{
		content.Text{Text: "Please provide the following information:"},
		content.Form{
			Title: "Configuration Form",
			Fields: []content.Field{
				{Type: "text", ID: "projectName", Label: "Project Name", Placeholder: "Enter project name", Required: true},
			},
			SubmitButton: &content.Button{Text: "Save Configuration", OnSubmit: "configSaved"},
		},
	}
}

func multiInputReply(string) []content.Block {
	return []content.Block{
		content.Text{Text: "Please fill out the agent configuration form:"},
		content.Form{
			Title: "Agent Configuration",
			Fields: []content.Field{
				{Type: "text", ID: "agentName", Label: "Agent Name", Placeholder: "Enter agent name", Required: true},
				{Type: "select", ID: "model", Label: "Foundation Model", Required: true, Options: []content.Option{
					{Label: "Claude 3 Opus", Value: "claude-3-opus"},
					{Label: "Claude 3 Sonnet", Value: "claude-3-sonnet"},
					{Label: "Claude 3 Haiku", Value: "claude-3-haiku"},
				}},
				{Type: "number", ID: "maxTokens", Label: "Max Tokens", Placeholder: "Enter max tokens"},
				{Type: "textarea", ID: "systemPrompt", Label: "System Prompt", Placeholder: "Enter system prompt"},
			},
			SubmitButton: &content.Button{Text: "Create Agent", OnSubmit: "agentCreated"},
		},
	}
}

func schedulingReply(string) []content.Block {
	return []content.Block{
		content.Text{Text: "Please schedule your AWS Bedrock demo:"},
		content.Form{
			Title: "Demo Scheduling",
			Fields: []content.Field{
				{Type: "date", ID: "demoDate", Label: "Demo Date", Required: true},
				{Type: "time", ID: "demoTime", Label: "Demo Time", Required: true},
				{Type: "select", ID: "timeZone", Label: "Time Zone", Required: true, Options: []content.Option{
					{Label: "Pacific Time (PT)", Value: "PT"},
					{Label: "Eastern Time (ET)", Value: "ET"},
					{Label: "Coordinated Universal Time (UTC)", Value: "UTC"},
				}},
			},
			SubmitButton: &content.Button{Text: "Schedule Demo", OnSubmit: "demoScheduled"},
		},
	}
}

func uploadReply(string) []content.Block {
	return []content.Block{
		content.Text{Text: "Please upload the necessary files for your knowledge base:"},
		content.Form{
			Title: "Knowledge Base Configuration",
			Fields: []content.Field{
				{Type: "text", ID: "kbName", Label: "Knowledge Base Name", Placeholder: "Enter KB name", Required: true},
				{Type: "file", ID: "documents", Label: "Upload Documents", AllowedTypes: ".pdf,.docx,.txt", Multiple: true, Required: true},
			},
			SubmitButton: &content.Button{Text: "Create Knowledge Base", OnSubmit: "knowledgeBaseCreated"},
		},
	}
}

func feedbackReply(string) []content.Block {
	return []content.Block{
		content.Text{Text: "Please provide your feedback on the AWS Bedrock service:"},
		content.Form{
			Title: "Service Feedback",
			Fields: []content.Field{
				{Type: "rating", ID: "satisfaction", Label: "Overall Satisfaction", MaxRating: 5, Required: true},
				{Type: "checkbox", ID: "metExpectations", Label: "Areas that met your expectations", Options: []content.Option{
					{Label: "Ease of use", Value: "ease"},
					{Label: "Performance", Value: "performance"},
					{Label: "Features", Value: "features"},
					{Label: "Documentation", Value: "documentation"},
					{Label: "Support", Value: "support"},
				}},
				{Type: "textarea", ID: "comments", Label: "Additional Comments", Placeholder: "Please share any additional feedback"},
			},
			SubmitButton: &content.Button{Text: "Submit Feedback", OnSubmit: "feedbackSubmitted"},
		},
	}
}

func videoReply(string) []content.Block {
	return []content.Block{
		content.Text{Text: "Here's a demo video about AWS Bedrock agents:"},
		content.Video{
			VideoID: "dQw4w9WgXcQ",
			Title:   "AWS Bedrock Agents Demo",
			AdditionalActions: []content.Option{
				{Label: "View Documentation", Value: "docs"},
				{Label: "Try It Now", Value: "try"},
			},
			SubmitButton: &content.Button{Text: "Take Action", OnSubmit: "videoAction"},
		},
	}
}

func confirmationReply(string) []content.Block {
	return []content.Block{
		content.Text{Text: "Please confirm your action:"},
		content.Confirmation{
			Title:         "Confirm Action",
			Message:       "Are you sure you want to deploy this agent to production? This action cannot be undone.",
			ConfirmButton: "Yes, Deploy to Production",
			CancelButton:  "Cancel",
			OnSubmit:      "deploymentConfirmed",
		},
	}
}

func progressReply(string) []content.Block {
	return []content.Block{
		content.Text{Text: "Here's the current status of your deployment:"},
		content.Progress{
			Title:      "Deployment Progress",
			Status:     "in_progress",
			Percentage: 65,
			Steps: []content.ProgressStep{
				{Label: "Resource validation", Status: "completed"},
				{Label: "Model deployment", Status: "completed"},
				{Label: "Knowledge base indexing", Status: "in_progress"},
				{Label: "API configuration", Status: "pending"},
				{Label: "Final validation", Status: "pending"},
			},
			RefreshButton: &content.Button{Text: "Refresh Status", OnSubmit: "refreshStatus"},
		},
	}
}

func helpReply(prompt string) []content.Block {
	text := fmt.Sprintf(`I understand you're asking about %q. I can demonstrate various interactive elements. Try asking about:

1. "security" - View security dashboard
2. "select one" - Radio button selection
3. "select multiple" - Checkbox selection
4. "text field" - Single input field
5. "multiple fields" - Complex form
6. "schedule" - Date and time inputs
7. "upload" - File upload interface
8. "feedback" - Rating and feedback form
9. "video" - Video player with actions
10. "confirm" - Confirmation dialog
11. "progress" - Progress indicator

Which would you like to explore?`, prompt)
	return []content.Block{content.Text{Text: text}}
}
