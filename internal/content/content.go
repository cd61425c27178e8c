// Package content defines the tagged union of renderable message blocks
// exchanged between the agent and the chat UI.
package content

import (
	"encoding/json"
	"fmt"
)

// Kind discriminates the block variants on the wire via the "type" field.
type Kind string

const (
	KindText                Kind = "text"
	KindChoices             Kind = "choices"
	KindVideo               Kind = "video"
	KindForm                Kind = "form"
	KindConfirmation        Kind = "confirmation"
	KindProgress            Kind = "progress"
	KindSecurityReport      Kind = "securityReport"
	KindSecurityDashboard   Kind = "securityDashboard"
	KindSteps               Kind = "steps"
	KindPayment             Kind = "payment"
	KindPaymentConfirmation Kind = "paymentConfirmation"
)

// Block is one renderable unit of an agent message.
type Block interface {
	BlockKind() Kind
}

// Option is a selectable entry in choices, dashboards and video actions.
type Option struct {
	Label       string `json:"label"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
	Checked     bool   `json:"checked,omitempty"`
}

// Button routes a click back to the agent. OnSubmit is an action identifier
// resolved by the responder's dispatch table, not a URL.
type Button struct {
	Text     string `json:"text"`
	OnSubmit string `json:"onSubmit"`
}

type Text struct {
	Text string `json:"text"`
}

func (Text) BlockKind() Kind { return KindText }

type Choices struct {
	Question      string   `json:"question"`
	Options       []Option `json:"options"`
	SelectionType string   `json:"selectionType"` // "radio" or "checkbox"
	SubmitButton  *Button  `json:"submitButton,omitempty"`
}

func (Choices) BlockKind() Kind { return KindChoices }

type Video struct {
	VideoID           string   `json:"videoId"`
	Title             string   `json:"title,omitempty"`
	AdditionalActions []Option `json:"additionalActions,omitempty"`
	SubmitButton      *Button  `json:"submitButton,omitempty"`
}

func (Video) BlockKind() Kind { return KindVideo }

// Field describes one input in a Form block. Type is one of text, select,
// number, textarea, date, time, file, checkbox, rating.
type Field struct {
	Type         string   `json:"type"`
	ID           string   `json:"id"`
	Label        string   `json:"label"`
	Placeholder  string   `json:"placeholder,omitempty"`
	Required     bool     `json:"required"`
	Options      []Option `json:"options,omitempty"`
	AllowedTypes string   `json:"allowedTypes,omitempty"`
	Multiple     bool     `json:"multiple,omitempty"`
	MaxRating    int      `json:"maxRating,omitempty"`
}

type Form struct {
	Title        string  `json:"title"`
	Fields       []Field `json:"fields"`
	SubmitButton *Button `json:"submitButton,omitempty"`
}

func (Form) BlockKind() Kind { return KindForm }

// Confirmation carries the action identifier at top level rather than in a
// submit button.
type Confirmation struct {
	Title         string `json:"title"`
	Message       string `json:"message"`
	ConfirmButton string `json:"confirmButton"`
	CancelButton  string `json:"cancelButton"`
	OnSubmit      string `json:"onSubmit"`
}

func (Confirmation) BlockKind() Kind { return KindConfirmation }

type ProgressStep struct {
	Label  string `json:"label"`
	Status string `json:"status"` // "completed", "in_progress", "pending"
}

type Progress struct {
	Title         string         `json:"title"`
	Status        string         `json:"status"`
	Percentage    int            `json:"percentage"`
	Steps         []ProgressStep `json:"steps,omitempty"`
	RefreshButton *Button        `json:"refreshButton,omitempty"`
}

func (Progress) BlockKind() Kind { return KindProgress }

type Finding struct {
	Severity       string `json:"severity"` // "high", "medium", "low"
	Category       string `json:"category"`
	Message        string `json:"message"`
	Recommendation string `json:"recommendation"`
}

type SecurityReport struct {
	Title          string    `json:"title"`
	Timestamp      string    `json:"timestamp"`
	Findings       []Finding `json:"findings"`
	DownloadButton *Button   `json:"downloadButton,omitempty"`
}

func (SecurityReport) BlockKind() Kind { return KindSecurityReport }

type SecurityDashboard struct {
	Title           string   `json:"title"`
	SecurityScore   int      `json:"securityScore"`
	Recommendations []string `json:"recommendations,omitempty"`
	Actions         []Option `json:"actions,omitempty"`
	SubmitButton    *Button  `json:"submitButton,omitempty"`
}

func (SecurityDashboard) BlockKind() Kind { return KindSecurityDashboard }

type Steps struct {
	Title string   `json:"title"`
	Steps []string `json:"steps"`
}

func (Steps) BlockKind() Kind { return KindSteps }

type PaymentItem struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Currency    string  `json:"currency"`
	Quantity    int     `json:"quantity"`
}

type PaymentMethod struct {
	Type        string `json:"type"` // "card", "bank", "wallet"
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

type Payment struct {
	Title          string          `json:"title"`
	Description    string          `json:"description,omitempty"`
	TotalAmount    float64         `json:"totalAmount"`
	Currency       string          `json:"currency"`
	Items          []PaymentItem   `json:"items"`
	PaymentMethods []PaymentMethod `json:"paymentMethods,omitempty"`
	SubmitButton   *Button         `json:"submitButton,omitempty"`
}

func (Payment) BlockKind() Kind { return KindPayment }

type PaymentConfirmation struct {
	Title         string  `json:"title"`
	Status        string  `json:"status"` // "success" or "failed"
	TransactionID string  `json:"transactionId"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	Timestamp     string  `json:"timestamp"`
	ReceiptURL    string  `json:"receiptUrl,omitempty"`
}

func (PaymentConfirmation) BlockKind() Kind { return KindPaymentConfirmation }

// taggedMarshal injects the "type" discriminant next to the variant fields.
func taggedMarshal(kind Kind, v any) ([]byte, error) {
	plain, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(plain, &fields); err != nil {
		return nil, err
	}
	fields["type"] = json.RawMessage(fmt.Sprintf("%q", kind))
	return json.Marshal(fields)
}

func (b Text) MarshalJSON() ([]byte, error) {
	type alias Text
	return taggedMarshal(KindText, alias(b))
}

func (b Choices) MarshalJSON() ([]byte, error) {
	type alias Choices
	return taggedMarshal(KindChoices, alias(b))
}

func (b Video) MarshalJSON() ([]byte, error) {
	type alias Video
	return taggedMarshal(KindVideo, alias(b))
}

func (b Form) MarshalJSON() ([]byte, error) {
	type alias Form
	return taggedMarshal(KindForm, alias(b))
}

func (b Confirmation) MarshalJSON() ([]byte, error) {
	type alias Confirmation
	return taggedMarshal(KindConfirmation, alias(b))
}

func (b Progress) MarshalJSON() ([]byte, error) {
	type alias Progress
	return taggedMarshal(KindProgress, alias(b))
}

func (b SecurityReport) MarshalJSON() ([]byte, error) {
	type alias SecurityReport
	return taggedMarshal(KindSecurityReport, alias(b))
}

func (b SecurityDashboard) MarshalJSON() ([]byte, error) {
	type alias SecurityDashboard
	return taggedMarshal(KindSecurityDashboard, alias(b))
}

func (b Steps) MarshalJSON() ([]byte, error) {
	type alias Steps
	return taggedMarshal(KindSteps, alias(b))
}

func (b Payment) MarshalJSON() ([]byte, error) {
	type alias Payment
	return taggedMarshal(KindPayment, alias(b))
}

func (b PaymentConfirmation) MarshalJSON() ([]byte, error) {
	type alias PaymentConfirmation
	return taggedMarshal(KindPaymentConfirmation, alias(b))
}
