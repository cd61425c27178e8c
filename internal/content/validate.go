package content

import (
	"errors"
	"fmt"
)

type ValidationIssue struct{ Field, Reason string }

type ValidationError struct{ Issues []ValidationIssue }

var ErrInvalidBlock = errors.New("invalid content block")

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return ErrInvalidBlock.Error()
	}
	return fmt.Sprintf("%s: %s %s", ErrInvalidBlock.Error(), e.Issues[0].Field, e.Issues[0].Reason)
}

func (e *ValidationError) add(field, reason string) {
	e.Issues = append(e.Issues, ValidationIssue{Field: field, Reason: reason})
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidBlock }

func (e *ValidationError) orNil() error {
	if len(e.Issues) == 0 {
		return nil
	}
	return e
}

// Validate checks the per-variant field contract. It has no side effects and
// never mutates the block.
func Validate(b Block) error {
	v := &ValidationError{}
	switch blk := b.(type) {
	case Text:
		if blk.Text == "" {
			v.add("text", "must not be empty")
		}
	case Choices:
		if blk.Question == "" {
			v.add("question", "must not be empty")
		}
		if len(blk.Options) == 0 {
			v.add("options", "must have at least one option")
		}
		if blk.SelectionType != "radio" && blk.SelectionType != "checkbox" {
			v.add("selectionType", `must be "radio" or "checkbox"`)
		}
		for i, opt := range blk.Options {
			if opt.Label == "" {
				v.add(fmt.Sprintf("options[%d].label", i), "must not be empty")
			}
		}
	case Video:
		if blk.VideoID == "" {
			v.add("videoId", "must not be empty")
		}
	case Form:
		if blk.Title == "" {
			v.add("title", "must not be empty")
		}
		if len(blk.Fields) == 0 {
			v.add("fields", "must have at least one field")
		}
		for i, f := range blk.Fields {
			if f.ID == "" {
				v.add(fmt.Sprintf("fields[%d].id", i), "must not be empty")
			}
			if f.Type == "rating" && f.MaxRating < 1 {
				v.add(fmt.Sprintf("fields[%d].maxRating", i), "must be at least 1")
			}
		}
	case Confirmation:
		if blk.Message == "" {
			v.add("message", "must not be empty")
		}
		if blk.OnSubmit == "" {
			v.add("onSubmit", "must carry an action identifier")
		}
	case Progress:
		if blk.Percentage < 0 || blk.Percentage > 100 {
			v.add("percentage", "must be between 0 and 100")
		}
	case SecurityReport:
		if blk.Timestamp == "" {
			v.add("timestamp", "must not be empty")
		}
	case SecurityDashboard:
		if blk.SecurityScore < 0 || blk.SecurityScore > 100 {
			v.add("securityScore", "must be between 0 and 100")
		}
	case Steps:
		if len(blk.Steps) == 0 {
			v.add("steps", "must have at least one step")
		}
	case Payment:
		if blk.TotalAmount <= 0 {
			v.add("totalAmount", "must be positive")
		}
		if blk.Currency == "" {
			v.add("currency", "must not be empty")
		}
		if len(blk.Items) == 0 {
			v.add("items", "must have at least one line item")
		}
	case PaymentConfirmation:
		if blk.Status != "success" && blk.Status != "failed" {
			v.add("status", `must be "success" or "failed"`)
		}
		if blk.TransactionID == "" {
			v.add("transactionId", "must not be empty")
		}
	default:
		v.add("type", fmt.Sprintf("unknown block kind %T", b))
	}
	return v.orNil()
}
