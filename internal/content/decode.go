package content

import (
	"encoding/json"
	"fmt"
)

// blockEnvelope peeks at the discriminant before the variant decode.
type blockEnvelope struct {
	Type Kind `json:"type"`
}

// DecodeBlock turns one serialized block back into its concrete variant.
// An unrecognized or malformed variant degrades to a Text block carrying a
// diagnostic, so a single bad block never breaks an entire message.
func DecodeBlock(data []byte) Block {
	var env blockEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Text{Text: fmt.Sprintf("[unrenderable content: %v]", err)}
	}

	decode := func(dst Block) Block {
		if err := json.Unmarshal(data, dst); err != nil {
			return Text{Text: fmt.Sprintf("[unrenderable %s content: %v]", env.Type, err)}
		}
		return dst
	}

	var blk Block
	switch env.Type {
	case KindText:
		blk = decode(&Text{})
	case KindChoices:
		blk = decode(&Choices{})
	case KindVideo:
		blk = decode(&Video{})
	case KindForm:
		blk = decode(&Form{})
	case KindConfirmation:
		blk = decode(&Confirmation{})
	case KindProgress:
		blk = decode(&Progress{})
	case KindSecurityReport:
		blk = decode(&SecurityReport{})
	case KindSecurityDashboard:
		blk = decode(&SecurityDashboard{})
	case KindSteps:
		blk = decode(&Steps{})
	case KindPayment:
		blk = decode(&Payment{})
	case KindPaymentConfirmation:
		blk = decode(&PaymentConfirmation{})
	default:
		return Text{Text: fmt.Sprintf("[unrenderable content: unknown type %q]", string(env.Type))}
	}
	return normalizeBlock(blk)
}

// DecodeBlocks parses a serialized block sequence.
func DecodeBlocks(data []byte) ([]Block, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode block list: %w", err)
	}
	blocks := make([]Block, 0, len(raw))
	for _, r := range raw {
		blocks = append(blocks, DecodeBlock(r))
	}
	return blocks, nil
}

// EncodeBlocks is the inverse of DecodeBlocks.
func EncodeBlocks(blocks []Block) (string, error) {
	b, err := json.Marshal(blocks)
	if err != nil {
		return "", fmt.Errorf("encode block list: %w", err)
	}
	return string(b), nil
}

// DecodeCompletion interprets an agent completion string. Completions are
// normally a JSON block sequence; anything else is surfaced verbatim as a
// single text block.
func DecodeCompletion(completion string) []Block {
	blocks, err := DecodeBlocks([]byte(completion))
	if err != nil || len(blocks) == 0 {
		return []Block{Text{Text: completion}}
	}
	return blocks
}

// normalizeBlock is applied on the decode path so pointer and value forms
// compare the same way for callers.
func normalizeBlock(b Block) Block {
	switch v := b.(type) {
	case *Text:
		return *v
	case *Choices:
		return *v
	case *Video:
		return *v
	case *Form:
		return *v
	case *Confirmation:
		return *v
	case *Progress:
		return *v
	case *SecurityReport:
		return *v
	case *SecurityDashboard:
		return *v
	case *Steps:
		return *v
	case *Payment:
		return *v
	case *PaymentConfirmation:
		return *v
	default:
		return b
	}
}
