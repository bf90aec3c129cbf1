package domain

import (
	"encoding/base64"
	"fmt"

	"github.com/aretw0/agrimind/pkg/schema"
)

// Attachment is a decoded binary payload sent alongside an instruction.
type Attachment struct {
	MIMEType string
	Data     []byte
}

// ParseDataURI decodes data:<mimetype>;base64,<payload>.
func ParseDataURI(uri string) (Attachment, error) {
	mime, payload, err := schema.SplitDataURI(uri)
	if err != nil {
		return Attachment{}, err
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Attachment{}, fmt.Errorf("decode data URI payload: %w", err)
	}
	return Attachment{MIMEType: mime, Data: data}, nil
}

// DataURI encodes the attachment back to a data URI.
func (a Attachment) DataURI() string {
	return "data:" + a.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(a.Data)
}

// SMS delivery status values.
const (
	SMSSent   = "Sent"
	SMSFailed = "Failed"
)

// SMSReceipt is what an SMS gateway reports for one message.
type SMSReceipt struct {
	Status    string `json:"status" mapstructure:"status"`
	MessageID string `json:"messageId" mapstructure:"messageId"`
}
