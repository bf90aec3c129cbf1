package ports

import (
	"context"

	"github.com/aretw0/agrimind/pkg/domain"
)

// Geocoder resolves coordinates to a human-readable place name.
type Geocoder interface {
	Reverse(ctx context.Context, lat, lon float64) (string, error)
}

// SMSGateway delivers text messages.
type SMSGateway interface {
	// Send delivers message to an international (+-prefixed) phone number.
	Send(ctx context.Context, phone, message string) (domain.SMSReceipt, error)
}
