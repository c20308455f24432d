package validations

import (
	"context"

	domainMessage "github.com/hansai/wa-bridge/domains/message"
	pkgError "github.com/hansai/wa-bridge/pkg/error"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

func ValidateSendMessage(ctx context.Context, request domainMessage.SendMessageRequest, maxLength int) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.To, validation.Required),
		validation.Field(&request.Message, validation.Required, validation.Length(1, maxLength)),
		validation.Field(&request.Type, validation.In("", "text", "template")),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

func ValidateSendInteractive(ctx context.Context, request domainMessage.InteractiveMessageRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.To, validation.Required),
		validation.Field(&request.Text, validation.Required),
		validation.Field(&request.Buttons, validation.Required),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

func ValidateMarkAsRead(ctx context.Context, request domainMessage.MarkAsReadRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.MessageID, validation.Required),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}
