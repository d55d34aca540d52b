package sns

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/aws/smithy-go"
	"github.com/expertresume/notification-api/internal/config"
	"github.com/expertresume/notification-api/internal/domain"
	"github.com/expertresume/notification-api/internal/pkg/contact"
)

// maxPricePerSMS caps what a single transactional message may cost (USD).
const maxPricePerSMS = "1.00"

// SMSSender delivers verification codes over SMS.
type SMSSender interface {
	SendVerificationCode(ctx context.Context, phone, code string) error
}

type sender struct {
	client *sns.Client
}

func NewSender(cfg *config.Config) (SMSSender, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.SNSRegion),
	}
	if cfg.AWSAccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, err
	}
	return &sender{client: sns.NewFromConfig(awsCfg)}, nil
}

// SendVerificationCode formats the destination to international form, checks
// the accepted number shape before touching the provider, and publishes a
// transactional message with a price ceiling. No SenderID attribute: sender
// ids require DLT registration in this region.
func (s *sender) SendVerificationCode(ctx context.Context, phone, code string) error {
	to := contact.InternationalFormat(phone)
	if !contact.IsValidPhone(to) {
		return domain.Public("invalid phone number for SMS delivery", domain.ErrInvalidFormat)
	}

	message := fmt.Sprintf("Your ExpertResume verification code is: %s. This code will expire in 10 minutes. Don't share this code with anyone.", code)

	_, err := s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(message),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"AWS.SNS.SMS.SMSType": {
				DataType:    aws.String("String"),
				StringValue: aws.String("Transactional"),
			},
			"AWS.SNS.SMS.MaxPrice": {
				DataType:    aws.String("String"),
				StringValue: aws.String(maxPricePerSMS),
			},
		},
	})
	if err != nil {
		slog.Error("sns publish failed", "err", err)
		return mapPublishError(err)
	}
	return nil
}

// mapPublishError translates SNS failure categories into domain errors so
// callers can distinguish terminal conditions (bad credentials, opted-out
// destination) from retryable ones. The provider error stays attached as a
// cause but never surfaces in the message.
func mapPublishError(err error) error {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return domain.Public("sms delivery failed", domain.ErrSMSDelivery, err)
	}
	switch apiErr.ErrorCode() {
	case "AuthorizationError", "InvalidClientTokenId", "UnrecognizedClientException", "SignatureDoesNotMatch":
		return domain.Public("sms service authentication failed", domain.ErrProviderAuth, err)
	case "Throttling", "ThrottledException", "TooManyRequestsException":
		return domain.Public("sms rate limit exceeded, try again in a few minutes", domain.ErrRateLimited, err)
	case "OptedOut":
		return domain.Public("this phone number has opted out of SMS", domain.ErrSuppressed, err)
	case "InvalidParameter", "InvalidParameterValue":
		return domain.Public("invalid phone number for SMS delivery", domain.ErrInvalidFormat, err)
	default:
		return domain.Public("sms delivery failed", domain.ErrSMSDelivery, err)
	}
}
