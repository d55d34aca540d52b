package ses

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/expertresume/notification-api/internal/config"
	"github.com/expertresume/notification-api/internal/domain"
)

// Relay hands a fully assembled raw MIME message to the email provider for
// delivery to the given envelope recipients and returns its message id.
// Destinations are explicit because Bcc recipients are never present in the
// message headers; they exist only on the envelope.
type Relay interface {
	SendRaw(ctx context.Context, raw []byte, destinations []string) (messageID string, err error)
}

type relay struct {
	client *ses.Client
}

func NewRelay(cfg *config.Config) (Relay, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.SESRegion),
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
	return &relay{client: ses.NewFromConfig(awsCfg)}, nil
}

func (r *relay) SendRaw(ctx context.Context, raw []byte, destinations []string) (string, error) {
	out, err := r.client.SendRawEmail(ctx, &ses.SendRawEmailInput{
		RawMessage:   &types.RawMessage{Data: raw},
		Destinations: destinations,
	})
	if err != nil {
		slog.Error("ses send raw email failed", "destinations", len(destinations), "err", err)
		return "", domain.Public("email delivery failed", domain.ErrEmailDelivery, err)
	}
	return aws.ToString(out.MessageId), nil
}
