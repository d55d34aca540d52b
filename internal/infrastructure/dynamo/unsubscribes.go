package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/expertresume/notification-api/internal/domain"
)

// UnsubscribeRepo reads the suppression set. Records are written by the
// unsubscribe page in the web product; this service only consults them.
type UnsubscribeRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewUnsubscribeRepo(client *dynamodb.Client, tableName string) *UnsubscribeRepo {
	return &UnsubscribeRepo{client: client, tableName: tableName}
}

// Exists reports whether the address is in the suppression set. Existence
// alone is the signal; the record payload is never read.
func (r *UnsubscribeRepo) Exists(ctx context.Context, email string) (bool, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("email", email),
	})
	if err != nil {
		return false, fmt.Errorf("get unsubscribe record: %w: %w", domain.ErrStorage, err)
	}
	return out.Item != nil, nil
}
