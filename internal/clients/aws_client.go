package clients

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/spacesedan/dreamflow/config"
)

var (
	awsCfg   aws.Config
	awsErr   error
	awsOnce  sync.Once
	endpoint string
)

// InitAWS loads the shared AWS config once. An empty endpoint uses the
// regional AWS endpoint; set one for DynamoDB Local.
func InitAWS(ctx context.Context, cfg config.AWSConfig) (aws.Config, error) {
	awsOnce.Do(func() {
		slog.Info("[AWSClient] Initializing AWS Config...",
			slog.String("region", cfg.Region),
			slog.String("endpoint", cfg.Endpoint))

		loaded, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
		if err != nil {
			awsErr = fmt.Errorf("[AWSClient] Failed to load AWS config: %w", err)
			return
		}

		awsCfg = loaded
		endpoint = cfg.Endpoint
		slog.Info("[AWSClient] AWS Config Initialized")
	})

	return awsCfg, awsErr
}

// NewDynamoDBClient builds a client from the config loaded by InitAWS.
func NewDynamoDBClient() *dynamodb.Client {
	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
}
