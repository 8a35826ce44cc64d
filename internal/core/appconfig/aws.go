package appconfig

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/appconfigdata"
	"github.com/aws/aws-sdk-go-v2/service/appconfigdata/types"
)

// AppConfigDataAPI is the part of the AppConfig Data client used here
type AppConfigDataAPI interface {
	StartConfigurationSession(ctx context.Context, params *appconfigdata.StartConfigurationSessionInput, optFns ...func(*appconfigdata.Options)) (*appconfigdata.StartConfigurationSessionOutput, error)
	GetLatestConfiguration(ctx context.Context, params *appconfigdata.GetLatestConfigurationInput, optFns ...func(*appconfigdata.Options)) (*appconfigdata.GetLatestConfigurationOutput, error)
}

// AWSClient polls AWS AppConfig through the AppConfig Data API
type AWSClient struct {
	api AppConfigDataAPI
}

// NewAWSClient wraps an AppConfig Data client
func NewAWSClient(api AppConfigDataAPI) *AWSClient {
	return &AWSClient{api: api}
}

// NewDefaultAWSClient builds a client from the default AWS credential chain
func NewDefaultAWSClient(ctx context.Context) (*AWSClient, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	return NewAWSClient(appconfigdata.NewFromConfig(cfg)), nil
}

// StartSession opens an AppConfig Data configuration session
func (c *AWSClient) StartSession(ctx context.Context, in SessionInput) (string, error) {
	out, err := c.api.StartConfigurationSession(ctx, &appconfigdata.StartConfigurationSessionInput{
		ApplicationIdentifier:                aws.String(in.Application),
		EnvironmentIdentifier:                aws.String(in.Environment),
		ConfigurationProfileIdentifier:       aws.String(in.Profile),
		RequiredMinimumPollIntervalInSeconds: aws.Int32(int32(in.MinPollInterval / time.Second)),
	})
	if err != nil {
		return "", &ConfigTransportError{Op: "StartConfigurationSession", Err: err}
	}
	return aws.ToString(out.InitialConfigurationToken), nil
}

// GetLatestConfiguration polls with a session token. AppConfig answers an
// expired or already used token with BadRequestException.
func (c *AWSClient) GetLatestConfiguration(ctx context.Context, token string) (*LatestConfiguration, error) {
	out, err := c.api.GetLatestConfiguration(ctx, &appconfigdata.GetLatestConfigurationInput{
		ConfigurationToken: aws.String(token),
	})
	if err != nil {
		var badRequest *types.BadRequestException
		if errors.As(err, &badRequest) {
			return nil, fmt.Errorf("%w: %w", ErrSessionInvalid, err)
		}
		return nil, &ConfigTransportError{Op: "GetLatestConfiguration", Err: err}
	}

	return &LatestConfiguration{
		Content:          out.Configuration,
		ContentType:      aws.ToString(out.ContentType),
		NextPollInterval: time.Duration(out.NextPollIntervalInSeconds) * time.Second,
		NextToken:        aws.ToString(out.NextPollConfigurationToken),
	}, nil
}
