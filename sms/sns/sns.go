// Package snssms dispatches verification and login codes as transactional
// SMS through AWS SNS.
package snssms

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"

	core "github.com/open-rails/otpkit/core"
)

// Config carries region and optional static credentials.
type Config struct {
	Region    string
	AccessKey string
	SecretKey string
	Endpoint  string
}

// API is the subset of the SNS client the sender calls.
type API interface {
	Publish(ctx context.Context, in *sns.PublishInput, opts ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Sender implements core.SMSSender on SNS direct publish.
type Sender struct {
	api API
}

func New(ctx context.Context, cfg Config) (*Sender, error) {
	var awsCfg aws.Config
	var err error
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.Region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
		)
	} else {
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	}
	if err != nil {
		return nil, err
	}
	client := sns.NewFromConfig(awsCfg, func(o *sns.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewWithAPI(client), nil
}

// NewWithAPI wires an existing client (or a test fake).
func NewWithAPI(api API) *Sender {
	return &Sender{api: api}
}

func (s *Sender) SendVerificationCode(ctx context.Context, phone, code string) error {
	return s.publish(ctx, phone, fmt.Sprintf("Your verification code is: %s", code))
}

func (s *Sender) SendLoginCode(ctx context.Context, phone, code string) error {
	return s.publish(ctx, phone, fmt.Sprintf("Your verification code is: %s", code))
}

func (s *Sender) publish(ctx context.Context, phone, body string) error {
	_, err := s.api.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(phone),
		Message:     aws.String(body),
		MessageAttributes: map[string]types.MessageAttributeValue{
			// OTPs must not be dropped by promotional throttling.
			"AWS.SNS.SMS.SMSType": {
				DataType:    aws.String("String"),
				StringValue: aws.String("Transactional"),
			},
		},
	})
	if err != nil {
		return &core.DeliveryError{Err: err}
	}
	return nil
}
