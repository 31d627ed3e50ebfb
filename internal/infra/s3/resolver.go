package infra_s3

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/humanbelnik/kinoreco/internal/config"
)

type ClientType string

const (
	ClientTypeRealS3 ClientType = "real"
	ClientTypeMock   ClientType = "mock"
	// ClientTypeMemory selects the in-process blob store instead of an S3
	// client. Nothing survives a restart; local runs and tests only.
	ClientTypeMemory ClientType = "memory"
)

func MustEstablishConn(cfg config.S3) *s3.Client {
	switch ClientType(cfg.ClientType) {
	case ClientTypeMock:
		return createMockClient(cfg.MockEndpoint)
	case ClientTypeRealS3:
		fallthrough
	default:
		return createRealClient()
	}
}

func createRealClient() *s3.Client {
	cfg, err := awsconfig.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("Using REAL S3 client in region:", cfg.Region)
	return s3.NewFromConfig(cfg)
}

func createMockClient(mockEndpoint string) *s3.Client {
	fmt.Println("Using MOCK S3 client with endpoint:", mockEndpoint)

	customResolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL:               mockEndpoint,
			SigningRegion:     "mock-region",
			HostnameImmutable: true,
		}, nil
	})

	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithEndpointResolverWithOptions(customResolver),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("mock", "mock", "")),
		awsconfig.WithRegion("mock-region"),
	)
	if err != nil {
		log.Fatal("Failed to create mock S3 config:", err)
	}

	return s3.NewFromConfig(cfg)
}
