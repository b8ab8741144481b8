// Package dynamodoc persists the document as a single DynamoDB item. The JSON
// rendition of the document is stored verbatim in one attribute, keeping the
// same whole-document load/save contract as the file backend.
package dynamodoc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/otpgate/internal/config"
	"github.com/otpgate/internal/domain"
)

// docID is the partition key of the single item holding the document.
const docID = "state"

// record is the DynamoDB item layout.
type record struct {
	DocID     string `dynamodbav:"doc_id"`
	Body      string `dynamodbav:"body"`
	UpdatedAt string `dynamodbav:"updated_at"`
}

// Store reads and writes the whole document to one item in a table.
type Store struct {
	client    *dynamodb.Client
	tableName string
}

// NewClient creates a DynamoDB client. When cfg.AWSEndpointURL is set
// (LocalStack), it overrides the endpoint so all traffic goes to the local instance.
func NewClient(cfg *config.Config) *dynamodb.Client {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
	}

	if cfg.AWSAccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		panic("failed to load AWS config: " + err.Error())
	}

	clientOpts := []func(*dynamodb.Options){}
	if cfg.AWSEndpointURL != "" {
		clientOpts = append(clientOpts, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
		})
	}

	return dynamodb.NewFromConfig(awsCfg, clientOpts...)
}

func New(client *dynamodb.Client, tableName string) *Store {
	return &Store{client: client, tableName: tableName}
}

// Bootstrap creates the document table if it doesn't already exist.
// Safe to call on every startup.
func Bootstrap(ctx context.Context, client *dynamodb.Client, tableName string) {
	_, err := client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName:   aws.String(tableName),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("doc_id"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("doc_id"), KeyType: types.KeyTypeHash},
		},
	})
	if err != nil {
		// ResourceInUseException means the table already exists — that's fine.
		var riue *types.ResourceInUseException
		if !errors.As(err, &riue) {
			slog.Warn("could not create table", "table", tableName, "err", err)
		}
	} else {
		slog.Info("created table", "table", tableName)
	}
}

// Init writes an empty document when the item does not exist yet.
func (s *Store) Init(ctx context.Context) error {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key:       key(),
	})
	if err != nil {
		return fmt.Errorf("get document item: %v: %w", err, domain.ErrStorage)
	}
	if out.Item != nil {
		return nil
	}
	return s.Save(ctx, domain.NewDocument())
}

func (s *Store) Load(ctx context.Context) (*domain.Document, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key:       key(),
	})
	if err != nil {
		return nil, fmt.Errorf("get document item: %v: %w", err, domain.ErrStorage)
	}
	if out.Item == nil {
		return nil, fmt.Errorf("document item missing: %w", domain.ErrStorage)
	}
	var rec record
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal document item: %v: %w", err, domain.ErrStorage)
	}
	var doc domain.Document
	if err := json.Unmarshal([]byte(rec.Body), &doc); err != nil {
		return nil, fmt.Errorf("decode document body: %v: %w", err, domain.ErrStorage)
	}
	return &doc, nil
}

func (s *Store) Save(ctx context.Context, doc *domain.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %v: %w", err, domain.ErrStorage)
	}
	item, err := attributevalue.MarshalMap(record{
		DocID:     docID,
		Body:      string(raw),
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("marshal document item: %v: %w", err, domain.ErrStorage)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put document item: %v: %w", err, domain.ErrStorage)
	}
	return nil
}

func key() map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"doc_id": &types.AttributeValueMemberS{Value: docID},
	}
}
