// Package repository backs the product catalog with a DynamoDB table. The
// table is read-only at serve time; PutProduct exists for seeding. Catalog
// order is preserved through zero-padded position sort keys.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"routine-builder/internal/domain"
)

const (
	catalogPK   = "CATALOG"
	skPrefixPrd = "PRODUCT#"
)

// dynamodbAPI is the minimal DynamoDB interface required by Client.
// Defined here for testability.
type dynamodbAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Client wraps a DynamoDB table holding the catalog document.
type Client struct {
	api       dynamodbAPI
	tableName string
}

func New(api dynamodbAPI, tableName string) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Client{api: api, tableName: tableName}, nil
}

// productSK returns the sort key for a product at the given catalog position.
// The padded position keeps Query results in catalog order.
func productSK(position int, id string) string {
	return fmt.Sprintf("%s%05d#%s", skPrefixPrd, position, id)
}

// ListProducts returns the full catalog in catalog order.
func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	in := &dynamodb.QueryInput{
		TableName:              aws.String(c.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: catalogPK},
			":prefix": &types.AttributeValueMemberS{Value: skPrefixPrd},
		},
		ScanIndexForward: aws.Bool(true),
	}

	var products []domain.Product
	for {
		out, err := c.api.Query(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("repository: ListProducts query: %w", err)
		}
		for _, item := range out.Items {
			p, err := itemToProduct(item)
			if err != nil {
				return nil, fmt.Errorf("repository: ListProducts unmarshal: %w", err)
			}
			products = append(products, p)
		}
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		in.ExclusiveStartKey = out.LastEvaluatedKey
	}
	return products, nil
}

// PutProduct writes one catalog entry at the given position. Seeding only.
func (c *Client) PutProduct(ctx context.Context, p domain.Product, position int) error {
	if p.ID == "" {
		return errors.New("repository: PutProduct: product id is required")
	}
	if position < 0 {
		return errors.New("repository: PutProduct: position must not be negative")
	}

	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.tableName),
		Item:      productItem(p, position),
	})
	if err != nil {
		return fmt.Errorf("repository: PutProduct: %w", err)
	}
	return nil
}

func productItem(p domain.Product, position int) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":          &types.AttributeValueMemberS{Value: catalogPK},
		"SK":          &types.AttributeValueMemberS{Value: productSK(position, p.ID)},
		"id":          &types.AttributeValueMemberS{Value: p.ID},
		"name":        &types.AttributeValueMemberS{Value: p.Name},
		"brand":       &types.AttributeValueMemberS{Value: p.Brand},
		"category":    &types.AttributeValueMemberS{Value: p.Category},
		"description": &types.AttributeValueMemberS{Value: p.Description},
		"image":       &types.AttributeValueMemberS{Value: p.Image},
	}
}

func itemToProduct(item map[string]types.AttributeValue) (domain.Product, error) {
	id, err := strAttr(item, "id")
	if err != nil {
		return domain.Product{}, err
	}
	name, err := strAttr(item, "name")
	if err != nil {
		return domain.Product{}, err
	}
	brand, _ := strAttr(item, "brand")             // allow empty
	category, _ := strAttr(item, "category")       // allow empty
	description, _ := strAttr(item, "description") // allow empty
	image, _ := strAttr(item, "image")             // allow empty

	return domain.Product{
		ID:          id,
		Name:        name,
		Brand:       brand,
		Category:    category,
		Description: description,
		Image:       image,
	}, nil
}

func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("repository: missing attribute %q", key)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("repository: attribute %q is not a string", key)
	}
	return s.Value, nil
}
