package store

import (
	"context"
	"errors"
	"fmt"

	"calcburst/internal/calculator"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
)

// PutItemAPI is the part of the DynamoDB client the store uses.
type PutItemAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// DynamoDB writes records into a table keyed by calculation_id. Expiry is
// handled by the table's TTL setting on the ttl attribute.
type DynamoDB struct {
	client PutItemAPI
	table  string
}

func NewDynamoDB(client PutItemAPI, table string) *DynamoDB {
	return &DynamoDB{client: client, table: table}
}

// number marshals a decimal as a DynamoDB N attribute without going through float64.
type number decimal.Decimal

func (n number) MarshalDynamoDBAttributeValue() (types.AttributeValue, error) {
	return &types.AttributeValueMemberN{Value: decimal.Decimal(n).String()}, nil
}

type dynamoItem struct {
	CalculationID   string   `dynamodbav:"calculation_id"`
	Operation       string   `dynamodbav:"operation"`
	Operands        []number `dynamodbav:"operands"`
	Result          number   `dynamodbav:"result"`
	Timestamp       string   `dynamodbav:"timestamp"`
	ExecutionTimeMS number   `dynamodbav:"execution_time_ms"`
	TTL             int64    `dynamodbav:"ttl"`
}

func newDynamoItem(rec calculator.Record) dynamoItem {
	operands := make([]number, len(rec.Operands))
	for i, op := range rec.Operands {
		operands[i] = number(op)
	}
	return dynamoItem{
		CalculationID:   rec.CalculationID,
		Operation:       string(rec.Operation),
		Operands:        operands,
		Result:          number(rec.Result),
		Timestamp:       rec.FormattedTimestamp(),
		ExecutionTimeMS: number(rec.ExecutionTimeMS),
		TTL:             rec.TTL(),
	}
}

func (d *DynamoDB) PutIfAbsent(ctx context.Context, rec calculator.Record) error {
	item, err := attributevalue.MarshalMap(newDynamoItem(rec))
	if err != nil {
		return fmt.Errorf("dynamodb marshal error: %w", err)
	}

	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(d.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(calculation_id)"),
	})
	if err != nil {
		var conditionErr *types.ConditionalCheckFailedException
		if errors.As(err, &conditionErr) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("dynamodb put item: %w", err)
	}
	return nil
}
