package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/pageza/alchemorsel-voice/backend/internal/models"
)

const dynamoKey = "UserId"

// DynamoAPI is the subset of the DynamoDB client used by DynamoStore
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

// DynamoStore keeps profiles in a DynamoDB table keyed by UserId.
// Allergies are a string set so that merges use ADD.
type DynamoStore struct {
	client DynamoAPI
	table  string
}

var _ ProfileStore = (*DynamoStore)(nil)

// NewDynamoStore creates a DynamoStore on the given table
func NewDynamoStore(client DynamoAPI, table string) *DynamoStore {
	return &DynamoStore{client: client, table: table}
}

func (s *DynamoStore) key(userID string) map[string]ddbtypes.AttributeValue {
	return map[string]ddbtypes.AttributeValue{
		dynamoKey: &ddbtypes.AttributeValueMemberS{Value: userID},
	}
}

// GetProfile retrieves a profile with a consistent read
func (s *DynamoStore) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            s.key(userID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get profile %s: %w", userID, err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	return decodeProfile(out.Item)
}

// CreateProfile puts the profile unless one already exists
func (s *DynamoStore) CreateProfile(ctx context.Context, profile *models.UserProfile) error {
	item, err := attributevalue.MarshalMap(profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(s.table),
		Item:                     item,
		ConditionExpression:      aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{"#id": dynamoKey},
	})
	var conflict *ddbtypes.ConditionalCheckFailedException
	if errors.As(err, &conflict) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("create profile %s: %w", profile.UserID, err)
	}
	return nil
}

// MergeProfile issues a single UpdateItem: SET for the diet, ADD for the
// allergy set. DynamoDB applies the set union server side.
func (s *DynamoStore) MergeProfile(ctx context.Context, userID string, diet *string, allergies []string) (*models.UserProfile, error) {
	var set, add []string
	names := map[string]string{}
	values := map[string]ddbtypes.AttributeValue{}

	if diet != nil {
		set = append(set, "#d = :d")
		names["#d"] = "diet"
		values[":d"] = &ddbtypes.AttributeValueMemberS{Value: *diet}
	}
	if len(allergies) > 0 {
		add = append(add, "#a :a")
		names["#a"] = "allergies"
		values[":a"] = &ddbtypes.AttributeValueMemberSS{Value: allergies}
	}
	if len(set) == 0 && len(add) == 0 {
		return s.GetProfile(ctx, userID)
	}

	var expr []string
	if len(set) > 0 {
		expr = append(expr, "SET "+strings.Join(set, ", "))
	}
	if len(add) > 0 {
		expr = append(expr, "ADD "+strings.Join(add, ", "))
	}

	out, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.table),
		Key:                       s.key(userID),
		UpdateExpression:          aws.String(strings.Join(expr, " ")),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ReturnValues:              ddbtypes.ReturnValueAllNew,
	})
	if err != nil {
		return nil, fmt.Errorf("merge profile %s: %w", userID, err)
	}
	return decodeProfile(out.Attributes)
}

func decodeProfile(item map[string]ddbtypes.AttributeValue) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := attributevalue.UnmarshalMap(item, &profile); err != nil {
		return nil, fmt.Errorf("unmarshal profile: %w", err)
	}
	profile.Normalize()
	return &profile, nil
}
