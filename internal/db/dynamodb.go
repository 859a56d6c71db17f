package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/spacesedan/dreamflow/internal/models"
)

const maxBatchSize = 25

// DynamoAPI is the subset of the DynamoDB client the store uses.
type DynamoAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	BatchWriteItem(ctx context.Context, in *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// DynamoStore keeps one item per entry keyed by id. dream_ts holds the dream
// date in unix milliseconds so windows can be filtered numerically.
type DynamoStore struct {
	client         DynamoAPI
	entriesTable   string
	summariesTable string
}

type entryItem struct {
	ID       string                `json:"id"`
	DreamTS  int64                 `json:"dream_ts"`
	Entry    models.DreamEntry     `json:"entry"`
	Analysis models.AnalysisResult `json:"analysis"`
}

func NewDynamoStore(client DynamoAPI, entriesTable, summariesTable string) *DynamoStore {
	return &DynamoStore{
		client:         client,
		entriesTable:   entriesTable,
		summariesTable: summariesTable,
	}
}

// items follow the json field names so stored records match the API shape
func jsonTags(o *attributevalue.EncoderOptions) { o.TagKey = "json" }
func jsonTagsDecode(o *attributevalue.DecoderOptions) { o.TagKey = "json" }

func marshalEntry(e models.AnalyzedEntry) (map[string]types.AttributeValue, error) {
	return attributevalue.MarshalMapWithOptions(entryItem{
		ID:       e.Entry.ID,
		DreamTS:  e.Entry.DreamDate.UnixMilli(),
		Entry:    e.Entry,
		Analysis: e.Analysis,
	}, jsonTags)
}

func unmarshalEntry(av map[string]types.AttributeValue) (models.AnalyzedEntry, error) {
	var item entryItem
	if err := attributevalue.UnmarshalMapWithOptions(av, &item, jsonTagsDecode); err != nil {
		return models.AnalyzedEntry{}, err
	}
	return cloneEntry(models.AnalyzedEntry{Entry: item.Entry, Analysis: item.Analysis}), nil
}

func idKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id},
	}
}

func (s *DynamoStore) SaveEntry(ctx context.Context, entry models.AnalyzedEntry) error {
	item, err := marshalEntry(entry)
	if err != nil {
		return fmt.Errorf("[DynamoDB] Failed to marshal entry: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.entriesTable),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("[DynamoDB] Failed to put entry: %w", err)
	}
	return nil
}

func (s *DynamoStore) GetEntry(ctx context.Context, id string) (models.AnalyzedEntry, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.entriesTable),
		Key:            idKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return models.AnalyzedEntry{}, fmt.Errorf("[DynamoDB] Failed to get entry: %w", err)
	}
	if len(out.Item) == 0 {
		return models.AnalyzedEntry{}, ErrNotFound
	}
	entry, err := unmarshalEntry(out.Item)
	if err != nil {
		return models.AnalyzedEntry{}, fmt.Errorf("[DynamoDB] Failed to unmarshal entry: %w", err)
	}
	return entry, nil
}

func (s *DynamoStore) DeleteEntry(ctx context.Context, id string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(s.entriesTable),
		Key:                 idKey(id),
		ConditionExpression: aws.String("attribute_exists(id)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrNotFound
		}
		return fmt.Errorf("[DynamoDB] Failed to delete entry: %w", err)
	}
	return nil
}

func (s *DynamoStore) ListEntries(ctx context.Context, start, end time.Time) ([]models.AnalyzedEntry, error) {
	input := &dynamodb.ScanInput{
		TableName:        aws.String(s.entriesTable),
		FilterExpression: aws.String("dream_ts >= :start AND dream_ts < :end"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":start": &types.AttributeValueMemberN{Value: strconv.FormatInt(start.UnixMilli(), 10)},
			":end":   &types.AttributeValueMemberN{Value: strconv.FormatInt(end.UnixMilli(), 10)},
		},
	}

	entries := make([]models.AnalyzedEntry, 0)
	paginator := dynamodb.NewScanPaginator(s.client, input)
	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("[DynamoDB] Scan for entries failed: %w", err)
		}
		for _, av := range out.Items {
			entry, err := unmarshalEntry(av)
			if err != nil {
				slog.Error("[DynamoDB] Unable to unmarshal entry",
					slog.String("error", err.Error()))
				return nil, err
			}
			// millisecond keys can admit a boundary instant; re-check exactly
			d := entry.Entry.DreamDate
			if d.Before(start) || !d.Before(end) {
				continue
			}
			entries = append(entries, entry)
		}
	}

	SortEntries(entries)
	slog.Debug("[DynamoDB] Retrieved entries", slog.Int("count", len(entries)))
	return entries, nil
}

// SaveEntries writes entries in batches of 25, retrying unprocessed items
// with backoff.
func (s *DynamoStore) SaveEntries(ctx context.Context, entries []models.AnalyzedEntry) error {
	for i := 0; i < len(entries); i += maxBatchSize {
		if err := ctx.Err(); err != nil {
			slog.Warn("[DynamoDB] context canceled")
			return err
		}

		end := min(i+maxBatchSize, len(entries))
		writeRequests := make([]types.WriteRequest, 0, end-i)
		for _, e := range entries[i:end] {
			item, err := marshalEntry(e)
			if err != nil {
				return fmt.Errorf("[DynamoDB] Failed to marshal entry %s: %w", e.Entry.ID, err)
			}
			writeRequests = append(writeRequests, types.WriteRequest{
				PutRequest: &types.PutRequest{Item: item},
			})
		}

		if err := s.batchWrite(ctx, writeRequests); err != nil {
			return err
		}
	}
	slog.Info("[DynamoDB] Successfully stored entries", slog.Int("count", len(entries)))
	return nil
}

func (s *DynamoStore) batchWrite(ctx context.Context, writeRequests []types.WriteRequest) error {
	out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
		RequestItems: map[string][]types.WriteRequest{
			s.entriesTable: writeRequests,
		},
	})
	if err != nil {
		return fmt.Errorf("[DynamoDB] Failed to batch write entries: %w", err)
	}

	retryCount := 0
	backoff := 500 * time.Millisecond
	for len(out.UnprocessedItems) > 0 && retryCount < 3 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2

		slog.Warn("[DynamoDB] Retrying unprocessed items...",
			slog.Int("retry_attempt", retryCount+1),
			slog.Int("remaining_items", len(out.UnprocessedItems[s.entriesTable])))

		out, err = s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: out.UnprocessedItems,
		})
		if err != nil {
			return fmt.Errorf("[DynamoDB] Failed to retry batch write: %w", err)
		}
		retryCount++
	}

	if remaining := len(out.UnprocessedItems[s.entriesTable]); remaining > 0 {
		return fmt.Errorf("[DynamoDB] %d entries were not written after retries", remaining)
	}
	return nil
}

func (s *DynamoStore) SaveSummary(ctx context.Context, summary models.PeriodSummary) error {
	item, err := attributevalue.MarshalMapWithOptions(summary, jsonTags)
	if err != nil {
		return fmt.Errorf("[DynamoDB] Failed to marshal summary: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.summariesTable),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("[DynamoDB] Failed to put summary: %w", err)
	}
	return nil
}

func (s *DynamoStore) ListSummaries(ctx context.Context) ([]models.PeriodSummary, error) {
	summaries := make([]models.PeriodSummary, 0)
	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName: aws.String(s.summariesTable),
	})
	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("[DynamoDB] Scan for summaries failed: %w", err)
		}
		var page []models.PeriodSummary
		if err := attributevalue.UnmarshalListOfMapsWithOptions(out.Items, &page, jsonTagsDecode); err != nil {
			return nil, fmt.Errorf("[DynamoDB] Unable to unmarshal summaries: %w", err)
		}
		summaries = append(summaries, page...)
	}

	SortSummaries(summaries)
	return summaries, nil
}

func (s *DynamoStore) Ping(ctx context.Context) error {
	_, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(s.entriesTable),
	})
	if err != nil {
		return fmt.Errorf("[DynamoDB] Failed to describe table: %w", err)
	}
	return nil
}
