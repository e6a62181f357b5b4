// Package catalog records which checkpoint is the committed state of a tree.
//
// Object stores lack compare-and-swap, so a blob listing alone cannot tell a
// finished checkpoint from an in-flight one, and two writers could both
// believe they own the latest. The catalog uses DynamoDB conditional writes
// as the commit log: a checkpoint counts as committed only once its entry
// lands here, and conflicting commits fail instead of clobbering each other.
//
// Table schema:
//   - Partition key: tree (string) - the tree identifier
//   - Sort key: commit (number) - monotonically increasing commit sequence
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name mvbtree-commits \
//	  --attribute-definitions AttributeName=tree,AttributeType=S AttributeName=commit,AttributeType=N \
//	  --key-schema AttributeName=tree,KeyType=HASH AttributeName=commit,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ErrConcurrentCommit is returned when another writer committed the same
// sequence number first.
var ErrConcurrentCommit = errors.New("catalog: concurrent commit detected")

// ErrNoCommits is returned by Latest when the tree has no committed
// checkpoints.
var ErrNoCommits = errors.New("catalog: no commits")

// DDBClient is the slice of the DynamoDB API the catalog uses.
// *dynamodb.Client satisfies it.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Commit is one committed checkpoint of a tree.
type Commit struct {
	// Sequence is the commit's position in the tree's history, starting at 1.
	Sequence uint64
	// Checkpoint is the blob name of the checkpoint file.
	Checkpoint string
	// Clock is the tree's logical timestamp at checkpoint time.
	Clock uint64
}

// Catalog is a DynamoDB-backed commit log for one table of trees.
type Catalog struct {
	client    DDBClient
	tableName string
}

// New creates a Catalog on the given table.
func New(client DDBClient, tableName string) *Catalog {
	return &Catalog{client: client, tableName: tableName}
}

// Commit records a checkpoint as the next commit of the tree. It reads the
// current head, then writes head+1 with a conditional put. If another writer
// wins the race the put fails the condition and ErrConcurrentCommit is
// returned; the caller may retry after reloading.
func (c *Catalog) Commit(ctx context.Context, tree, checkpoint string, clock uint64) (Commit, error) {
	head, err := c.latestSequence(ctx, tree)
	if err != nil && !errors.Is(err, ErrNoCommits) {
		return Commit{}, err
	}

	next := Commit{Sequence: head + 1, Checkpoint: checkpoint, Clock: clock}

	_, err = c.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.tableName),
		Item: map[string]types.AttributeValue{
			"tree":       &types.AttributeValueMemberS{Value: tree},
			"commit":     &types.AttributeValueMemberN{Value: strconv.FormatUint(next.Sequence, 10)},
			"checkpoint": &types.AttributeValueMemberS{Value: checkpoint},
			"clock":      &types.AttributeValueMemberN{Value: strconv.FormatUint(clock, 10)},
		},
		ConditionExpression: aws.String("attribute_not_exists(#c)"),
		ExpressionAttributeNames: map[string]string{
			"#c": "commit",
		},
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return Commit{}, ErrConcurrentCommit
		}
		return Commit{}, fmt.Errorf("catalog: commit: %w", err)
	}

	return next, nil
}

// Latest returns the most recent commit of the tree.
func (c *Catalog) Latest(ctx context.Context, tree string) (Commit, error) {
	resp, err := c.queryHead(ctx, tree)
	if err != nil {
		return Commit{}, err
	}
	if len(resp.Items) == 0 {
		return Commit{}, ErrNoCommits
	}
	return parseCommit(resp.Items[0])
}

func (c *Catalog) latestSequence(ctx context.Context, tree string) (uint64, error) {
	latest, err := c.Latest(ctx, tree)
	if err != nil {
		return 0, err
	}
	return latest.Sequence, nil
}

func (c *Catalog) queryHead(ctx context.Context, tree string) (*dynamodb.QueryOutput, error) {
	resp, err := c.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(c.tableName),
		KeyConditionExpression: aws.String("#t = :tree"),
		ExpressionAttributeNames: map[string]string{
			"#t": "tree",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":tree": &types.AttributeValueMemberS{Value: tree},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("catalog: query: %w", err)
	}
	return resp, nil
}

func parseCommit(item map[string]types.AttributeValue) (Commit, error) {
	seqAttr, ok := item["commit"].(*types.AttributeValueMemberN)
	if !ok {
		return Commit{}, errors.New("catalog: invalid commit attribute")
	}
	ckptAttr, ok := item["checkpoint"].(*types.AttributeValueMemberS)
	if !ok {
		return Commit{}, errors.New("catalog: invalid checkpoint attribute")
	}
	clockAttr, ok := item["clock"].(*types.AttributeValueMemberN)
	if !ok {
		return Commit{}, errors.New("catalog: invalid clock attribute")
	}

	seq, err := strconv.ParseUint(seqAttr.Value, 10, 64)
	if err != nil {
		return Commit{}, fmt.Errorf("catalog: parse commit sequence: %w", err)
	}
	clock, err := strconv.ParseUint(clockAttr.Value, 10, 64)
	if err != nil {
		return Commit{}, fmt.Errorf("catalog: parse clock: %w", err)
	}

	return Commit{Sequence: seq, Checkpoint: ckptAttr.Value, Clock: clock}, nil
}
