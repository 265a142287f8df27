package dynamodb

import (
	"context"
	"errors"
	"math"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"

	"github.com/redbco/redb-connect/pkg/connector"
	"github.com/redbco/redb-connect/pkg/dbcapabilities"
	"github.com/redbco/redb-connect/pkg/table"
)

// StatementAPI is the part of the DynamoDB client the cursor needs.
type StatementAPI interface {
	ExecuteStatement(ctx context.Context, params *dynamodb.ExecuteStatementInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ExecuteStatementOutput, error)
}

// Cursor runs PartiQL statements and collects every page of items.
type Cursor struct {
	client StatementAPI
}

// NewCursor wraps a DynamoDB client.
func NewCursor(client StatementAPI) *Cursor {
	return &Cursor{client: client}
}

// ResultSet holds decoded items and the sorted union of their attribute names.
type ResultSet struct {
	Columns []string
	Items   []map[string]any
}

// Rows returns the items ordered by Columns. Missing attributes are nil.
func (rs *ResultSet) Rows() []connector.Row {
	rows := make([]connector.Row, 0, len(rs.Items))
	for _, item := range rs.Items {
		row := make(connector.Row, len(rs.Columns))
		for i, col := range rs.Columns {
			row[i] = item[col]
		}
		rows = append(rows, row)
	}
	return rows
}

// Table converts the result set to a table.
func (rs *ResultSet) Table() *table.Table {
	t := table.New(rs.Columns)
	for _, row := range rs.Rows() {
		t.Append(row)
	}
	return t
}

// Execute runs statement and follows NextToken until the result is exhausted.
func (c *Cursor) Execute(ctx context.Context, statement string) (*ResultSet, error) {
	input := &dynamodb.ExecuteStatementInput{Statement: aws.String(statement)}

	rs := &ResultSet{Items: []map[string]any{}}
	seen := make(map[string]struct{})
	for {
		out, err := c.execute(ctx, input)
		if err != nil {
			return nil, err
		}
		for _, raw := range out.Items {
			item, err := decodeItem(raw)
			if err != nil {
				return nil, connector.NewDatabaseError(dbcapabilities.DynamoDB, "decode item", err)
			}
			for k := range item {
				if _, ok := seen[k]; !ok {
					seen[k] = struct{}{}
					rs.Columns = append(rs.Columns, k)
				}
			}
			rs.Items = append(rs.Items, item)
		}
		if out.NextToken == nil || *out.NextToken == "" {
			break
		}
		input.NextToken = out.NextToken
	}
	sort.Strings(rs.Columns)
	return rs, nil
}

// execute runs one page and classifies engine failures.
func (c *Cursor) execute(ctx context.Context, input *dynamodb.ExecuteStatementInput) (*dynamodb.ExecuteStatementOutput, error) {
	out, err := c.client.ExecuteStatement(ctx, input)
	if err == nil {
		return out, nil
	}

	var notFound *types.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return nil, connector.NewNotFoundError(dbcapabilities.DynamoDB, "table", "").WithMessage(aws.ToString(notFound.Message))
	}

	var sendErr *smithyhttp.RequestSendError
	if errors.As(err, &sendErr) {
		return nil, connector.NewTransientError(dbcapabilities.DynamoDB, err)
	}

	dbErr := connector.NewDatabaseError(dbcapabilities.DynamoDB, "execute statement", err).
		WithContext("statement", aws.ToString(input.Statement))
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		dbErr = dbErr.WithContext("code", apiErr.ErrorCode())
	}
	return nil, dbErr
}

func decodeItem(raw map[string]types.AttributeValue) (map[string]any, error) {
	var item map[string]any
	if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
		return nil, err
	}
	for k, v := range item {
		item[k] = normalizeNumber(v)
	}
	return item, nil
}

// normalizeNumber turns integral numbers back into int64.
func normalizeNumber(v any) any {
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return v
	}
	return int64(f)
}
