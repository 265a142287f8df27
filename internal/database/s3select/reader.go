package s3select

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/redbco/redb-connect/pkg/connector"
	"github.com/redbco/redb-connect/pkg/dbcapabilities"
	"github.com/redbco/redb-connect/pkg/table"
)

// Reader runs S3 Select queries over the objects resolved for a session.
type Reader struct {
	client Client
	opts   Options
	files  []string
}

// Files returns the object keys the reader queries, in query order.
func (r *Reader) Files() []string {
	return append([]string(nil), r.files...)
}

// statusCoder is implemented by the SDK's HTTP response errors.
type statusCoder interface {
	HTTPStatusCode() int
}

func statusOf(err error) int {
	var sc statusCoder
	if errors.As(err, &sc) {
		return sc.HTTPStatusCode()
	}
	return 0
}

// resolve finds the objects to query. A file with an extension names one
// object; anything else is a prefix matched against the file type.
func resolve(ctx context.Context, client Client, opts Options) ([]string, error) {
	if path.Ext(opts.File) != "" {
		_, err := client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(opts.Bucket),
			Key:    aws.String(opts.File),
		})
		switch {
		case err == nil:
			return []string{opts.File}, nil
		case statusOf(err) == 404:
			return nil, connector.NewNotFoundError(dbcapabilities.S3Select, "object", opts.File).
				WithMessage(fmt.Sprintf("File '%s' not found in AWS S3 '%s' under region '%s'", opts.File, opts.Bucket, opts.Region))
		case statusOf(err) == 403:
			return nil, fmt.Errorf("%w: Unauthorized access", connector.ErrPermissionDenied)
		default:
			return nil, connector.NewConnectionError(dbcapabilities.S3Select, opts.Bucket, 0,
				fmt.Errorf("something went wrong while looking for the file to query: %w", err))
		}
	}

	suffix := "." + string(opts.Type)
	var files []string
	pager := s3.NewListObjectsV2Paginator(client, &s3.ListObjectsV2Input{
		Bucket: aws.String(opts.Bucket),
		Prefix: aws.String(opts.File),
	})
	for pager.HasMorePages() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			if statusOf(err) == 403 {
				return nil, fmt.Errorf("%w: Unauthorized access", connector.ErrPermissionDenied)
			}
			return nil, connector.NewConnectionError(dbcapabilities.S3Select, opts.Bucket, 0, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if strings.ToLower(path.Ext(key)) == suffix {
				files = append(files, key)
			}
		}
	}
	if len(files) == 0 {
		return nil, connector.NewNotFoundError(dbcapabilities.S3Select, "object", opts.File).
			WithMessage(fmt.Sprintf("File(s) '%s' not found in AWS S3 '%s' under region '%s'", opts.File, opts.Bucket, opts.Region))
	}
	return files, nil
}

// trailingLimit matches a LIMIT clause closing an expression; S3 Select
// accepts LIMIT only as the last clause.
var trailingLimit = regexp.MustCompile(`(?i)\blimit\s+(\d+)$`)

// Expression returns the SQL sent to S3 for text. A trailing semicolon is
// dropped. The configured limit is pushed down unless text carries its own
// LIMIT; for CSV it is raised by one because the header line is a record.
func (o Options) Expression(text string) string {
	expr := strings.TrimRight(strings.TrimSpace(text), "; \t\r\n")
	if expr == "" {
		expr = defaultQuery
	}
	if o.Limit <= 0 || trailingLimit.MatchString(expr) {
		return expr
	}
	n := o.Limit
	if o.Type == TypeCSV {
		n++
	}
	return expr + " LIMIT " + strconv.Itoa(n)
}

// serialization returns the input and output formats for the file type.
func (o Options) serialization() (*types.InputSerialization, *types.OutputSerialization) {
	in := &types.InputSerialization{CompressionType: types.CompressionType(o.Compression)}
	out := &types.OutputSerialization{}
	switch o.Type {
	case TypeCSV:
		in.CSV = &types.CSVInput{
			FileHeaderInfo:  types.FileHeaderInfoNone,
			RecordDelimiter: aws.String(o.RecordDelimiter),
			FieldDelimiter:  aws.String(o.FieldDelimiter),
		}
		out.CSV = &types.CSVOutput{
			RecordDelimiter: aws.String(o.RecordDelimiter),
			FieldDelimiter:  aws.String(o.FieldDelimiter),
		}
	case TypeJSON:
		in.JSON = &types.JSONInput{Type: types.JSONTypeDocument}
		out.JSON = &types.JSONOutput{RecordDelimiter: aws.String(",")}
	case TypeParquet:
		in.Parquet = &types.ParquetInput{}
		out.JSON = &types.JSONOutput{RecordDelimiter: aws.String(",")}
	}
	return in, out
}

// Query runs text against every resolved object and concatenates the
// results. The limit is enforced on the combined rows.
func (r *Reader) Query(ctx context.Context, text string) (*table.Table, error) {
	expr := r.opts.Expression(text)
	in, out := r.opts.serialization()

	var parts []*table.Table
	total := 0
	for _, key := range r.files {
		if r.opts.Limit > 0 && total >= r.opts.Limit {
			break
		}

		payload, err := r.selectObject(ctx, &s3.SelectObjectContentInput{
			Bucket:              aws.String(r.opts.Bucket),
			Key:                 aws.String(key),
			Expression:          aws.String(expr),
			ExpressionType:      types.ExpressionTypeSql,
			InputSerialization:  in,
			OutputSerialization: out,
		})
		if err != nil {
			return nil, err
		}

		t, err := r.parse(payload)
		if err != nil {
			return nil, connector.NewDatabaseError(dbcapabilities.S3Select, "parse select output", err).WithContext("key", key)
		}

		if r.opts.Limit > 0 && total+t.Len() > r.opts.Limit {
			t = t.Head(r.opts.Limit - total)
		}
		total += t.Len()
		parts = append(parts, t)
	}
	return table.Concat(parts...), nil
}

// selectObject collects the Records payloads of one select call. A stream
// that closes without an End event is an incomplete request.
func (r *Reader) selectObject(ctx context.Context, input *s3.SelectObjectContentInput) ([]byte, error) {
	stream, err := r.client.Select(ctx, input)
	if err != nil {
		return nil, connector.NewDatabaseError(dbcapabilities.S3Select, "select object content", err).
			WithContext("key", aws.ToString(input.Key))
	}
	defer stream.Close()

	var buf bytes.Buffer
	ended := false
	for event := range stream.Events() {
		switch e := event.(type) {
		case *types.SelectObjectContentEventStreamMemberRecords:
			buf.Write(e.Value.Payload)
		case *types.SelectObjectContentEventStreamMemberEnd:
			ended = true
		}
	}
	if err := stream.Err(); err != nil {
		return nil, connector.NewDatabaseError(dbcapabilities.S3Select, "select object content", err).
			WithContext("key", aws.ToString(input.Key))
	}
	if !ended {
		return nil, fmt.Errorf("End event not received, %w", connector.ErrIncompleteRequest)
	}
	return buf.Bytes(), nil
}

func (r *Reader) parse(payload []byte) (*table.Table, error) {
	switch r.opts.Type {
	case TypeCSV:
		delim, _ := utf8.DecodeRuneInString(r.opts.FieldDelimiter)
		return table.ReadCSV(bytes.NewReader(payload), table.CSVOptions{
			FieldDelimiter:  delim,
			RecordDelimiter: r.opts.RecordDelimiter,
			InferTypes:      true,
		})
	case TypeJSON, TypeParquet:
		records, err := decodeRecords(payload)
		if err != nil {
			return nil, err
		}
		if r.opts.Type == TypeJSON {
			records = expandDocuments(records)
		}
		return table.FromRecords(records, nil), nil
	default:
		return nil, fmt.Errorf("unsupported file type %q", r.opts.Type)
	}
}

// decodeRecords parses comma delimited JSON records.
func decodeRecords(payload []byte) ([]*table.Record, error) {
	body := bytes.TrimSpace(payload)
	body = bytes.TrimSuffix(body, []byte(","))
	if len(body) == 0 {
		return nil, nil
	}
	doc := make([]byte, 0, len(body)+2)
	doc = append(doc, '[')
	doc = append(doc, body...)
	doc = append(doc, ']')
	return table.DecodeJSONRecords(doc)
}

// expandDocuments lifts the arrays of a JSON document into rows, in key
// order: {"a":[r1,r2],"b":[r3]} yields r1, r2, r3. Documents without arrays
// of objects are kept as rows.
func expandDocuments(docs []*table.Record) []*table.Record {
	var out []*table.Record
	for _, doc := range docs {
		var nested []*table.Record
		for _, k := range doc.Keys() {
			v, _ := doc.Get(k)
			arr, ok := v.([]any)
			if !ok {
				continue
			}
			for _, item := range arr {
				if rec, ok := item.(*table.Record); ok {
					nested = append(nested, rec)
				}
			}
		}
		if len(nested) == 0 {
			out = append(out, doc)
			continue
		}
		out = append(out, nested...)
	}
	return out
}
