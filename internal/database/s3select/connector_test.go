package s3select

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redbco/redb-connect/pkg/connector"
	"github.com/redbco/redb-connect/pkg/logger"
)

type fakeStream struct {
	events chan types.SelectObjectContentEventStream
	err    error
}

func newStream(payloads []string, end bool) *fakeStream {
	ch := make(chan types.SelectObjectContentEventStream, len(payloads)+1)
	for _, p := range payloads {
		ch <- &types.SelectObjectContentEventStreamMemberRecords{Value: types.RecordsEvent{Payload: []byte(p)}}
	}
	if end {
		ch <- &types.SelectObjectContentEventStreamMemberEnd{}
	}
	close(ch)
	return &fakeStream{events: ch}
}

func (s *fakeStream) Events() <-chan types.SelectObjectContentEventStream { return s.events }
func (s *fakeStream) Close() error                                        { return nil }
func (s *fakeStream) Err() error                                          { return s.err }

type fakeClient struct {
	headErr error
	keys    []string
	// payloads by object key
	objects map[string][]string
	noEnd   bool

	expressions []string
	selected    []string
}

func (f *fakeClient) HeadObject(_ context.Context, _ *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeClient) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	for _, k := range f.keys {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
		}
	}
	return out, nil
}

func (f *fakeClient) Select(_ context.Context, in *s3.SelectObjectContentInput) (EventStream, error) {
	key := aws.ToString(in.Key)
	f.expressions = append(f.expressions, aws.ToString(in.Expression))
	f.selected = append(f.selected, key)

	payloads := f.objects[key]
	if m := trailingLimit.FindStringSubmatch(aws.ToString(in.Expression)); m != nil && in.InputSerialization.CSV != nil {
		n, _ := strconv.Atoi(m[1])
		payloads = firstLines(payloads, n)
	}
	return newStream(payloads, !f.noEnd), nil
}

// firstLines keeps the first n newline-terminated records across payloads,
// as S3 does when it applies LIMIT to CSV input.
func firstLines(payloads []string, n int) []string {
	lines := strings.SplitAfter(strings.Join(payloads, ""), "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	return []string{strings.Join(lines, "")}
}

func statusError(code int) error {
	return &smithyhttp.ResponseError{
		Response: &smithyhttp.Response{Response: &http.Response{StatusCode: code}},
		Err:      errors.New(http.StatusText(code)),
	}
}

func newTestConnector(t *testing.T, cfg connector.Config, client *fakeClient) *Connector {
	t.Helper()
	t.Setenv("AWS_CONFIG_FILE", "/nonexistent")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", "/nonexistent")
	t.Setenv("AWS_PROFILE", "")

	cfg["access_key"] = "AKID"
	cfg["secret_key"] = "secret"
	c := New(cfg, logger.Nop()).(*Connector)
	c.dial = func(aws.Config, connector.Config) Client { return client }
	return c
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     connector.Config
		message string
	}{
		{"nothing", connector.Config{}, "Invalid connection details. Bucket is required."},
		{"no file", connector.Config{"bucket": "b"}, "Invalid connection details. File is required."},
		{"no type", connector.Config{"bucket": "b", "file": "f.csv"}, "Invalid connection details. Type is required."},
		{"bad type", connector.Config{"bucket": "b", "file": "f.xml", "type": "xml"}, "Invalid file type, valid values are JSON, CSV or Parquet."},
		{"bad compression", connector.Config{"bucket": "b", "file": "f.csv", "type": "CSV", "compression": "zip"}, "Invalid compression type, valid values are BZIP2, GZIP or NONE."},
		{"bad limit", connector.Config{"bucket": "b", "file": "f.csv", "type": "csv", "limit": -2}, "Invalid limit, a positive integer is expected."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := validate(tt.cfg).Result()
			assert.False(t, res.Valid)
			assert.Equal(t, tt.message, res.Message)
		})
	}

	res := validate(connector.Config{"bucket": "b", "file": "f.csv", "type": "csv"}).Result()
	require.True(t, res.Valid)
	assert.Contains(t, res.Message, "Will not use any compression")
	assert.Contains(t, res.Message, "Record delimiter is not provided")
	assert.Contains(t, res.Message, "Field delimiter is not provided")
}

func TestExpression(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		text string
		want string
	}{
		{"default", Options{}, "", "SELECT * FROM S3Object"},
		{"default with limit", Options{Limit: 4, Type: TypeJSON}, "  ", "SELECT * FROM S3Object LIMIT 4"},
		{"no limit", Options{}, "SELECT s.id FROM S3Object s", "SELECT s.id FROM S3Object s"},
		{"csv header counts", Options{Limit: 4, Type: TypeCSV}, "", "SELECT * FROM S3Object LIMIT 5"},
		{"own limit kept", Options{Limit: 4, Type: TypeCSV}, "SELECT s.id FROM S3Object s LIMIT 10", "SELECT s.id FROM S3Object s LIMIT 10"},
		{"own limit any case", Options{Limit: 4}, "select * from s3object limit 2;", "select * from s3object limit 2"},
		{"trailing semicolon", Options{Limit: 4, Type: TypeParquet}, "SELECT * FROM S3Object; ", "SELECT * FROM S3Object LIMIT 4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.opts.Expression(tt.text))
		})
	}
}

func TestResolveHeadObjectErrors(t *testing.T) {
	opts := Options{Bucket: "data", File: "in/orders.csv", Type: TypeCSV, Region: "eu-west-1"}

	_, err := resolve(context.Background(), &fakeClient{headErr: statusError(404)}, opts)
	require.Error(t, err)
	assert.True(t, connector.IsNotFound(err))
	assert.Contains(t, err.Error(), "File 'in/orders.csv' not found in AWS S3 'data' under region 'eu-west-1'")

	_, err = resolve(context.Background(), &fakeClient{headErr: statusError(403)}, opts)
	assert.ErrorIs(t, err, connector.ErrPermissionDenied)

	_, err = resolve(context.Background(), &fakeClient{headErr: statusError(500)}, opts)
	assert.True(t, connector.IsConnection(err))

	files, err := resolve(context.Background(), &fakeClient{}, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"in/orders.csv"}, files)
}

func TestResolvePrefixFiltersByType(t *testing.T) {
	client := &fakeClient{keys: []string{"in/a.csv", "in/b.CSV", "in/c.json", "in/", "other/d.csv"}}

	files, err := resolve(context.Background(), client, Options{Bucket: "data", File: "in/", Type: TypeCSV})
	require.NoError(t, err)
	assert.Equal(t, []string{"in/a.csv", "in/b.CSV"}, files)

	_, err = resolve(context.Background(), client, Options{Bucket: "data", File: "in/", Type: TypeParquet})
	assert.True(t, connector.IsNotFound(err))
}

func TestQueryCSVLimitAcrossFiles(t *testing.T) {
	client := &fakeClient{
		keys: []string{"in/a.csv", "in/b.csv", "in/c.csv"},
		objects: map[string][]string{
			"in/a.csv": {"id,name\n1,a\n", "2,b\n3,c\n"},
			"in/b.csv": {"id,name\n4,d\n5,e\n6,f\n"},
			"in/c.csv": {"id,name\n7,g\n"},
		},
	}
	c := newTestConnector(t, connector.Config{"bucket": "data", "file": "in/", "type": "csv", "limit": 4}, client)

	tbl, err := c.RunQueryToTable(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, tbl.Columns)
	require.Equal(t, 4, tbl.Len())
	assert.Equal(t, []any{int64(4), "d"}, tbl.Rows[3])

	assert.Equal(t, []string{"in/a.csv", "in/b.csv"}, client.selected, "the third file is never queried")
	assert.Equal(t, "SELECT * FROM S3Object LIMIT 5", client.expressions[0])
}

func TestQueryCSVLimitSingleFile(t *testing.T) {
	client := &fakeClient{objects: map[string][]string{
		"x.csv": {"id\n1\n2\n3\n", "4\n5\n6\n7\n"},
	}}
	c := newTestConnector(t, connector.Config{"bucket": "data", "file": "x.csv", "type": "csv", "limit": 5}, client)

	rows, err := c.RunStatement(context.Background(), "SELECT * FROM S3Object;")
	require.NoError(t, err)
	assert.Equal(t, []connector.Row{{int64(1)}, {int64(2)}, {int64(3)}, {int64(4)}, {int64(5)}}, rows)
	assert.Equal(t, []string{"SELECT * FROM S3Object LIMIT 6"}, client.expressions)
}

func TestQueryCSVCustomDelimiters(t *testing.T) {
	client := &fakeClient{objects: map[string][]string{"x.csv": {"id|name;1|a;2|b;"}}}
	c := newTestConnector(t, connector.Config{
		"bucket": "data", "file": "x.csv", "type": "csv",
		"field_delimiter": "|", "record_delimiter": ";",
	}, client)

	rows, err := c.RunStatement(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []connector.Row{{int64(1), "a"}, {int64(2), "b"}}, rows)
}

func TestQueryJSONDocument(t *testing.T) {
	client := &fakeClient{objects: map[string][]string{
		"x.json": {`{"orders":[{"id":1,"total":9.5},{"id":2,"total":3}],"returns":[{"id":3}]},`},
	}}
	c := newTestConnector(t, connector.Config{"bucket": "data", "file": "x.json", "type": "json"}, client)

	tbl, err := c.RunQueryToTable(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "total"}, tbl.Columns)
	assert.Equal(t, [][]any{{int64(1), 9.5}, {int64(2), int64(3)}, {int64(3), nil}}, tbl.Rows)
}

func TestQueryParquetRecords(t *testing.T) {
	client := &fakeClient{objects: map[string][]string{
		"x.parquet": {`{"b":1,"a":"x"},`, `{"b":2,"a":"y"},`},
	}}
	c := newTestConnector(t, connector.Config{"bucket": "data", "file": "x.parquet", "type": "parquet"}, client)

	tbl, err := c.RunQueryToTable(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, tbl.Columns)
	assert.Equal(t, 2, tbl.Len())
}

func TestQueryWithoutEndEvent(t *testing.T) {
	client := &fakeClient{objects: map[string][]string{"x.csv": {"id\n1\n"}}, noEnd: true}
	c := newTestConnector(t, connector.Config{"bucket": "data", "file": "x.csv", "type": "csv"}, client)

	_, err := c.RunQueryToTable(context.Background(), "", 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, connector.ErrIncompleteRequest)
	assert.Equal(t, "End event not received, request incomplete", err.Error())
}

func TestOpenSessionInvalidConfig(t *testing.T) {
	c := newTestConnector(t, connector.Config{"bucket": "data"}, &fakeClient{})
	_, err := c.OpenSession(context.Background(), connector.SessionOptions{})
	require.Error(t, err)
	assert.True(t, connector.IsConfiguration(err))
	assert.Equal(t, connector.StateFailed, c.State())
}

func TestSessionOpenedOnce(t *testing.T) {
	c := newTestConnector(t, connector.Config{"bucket": "data", "file": "x.csv", "type": "csv"}, &fakeClient{})
	ctx := context.Background()

	first, err := c.OpenSession(ctx, connector.SessionOptions{})
	require.NoError(t, err)
	second, err := c.OpenSession(ctx, connector.SessionOptions{})
	require.NoError(t, err)
	assert.Same(t, first.Value, second.Value)

	_, err = c.BuildAddress()
	assert.True(t, connector.IsUnsupported(err))

	c.Destroy()
	assert.Equal(t, connector.StateClosed, c.State())
}
