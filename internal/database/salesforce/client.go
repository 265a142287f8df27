package salesforce

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	gojson "github.com/goccy/go-json"

	"github.com/redbco/redb-connect/pkg/connector"
	"github.com/redbco/redb-connect/pkg/dbcapabilities"
	"github.com/redbco/redb-connect/pkg/table"
)

// API is the Salesforce surface the connector queries through.
type API interface {
	InstanceURL() string
	SessionID() string
	Describe(ctx context.Context, object string) ([]string, error)
	QueryAll(ctx context.Context, soql string) ([]*table.Record, error)
}

// Client talks to the Salesforce REST API with a session obtained from a
// SOAP login.
type Client struct {
	http        *http.Client
	version     string
	instanceURL string
	sessionID   string
}

// NewClient resumes an existing session.
func NewClient(httpClient *http.Client, instanceURL, sessionID, version string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		http:        httpClient,
		version:     version,
		instanceURL: strings.TrimRight(instanceURL, "/"),
		sessionID:   sessionID,
	}
}

func (c *Client) InstanceURL() string { return c.instanceURL }
func (c *Client) SessionID() string   { return c.sessionID }

type loginEnvelope struct {
	Body struct {
		LoginResponse struct {
			Result struct {
				ServerURL string `xml:"serverUrl"`
				SessionID string `xml:"sessionId"`
			} `xml:"result"`
		} `xml:"loginResponse"`
		Fault struct {
			Code   string `xml:"faultcode"`
			String string `xml:"faultstring"`
		} `xml:"Fault"`
	} `xml:"Body"`
}

const loginTemplate = `<?xml version="1.0" encoding="utf-8" ?>
<env:Envelope xmlns:xsd="http://www.w3.org/2001/XMLSchema"
    xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"
    xmlns:env="http://schemas.xmlsoap.org/soap/envelope/"
    xmlns:urn="urn:partner.soap.sforce.com">
  <env:Header>
    <urn:CallOptions>
      <urn:client>redb-connect</urn:client>
    </urn:CallOptions>
  </env:Header>
  <env:Body>
    <n1:login xmlns:n1="urn:partner.soap.sforce.com">
      <n1:username>%s</n1:username>
      <n1:password>%s</n1:password>
    </n1:login>
  </env:Body>
</env:Envelope>`

func escapeXML(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

// Login opens a session with the partner SOAP login call. The password sent
// is the account password followed by the security token.
func Login(ctx context.Context, httpClient *http.Client, loginURL, version, username, password, token string) (*Client, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	endpoint := strings.TrimRight(loginURL, "/") + "/services/Soap/u/" + version
	body := fmt.Sprintf(loginTemplate, escapeXML(username), escapeXML(password+token))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "text/xml; charset=UTF-8")
	req.Header.Set("SOAPAction", "login")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, classifyTransport(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransport(err)
	}

	var env loginEnvelope
	if err := xml.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode login response (status %d): %w", resp.StatusCode, err)
	}
	if fault := env.Body.Fault; fault.String != "" || fault.Code != "" {
		return nil, fmt.Errorf("login failed: %s: %s", fault.Code, fault.String)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("login failed with status %d", resp.StatusCode)
	}

	result := env.Body.LoginResponse.Result
	if result.SessionID == "" || result.ServerURL == "" {
		return nil, errors.New("login response did not contain a session")
	}
	server, err := url.Parse(result.ServerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server url %q: %w", result.ServerURL, err)
	}

	return NewClient(httpClient, server.Scheme+"://"+server.Host, result.SessionID, version), nil
}

// classifyTransport marks network failures as transient so the caller can
// reconnect and retry.
func classifyTransport(err error) error {
	var netErr net.Error
	var urlErr *url.Error
	if errors.As(err, &netErr) || errors.As(err, &urlErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return connector.NewTransientError(dbcapabilities.Salesforce, err)
	}
	return err
}

type apiError struct {
	Message   string `json:"message"`
	ErrorCode string `json:"errorCode"`
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.instanceURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.sessionID)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return classifyTransport(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return classifyTransport(err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		dbErr := connector.NewDatabaseError(dbcapabilities.Salesforce, "request "+path,
			fmt.Errorf("status %d", resp.StatusCode)).WithContext("status", resp.StatusCode)
		var errs []apiError
		if gojson.Unmarshal(data, &errs) == nil && len(errs) > 0 {
			dbErr = connector.NewDatabaseError(dbcapabilities.Salesforce, "request "+path,
				fmt.Errorf("%s: %s", errs[0].ErrorCode, errs[0].Message)).
				WithContext("status", resp.StatusCode).
				WithContext("code", errs[0].ErrorCode)
		}
		return dbErr
	}

	if err := gojson.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

type describeResult struct {
	Fields []struct {
		Name string `json:"name"`
	} `json:"fields"`
}

// Describe returns the field names of an sObject in API order.
func (c *Client) Describe(ctx context.Context, object string) ([]string, error) {
	var desc describeResult
	path := fmt.Sprintf("/services/data/v%s/sobjects/%s/describe", c.version, url.PathEscape(object))
	if err := c.get(ctx, path, &desc); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(desc.Fields))
	for _, f := range desc.Fields {
		names = append(names, f.Name)
	}
	return names, nil
}

type queryPage struct {
	Done           bool              `json:"done"`
	NextRecordsURL string            `json:"nextRecordsUrl"`
	Records        gojson.RawMessage `json:"records"`
}

// QueryAll runs soql, including deleted and archived rows, and follows
// nextRecordsUrl until the result is done. Field order is kept.
func (c *Client) QueryAll(ctx context.Context, soql string) ([]*table.Record, error) {
	path := fmt.Sprintf("/services/data/v%s/queryAll?q=%s", c.version, url.QueryEscape(soql))

	var records []*table.Record
	for path != "" {
		var page queryPage
		if err := c.get(ctx, path, &page); err != nil {
			return nil, err
		}
		if len(page.Records) > 0 {
			recs, err := table.DecodeJSONRecords(bytes.TrimSpace(page.Records))
			if err != nil {
				return nil, err
			}
			records = append(records, recs...)
		}
		if page.Done {
			break
		}
		path = page.NextRecordsURL
	}
	return records, nil
}
