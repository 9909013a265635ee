// Package netatmo talks to the Netatmo weather API: station discovery,
// measurement pages and OAuth2 access tokens.
package netatmo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"

	"github.com/huangsam/stationsync/internal/contract"
	"github.com/huangsam/stationsync/schema"
)

const (
	measurePath  = "/api/getmeasure"
	stationsPath = "/api/getstationsdata"

	// maxResponseBytes bounds a single response; a full page is a few MB.
	maxResponseBytes = 64 << 20
)

// Client is a minimal Netatmo API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var (
	_ contract.MeasurementSource = &Client{} // Compile-time check
	_ contract.StationSource     = &Client{} // Compile-time check
)

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: contract.DefaultRequestTimeout}
	}
	return &Client{baseURL: baseURL, httpClient: httpClient}
}

// envelope is the shape shared by every API response.
type envelope struct {
	Status string          `json:"status"`
	Body   json.RawMessage `json:"body"`
	Error  *apiError       `json:"error"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type stationsBody struct {
	Devices []schema.Station `json:"devices"`
}

// GetMeasure fetches one page of values for a series starting at req.DateBegin.
func (c *Client) GetMeasure(ctx context.Context, req contract.MeasureRequest) (schema.Page, error) {
	if _, err := schema.ParseMeasurementType(string(req.Type)); err != nil {
		return schema.Page{}, err
	}
	if req.DeviceID == "" {
		return schema.Page{}, fmt.Errorf("device id is required")
	}

	params := url.Values{}
	params.Set("device_id", req.DeviceID)
	params.Set("module_id", req.ModuleID)
	params.Set("scale", "max")
	params.Set("optimize", "false")
	params.Set("type", string(req.Type))
	params.Set("date_begin", strconv.FormatInt(req.DateBegin, 10))

	body, raw, err := c.get(ctx, measurePath, req.AccessToken, params)
	if err != nil {
		return schema.Page{}, err
	}
	return parseMeasureBody(body, raw)
}

// GetStationsData fetches the station/module tree visible to the token.
func (c *Client) GetStationsData(ctx context.Context, accessToken string) ([]schema.Station, error) {
	body, raw, err := c.get(ctx, stationsPath, accessToken, nil)
	if err != nil {
		return nil, err
	}

	var sb stationsBody
	if err := json.Unmarshal(body, &sb); err != nil {
		return nil, &ProtocolError{Endpoint: stationsPath, StatusCode: http.StatusOK, Raw: raw, Err: fmt.Errorf("%w: %v", ErrMalformedBody, err)}
	}
	return sb.Devices, nil
}

// get performs an authenticated GET and returns the body member of the envelope
// along with the raw payload.
func (c *Client) get(ctx context.Context, path, accessToken string, params url.Values) (json.RawMessage, []byte, error) {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("request %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, raw, &ProtocolError{Endpoint: path, StatusCode: resp.StatusCode, Raw: raw, Err: fmt.Errorf("%w: %v", ErrMalformedBody, err)}
	}

	if len(env.Body) == 0 || bytes.Equal(env.Body, []byte("null")) {
		perr := &ProtocolError{Endpoint: path, StatusCode: resp.StatusCode, Raw: raw, Err: ErrMissingBody}
		if env.Error != nil {
			perr.Code = env.Error.Code
			perr.Message = env.Error.Message
		}
		return nil, raw, perr
	}
	return env.Body, raw, nil
}

// parseMeasureBody turns {"<unix>": [v, ...], ...} into a page ordered by time.
// The first element of each list is the value; null values are counted but dropped.
func parseMeasureBody(body json.RawMessage, raw []byte) (schema.Page, error) {
	var values map[string][]*float64
	if err := json.Unmarshal(body, &values); err != nil {
		// An empty result comes back as an empty list
		var empty []any
		if json.Unmarshal(body, &empty) == nil && len(empty) == 0 {
			return schema.Page{}, nil
		}
		return schema.Page{}, &ProtocolError{Endpoint: measurePath, StatusCode: http.StatusOK, Raw: raw, Err: fmt.Errorf("%w: %v", ErrMalformedBody, err)}
	}

	page := schema.Page{RawCount: len(values), Entries: make([]schema.Sample, 0, len(values))}
	for key, vals := range values {
		ts, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return schema.Page{}, &ProtocolError{Endpoint: measurePath, StatusCode: http.StatusOK, Raw: raw, Err: fmt.Errorf("%w: timestamp %q", ErrMalformedBody, key)}
		}
		if ts > page.LastTime {
			page.LastTime = ts
		}
		if len(vals) == 0 || vals[0] == nil {
			continue
		}
		page.Entries = append(page.Entries, schema.Sample{Time: ts, Value: *vals[0]})
	}

	sort.Slice(page.Entries, func(i, j int) bool {
		return page.Entries[i].Time < page.Entries[j].Time
	})
	return page, nil
}
