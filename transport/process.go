package transport

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/kingsrook/qqq-client/model"
	"github.com/kingsrook/qqq-client/process"
)

var _ process.Transport = new(Client)

// PostInit starts processName with params sent as query parameters.
func (c *Client) PostInit(ctx context.Context, processName string, params map[string]any) (map[string]any, error) {
	query, err := encodeForm(params)
	if err != nil {
		return nil, err
	}
	target := c.url(query, "processes", processName, "init")
	resp, err := c.do(ctx, http.MethodPost, target, "", nil)
	if err != nil {
		return nil, err
	}
	return c.payload(http.MethodPost, target, resp)
}

// PostStep submits body as a form for step of the process instance.
func (c *Client) PostStep(ctx context.Context, processName string, processUUID string, step string, body map[string]any) (map[string]any, error) {
	form, err := encodeForm(body)
	if err != nil {
		return nil, err
	}
	target := c.url(nil, "processes", processName, processUUID, "step", step)
	resp, err := c.do(ctx, http.MethodPost, target, contentTypeForm, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return nil, err
	}
	return c.payload(http.MethodPost, target, resp)
}

func (c *Client) GetStatus(ctx context.Context, processName string, processUUID string, jobUUID string) (map[string]any, error) {
	target := c.url(nil, "processes", processName, processUUID, "status", jobUUID)
	resp, err := c.do(ctx, http.MethodGet, target, "", nil)
	if err != nil {
		return nil, err
	}
	return c.payload(http.MethodGet, target, resp)
}

// GetProcessRecords pages through the records a process instance is working on.
func (c *Client) GetProcessRecords(ctx context.Context, processName string, processUUID string, skip int, limit int) ([]*model.Record, error) {
	query := url.Values{}
	query.Set("skip", strconv.Itoa(skip))
	query.Set("limit", strconv.Itoa(limit))
	var out struct {
		Records []*model.Record `json:"records"`
	}
	if err := c.getJSON(ctx, &out, query, "processes", processName, processUUID, "records"); err != nil {
		return nil, fmt.Errorf("records of process %s: %w", processName, err)
	}
	return out.Records, nil
}
