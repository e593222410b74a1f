package transport

import (
	"context"
	"fmt"

	"github.com/kingsrook/qqq-client/model"
)

func (c *Client) LoadInstance(ctx context.Context) (*model.Instance, error) {
	var instance model.Instance
	if err := c.getJSON(ctx, &instance, nil, "metaData"); err != nil {
		return nil, fmt.Errorf("load metadata: %w", err)
	}
	return &instance, nil
}

func (c *Client) LoadTable(ctx context.Context, tableName string) (*model.Table, error) {
	var out struct {
		Table *model.Table `json:"table"`
	}
	if err := c.getJSON(ctx, &out, nil, "metaData", "table", tableName); err != nil {
		return nil, fmt.Errorf("load table %s: %w", tableName, err)
	}
	if out.Table == nil {
		return nil, fmt.Errorf("load table %s: response has no table", tableName)
	}
	return out.Table, nil
}

func (c *Client) LoadProcess(ctx context.Context, processName string) (*model.Process, error) {
	var out struct {
		Process *model.Process `json:"process"`
	}
	if err := c.getJSON(ctx, &out, nil, "metaData", "process", processName); err != nil {
		return nil, fmt.Errorf("load process %s: %w", processName, err)
	}
	if out.Process == nil {
		return nil, fmt.Errorf("load process %s: response has no process", processName)
	}
	return out.Process, nil
}

func (c *Client) LoadAuthentication(ctx context.Context) (*model.Authentication, error) {
	var auth model.Authentication
	if err := c.getJSON(ctx, &auth, nil, "metaData", "authentication"); err != nil {
		return nil, fmt.Errorf("load authentication metadata: %w", err)
	}
	return &auth, nil
}
