package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/kingsrook/qqq-client/model"
)

// Query returns the records of tableName matching filter. A nil filter matches all.
func (c *Client) Query(ctx context.Context, tableName string, filter *model.QueryFilter) ([]*model.Record, error) {
	values, err := filterForm(filter)
	if err != nil {
		return nil, err
	}
	var out struct {
		Records []*model.Record `json:"records"`
	}
	if err := c.sendForm(ctx, http.MethodPost, &out, values, "data", tableName, "query"); err != nil {
		return nil, fmt.Errorf("query %s: %w", tableName, err)
	}
	for _, r := range out.Records {
		if r.TableName == "" {
			r.TableName = tableName
		}
	}
	return out.Records, nil
}

func (c *Client) Count(ctx context.Context, tableName string, filter *model.QueryFilter) (int, error) {
	values, err := filterForm(filter)
	if err != nil {
		return 0, err
	}
	var out struct {
		Count int `json:"count"`
	}
	if err := c.sendForm(ctx, http.MethodPost, &out, values, "data", tableName, "count"); err != nil {
		return 0, fmt.Errorf("count %s: %w", tableName, err)
	}
	return out.Count, nil
}

func (c *Client) Get(ctx context.Context, tableName string, primaryKey string) (*model.Record, error) {
	var record model.Record
	if err := c.getJSON(ctx, &record, nil, "data", tableName, primaryKey); err != nil {
		return nil, fmt.Errorf("get %s %s: %w", tableName, primaryKey, err)
	}
	if record.TableName == "" {
		record.TableName = tableName
	}
	return &record, nil
}

func (c *Client) Create(ctx context.Context, tableName string, values map[string]any) (*model.Record, error) {
	var record model.Record
	if err := c.sendForm(ctx, http.MethodPost, &record, values, "data", tableName); err != nil {
		return nil, fmt.Errorf("create %s: %w", tableName, err)
	}
	if record.TableName == "" {
		record.TableName = tableName
	}
	return &record, nil
}

func (c *Client) Update(ctx context.Context, tableName string, primaryKey string, values map[string]any) (*model.Record, error) {
	var record model.Record
	if err := c.sendForm(ctx, http.MethodPatch, &record, values, "data", tableName, primaryKey); err != nil {
		return nil, fmt.Errorf("update %s %s: %w", tableName, primaryKey, err)
	}
	if record.TableName == "" {
		record.TableName = tableName
	}
	return &record, nil
}

func (c *Client) Delete(ctx context.Context, tableName string, primaryKey string) (int, error) {
	var out struct {
		DeletedRecordCount int `json:"deletedRecordCount"`
	}
	if err := c.sendForm(ctx, http.MethodDelete, &out, nil, "data", tableName, primaryKey); err != nil {
		return 0, fmt.Errorf("delete %s %s: %w", tableName, primaryKey, err)
	}
	return out.DeletedRecordCount, nil
}

func filterForm(filter *model.QueryFilter) (map[string]any, error) {
	if filter == nil {
		return nil, nil
	}
	b, err := json.Marshal(filter)
	if err != nil {
		return nil, fmt.Errorf("encode filter: %w", err)
	}
	return map[string]any{"filter": string(b)}, nil
}
