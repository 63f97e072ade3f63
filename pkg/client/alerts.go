package client

import (
	"context"
	"net/http"
	"net/url"

	"officehub/pkg/model"
)

type AlertClient struct {
	http *HttpClient
}

func NewAlertClient(c *HttpClient) *AlertClient {
	return &AlertClient{http: c}
}

func (c *AlertClient) List(ctx context.Context, targetAudience string) ([]*model.Alert, error) {
	path := "/api/alerts"
	if targetAudience != "" {
		path += "?target_audience=" + url.QueryEscape(targetAudience)
	}
	resp, err := c.http.GET(ctx, path)
	if err != nil {
		return nil, err
	}
	var alerts []*model.Alert
	if err := decodeInto(resp, http.StatusOK, &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

func (c *AlertClient) Get(ctx context.Context, id string) (*model.Alert, error) {
	resp, err := c.http.GET(ctx, "/api/alerts/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}
	return decodeAlert(resp, http.StatusOK)
}

func (c *AlertClient) Create(ctx context.Context, req *model.AlertCreate) (*model.Alert, error) {
	resp, err := c.http.POST(ctx, "/api/alerts", req)
	if err != nil {
		return nil, err
	}
	return decodeAlert(resp, http.StatusCreated)
}

func (c *AlertClient) Update(ctx context.Context, id string, req *model.AlertUpdate) (*model.Alert, error) {
	resp, err := c.http.PUT(ctx, "/api/alerts/"+url.PathEscape(id), req)
	if err != nil {
		return nil, err
	}
	return decodeAlert(resp, http.StatusOK)
}

func (c *AlertClient) Delete(ctx context.Context, id string) error {
	resp, err := c.http.DELETE(ctx, "/api/alerts/"+url.PathEscape(id))
	if err != nil {
		return err
	}
	return decodeInto(resp, http.StatusOK, nil)
}

func decodeAlert(resp *Response, wantStatus int) (*model.Alert, error) {
	var alert model.Alert
	if err := decodeInto(resp, wantStatus, &alert); err != nil {
		return nil, err
	}
	return &alert, nil
}
