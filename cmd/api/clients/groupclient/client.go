package groupclient

import (
	"context"
	"net/url"

	"social-content/cmd/api/httpclient"
	"social-content/logger"
	"social-content/models"
)

// Client 는 group-service 에서 그룹과 사용자(소속 그룹 포함)를 조회한다.
//
// baseURL 예: http://group_service:8082
type Client struct {
	http *httpclient.Client
}

func New(cfg httpclient.Config, lg logger.Logger) *Client {
	return &Client{http: httpclient.New(cfg, lg)}
}

func (c *Client) FindGroupsByIDs(ctx context.Context, ids []string) ([]models.Group, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var res struct {
		Data []models.Group `json:"data"`
	}
	if err := c.http.GetJSON(ctx, "/internal/v1/groups", url.Values{"ids": ids}, &res); err != nil {
		return nil, err
	}
	return res.Data, nil
}

func (c *Client) FindUsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var res struct {
		Data []models.User `json:"data"`
	}
	if err := c.http.GetJSON(ctx, "/internal/v1/users", url.Values{"ids": ids}, &res); err != nil {
		return nil, err
	}
	return res.Data, nil
}
