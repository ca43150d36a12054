package mediaclient

import (
	"context"
	"net/url"

	"social-content/cmd/api/httpclient"
	"social-content/logger"
	"social-content/models"
)

// Client 는 media-service 의 내부 조회 API 를 호출한다.
// 없는 id 는 응답에서 빠질 뿐 에러가 아니다.
//
// baseURL 예: http://media_service:8081
type Client struct {
	http *httpclient.Client
}

func New(cfg httpclient.Config, lg logger.Logger) *Client {
	return &Client{http: httpclient.New(cfg, lg)}
}

type listResponse[T any] struct {
	Data []T `json:"data"`
}

func find[T any](ctx context.Context, c *Client, relPath string, ids []string) ([]T, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var res listResponse[T]
	if err := c.http.GetJSON(ctx, relPath, url.Values{"ids": ids}, &res); err != nil {
		return nil, err
	}
	return res.Data, nil
}

func (c *Client) FindImages(ctx context.Context, ids []string) ([]models.Image, error) {
	return find[models.Image](ctx, c, "/internal/v1/images", ids)
}

func (c *Client) FindFiles(ctx context.Context, ids []string) ([]models.File, error) {
	return find[models.File](ctx, c, "/internal/v1/files", ids)
}

func (c *Client) FindVideos(ctx context.Context, ids []string) ([]models.Video, error) {
	return find[models.Video](ctx, c, "/internal/v1/videos", ids)
}
