package client

import (
	"context"
	"net/http"
	"strconv"

	"positions-console/internal/model"
)

func (c *Client) ListPositions(ctx context.Context) ([]model.Position, error) {
	var out []model.Position
	err := c.do(ctx, call{
		op:       "list_positions",
		base:     c.positionsBase,
		method:   http.MethodGet,
		path:     "/positions",
		bearer:   true,
		out:      &out,
		fallback: withStatus("Error fetching positions"),
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Position{}
	}

	return out, nil
}

// CreatePosition sends only the non-empty fields and never an id.
func (c *Client) CreatePosition(ctx context.Context, code string, name string) (model.Position, error) {
	var out model.Position
	err := c.do(ctx, call{
		op:          "create_position",
		base:        c.positionsBase,
		method:      http.MethodPost,
		path:        "/positions",
		bearer:      true,
		body:        model.PositionInput{PositionCode: code, PositionName: name},
		out:         &out,
		optionalOut: true,
		bodyMessage: true,
		fallback:    withStatus("Request failed"),
	})
	return out, err
}

func (c *Client) UpdatePosition(ctx context.Context, id int64, code string, name string) (model.Position, error) {
	var out model.Position
	err := c.do(ctx, call{
		op:          "update_position",
		base:        c.positionsBase,
		method:      http.MethodPut,
		path:        positionPath(id),
		bearer:      true,
		body:        model.PositionInput{PositionCode: code, PositionName: name},
		out:         &out,
		optionalOut: true,
		bodyMessage: true,
		fallback:    withStatus("Request failed"),
	})
	return out, err
}

func (c *Client) DeletePosition(ctx context.Context, id int64) error {
	return c.do(ctx, call{
		op:       "delete_position",
		base:     c.positionsBase,
		method:   http.MethodDelete,
		path:     positionPath(id),
		bearer:   true,
		fallback: withStatus("Delete failed"),
	})
}

func positionPath(id int64) string {
	return "/positions/" + strconv.FormatInt(id, 10)
}
