package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/minitask/client/internal/domain/entities"
)

// States lists the top level of the hierarchy.
func (c *Client) States(ctx context.Context) ([]entities.LocationNode, error) {
	return c.locations(ctx, "/states")
}

// Districts lists the districts of a state.
func (c *Client) Districts(ctx context.Context, stateID entities.ID) ([]entities.LocationNode, error) {
	return c.locations(ctx, "/districts/"+url.PathEscape(stateID.String()))
}

// Cities lists the cities of a district.
func (c *Client) Cities(ctx context.Context, districtID entities.ID) ([]entities.LocationNode, error) {
	return c.locations(ctx, "/cities/"+url.PathEscape(districtID.String()))
}

func (c *Client) locations(ctx context.Context, path string) ([]entities.LocationNode, error) {
	body, err := c.do(ctx, request{method: http.MethodGet, path: path, auth: true, contentType: "application/json"})
	if err != nil {
		return nil, err
	}
	return decodeList[entities.LocationNode](c, path, body)
}
