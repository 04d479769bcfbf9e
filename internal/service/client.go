package service

import (
	"context"
	"fmt"

	"github.com/danielpatrickdp/srl-toolkit/internal/archive"
	"github.com/danielpatrickdp/srl-toolkit/internal/distribution"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// #region client-struct
// Client wraps a connection to a DistributionService.
type Client struct {
	conn *grpc.ClientConn
}

// #endregion client-struct

// #region constructor
// NewClient creates a client for addr. The connection is established lazily.
func NewClient(addr string) (*Client, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{conn: conn}, nil
}

// #endregion constructor

// #region close
// Close shuts down the gRPC connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// #endregion close

// #region calls
// Put archives d remotely and returns the new snapshot id.
func (c *Client) Put(ctx context.Context, label string, d *distribution.Distribution) (string, error) {
	if label != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, labelKey, label)
	}
	out := new(wrapperspb.StringValue)
	if err := c.conn.Invoke(ctx, putMethod, wrapperspb.Bytes(d.Encode()), out); err != nil {
		return "", fmt.Errorf("put distribution: %w", err)
	}
	return out.GetValue(), nil
}

// Get fetches a snapshot's distribution. Unknown ids yield
// archive.ErrSnapshotNotFound.
func (c *Client) Get(ctx context.Context, id string) (*distribution.Distribution, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.conn.Invoke(ctx, getMethod, wrapperspb.String(id), out); err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("get %s: %w", id, archive.ErrSnapshotNotFound)
		}
		return nil, fmt.Errorf("get %s: %w", id, err)
	}
	d, err := distribution.Decode(out.GetValue())
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", id, err)
	}
	return d, nil
}

// List returns the ids of the most recent snapshots.
func (c *Client) List(ctx context.Context) ([]string, error) {
	out := new(structpb.ListValue)
	if err := c.conn.Invoke(ctx, listMethod, &emptypb.Empty{}, out); err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	ids := make([]string, 0, len(out.GetValues()))
	for _, v := range out.GetValues() {
		ids = append(ids, v.GetStringValue())
	}
	return ids, nil
}

// Ready reports whether the remote DistributionService is serving.
func (c *Client) Ready(ctx context.Context) error {
	resp, err := healthpb.NewHealthClient(c.conn).Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("service status %s", resp.GetStatus())
	}
	return nil
}

// #endregion calls
