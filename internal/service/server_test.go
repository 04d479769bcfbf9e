package service

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielpatrickdp/srl-toolkit/internal/archive"
	"github.com/danielpatrickdp/srl-toolkit/internal/distribution"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func startServer(t *testing.T) (*Client, *archive.Store) {
	t.Helper()

	store, err := archive.NewStore(filepath.Join(t.TempDir(), "archive.db"), zap.NewNop())
	require.NoError(t, err)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := NewServer(store, zap.NewNop())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(listener)
	}()

	client, err := NewClient(listener.Addr().String())
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = client.Close()
		srv.GracefulStop()
		select {
		case <-serveErr:
		case <-time.After(2 * time.Second):
		}
		_ = store.Close()
	})
	return client, store
}

func testDistribution(t *testing.T) *distribution.Distribution {
	t.Helper()
	z := 1.0
	d, err := distribution.New(
		[][]float64{{0.3, 0.7}},
		&z,
		[]string{"A", "B"},
		[][]string{{"t", "f"}, {"lo", "hi"}},
	)
	require.NoError(t, err)
	return d
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestPutGetList(t *testing.T) {
	client, store := startServer(t)
	ctx := testContext(t)

	id, err := client.Put(ctx, "remote", testDistribution(t))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	snap, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "remote", snap.Label)

	d, err := client.Get(ctx, id)
	require.NoError(t, err)
	idx, err := d.VariableIndex("B")
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	dom, err := d.DomainOf(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"lo", "hi"}, dom)

	ids, err := client.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{id}, ids)
}

func TestGetUnknownSnapshot(t *testing.T) {
	client, _ := startServer(t)

	_, err := client.Get(testContext(t), "missing")
	require.ErrorIs(t, err, archive.ErrSnapshotNotFound)
}

func TestPutRejectsInvalidPayload(t *testing.T) {
	client, _ := startServer(t)
	ctx := testContext(t)

	tests := []struct {
		name    string
		payload []byte
	}{
		{name: "empty", payload: nil},
		{name: "foreign bytes", payload: []byte("not a distribution")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := new(wrapperspb.StringValue)
			err := client.conn.Invoke(ctx, putMethod, wrapperspb.Bytes(tt.payload), out)
			assert.Equal(t, codes.InvalidArgument, status.Code(err))
		})
	}
}

func TestGetRequiresID(t *testing.T) {
	client, _ := startServer(t)

	out := new(wrapperspb.BytesValue)
	err := client.conn.Invoke(testContext(t), getMethod, wrapperspb.String(""), out)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestReady(t *testing.T) {
	client, _ := startServer(t)
	require.NoError(t, client.Ready(testContext(t)))
}
