package grpcserver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"github.com/fubl84/peakly-sub001/internal/metrics"
)

type fakeAddr struct{}

func (fakeAddr) Network() string { return "tcp" }
func (fakeAddr) String() string  { return "127.0.0.1:12345" }

func TestLoggingUnary_Passthrough(t *testing.T) {
	t.Parallel()

	log := zaptest.NewLogger(t)
	ic := LoggingUnary(log)

	ctx := context.Background()

	ctx = peer.NewContext(ctx, &peer.Peer{Addr: fakeAddr{}})

	h := func(ctx context.Context, req any) (any, error) { return "ok", nil }
	info := &grpc.UnaryServerInfo{FullMethod: "/peakly.core.v1.Core/ConvertToGrams"}

	resp, err := ic(ctx, "req", info, h)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if s, _ := resp.(string); s != "ok" {
		t.Fatalf("resp mismatch: %v", resp)
	}

	wantErr := errors.New("boom")
	hErr := func(ctx context.Context, req any) (any, error) { return nil, wantErr }
	_, err = ic(ctx, "req", info, hErr)
	if !errors.Is(err, wantErr) {
		t.Fatalf("want original error, got: %v", err)
	}
}

func TestRecoverUnary_CatchesPanic(t *testing.T) {
	t.Parallel()

	log := zaptest.NewLogger(t)
	ic := RecoverUnary(log)

	ctx := context.Background()
	info := &grpc.UnaryServerInfo{FullMethod: "/peakly.core.v1.Core/MyContent"}

	panicH := func(ctx context.Context, req any) (any, error) {
		panic("oh no")
	}

	_, err := ic(ctx, "req", info, panicH)
	if err == nil {
		t.Fatalf("expected error from panic")
	}
	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.Internal {
		t.Fatalf("want codes.Internal, got: %v", err)
	}
}

func TestRecoverUnary_NoPanicPassThrough(t *testing.T) {
	t.Parallel()

	log := zaptest.NewLogger(t)
	ic := RecoverUnary(log)

	ctx := context.Background()
	info := &grpc.UnaryServerInfo{FullMethod: "/peakly.core.v1.Core/ListShopping"}

	h := func(ctx context.Context, req any) (any, error) { return 42, nil }

	resp, err := ic(ctx, "req", info, h)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if resp.(int) != 42 {
		t.Fatalf("resp mismatch: %v", resp)
	}
}

func TestLoggingUnary_DurationFieldDoesNotBlock(t *testing.T) {
	t.Parallel()

	log := zaptest.NewLogger(t)
	ic := LoggingUnary(log)

	ctx := context.Background()
	info := &grpc.UnaryServerInfo{FullMethod: "/peakly.core.v1.Core/SuggestSlot"}
	h := func(ctx context.Context, req any) (any, error) {
		time.Sleep(5 * time.Millisecond)
		return "done", nil
	}

	start := time.Now()
	resp, err := ic(ctx, "req", info, h)
	if err != nil || resp.(string) != "done" {
		t.Fatalf("unexpected result: %v, %v", resp, err)
	}
	if time.Since(start) < 5*time.Millisecond {
		t.Fatalf("duration should reflect handler time")
	}
}

func TestLoggingUnary_LevelsAndUser(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.InfoLevel)
	ic := LoggingUnary(zap.New(core))
	info := &grpc.UnaryServerInfo{FullMethod: "/peakly.core.v1.Core/MyContent"}
	user := uuid.Must(uuid.NewV4())

	notFound := func(context.Context, any) (any, error) { return nil, status.Error(codes.NotFound, "nope") }
	_, _ = ic(WithUserID(context.Background(), user), nil, info, notFound)

	internal := func(context.Context, any) (any, error) { return nil, errors.New("db down") }
	_, _ = ic(context.Background(), nil, info, internal)

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("want 2 entries, got %d", len(entries))
	}
	if entries[0].Level != zapcore.InfoLevel || entries[0].ContextMap()["user_id"] != user.String() {
		t.Fatalf("client error entry: %+v", entries[0])
	}
	if entries[1].Level != zapcore.WarnLevel || entries[1].ContextMap()["code"] != codes.Unknown.String() {
		t.Fatalf("server error entry: %+v", entries[1])
	}
}

func TestMetricsUnary_RecordsCodes(t *testing.T) {
	t.Parallel()

	mem := metrics.NewMemory()
	ic := MetricsUnary(mem)
	info := &grpc.UnaryServerInfo{FullMethod: "/peakly.core.v1.Core/RecomputeRecipe"}

	ok := func(context.Context, any) (any, error) { return "ok", nil }
	bad := func(context.Context, any) (any, error) { return nil, status.Error(codes.InvalidArgument, "x") }
	_, _ = ic(context.Background(), nil, info, ok)
	_, _ = ic(context.Background(), nil, info, ok)
	_, _ = ic(context.Background(), nil, info, bad)

	stats := mem.Snapshot()
	if len(stats) != 2 {
		t.Fatalf("want 2 series, got %+v", stats)
	}
	if stats[0].Code != "InvalidArgument" || stats[0].Count != 1 {
		t.Fatalf("invalid series: %+v", stats[0])
	}
	if stats[1].Code != "OK" || stats[1].Count != 2 {
		t.Fatalf("ok series: %+v", stats[1])
	}
}

func TestMetricsUnary_NilSink(t *testing.T) {
	t.Parallel()

	ic := MetricsUnary(nil)
	info := &grpc.UnaryServerInfo{FullMethod: "/peakly.core.v1.Core/ListShopping"}
	if _, err := ic(context.Background(), nil, info, func(context.Context, any) (any, error) { return 1, nil }); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}
