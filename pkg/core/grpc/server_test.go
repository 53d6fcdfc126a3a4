package grpc

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	mdwerror "github.com/msto63/cellbot/foundation/core/error"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

func startBufServer(t *testing.T, services ...*grpc.ServiceDesc) (*Server, *grpc.ClientConn) {
	t.Helper()

	lis := bufconn.Listen(1024 * 1024)
	srv := NewServer(DefaultServerConfig())
	for _, desc := range services {
		srv.GRPCServer().RegisterService(desc, struct{}{})
	}
	go srv.Serve(lis)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	})

	conn, err := Dial(DefaultClientConfig("passthrough:///bufnet"),
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}))
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return srv, conn
}

func TestServer_Health(t *testing.T) {
	srv, conn := startBufServer(t)
	srv.SetServing("cellbot.v1.Runner", true)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	serving, err := CheckHealth(ctx, conn, "cellbot.v1.Runner")
	if err != nil {
		t.Fatalf("CheckHealth() error = %v", err)
	}
	if !serving {
		t.Error("Expected service to be serving")
	}

	srv.SetServing("cellbot.v1.Runner", false)
	serving, err = CheckHealth(ctx, conn, "cellbot.v1.Runner")
	if err != nil {
		t.Fatalf("CheckHealth() error = %v", err)
	}
	if serving {
		t.Error("Expected service to be not serving")
	}
}

func TestServerConfig_Addr(t *testing.T) {
	cfg := DefaultServerConfig()
	if got := cfg.Addr(); got != "0.0.0.0:9310" {
		t.Errorf("Expected 0.0.0.0:9310, got %s", got)
	}
	cfg.Host = "::1"
	if got := cfg.Addr(); got != "[::1]:9310" {
		t.Errorf("Expected [::1]:9310, got %s", got)
	}

	srv := NewServer(cfg)
	if got := srv.Address(); got != "[::1]:9310" {
		t.Errorf("Expected configured address before serving, got %s", got)
	}
}

// echoRunDesc is a one-method service that answers with the run ID its
// handler saw
var echoRunDesc = grpc.ServiceDesc{
	ServiceName: "cellbot.test.Echo",
	HandlerType: (*interface{})(nil),
	Methods: []grpc.MethodDesc{{
		MethodName: "Run",
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/cellbot.test.Echo/Run"}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				if req.(*structpb.Struct).GetFields()["fail"].GetBoolValue() {
					return nil, mdwerror.New("wall ahead").WithCode(mdwerror.CodeWallCollision)
				}
				return structpb.NewStruct(map[string]interface{}{"run_id": RunID(ctx)})
			}
			return interceptor(ctx, in, info, handler)
		},
	}},
}

func TestInterceptors_RunIDRoundTrip(t *testing.T) {
	_, conn := startBufServer(t, &echoRunDesc)

	in, _ := structpb.NewStruct(map[string]interface{}{"source": "MOVE"})

	t.Run("Client supplied", func(t *testing.T) {
		out := new(structpb.Struct)
		var header metadata.MD
		ctx := WithRunID(context.Background(), "run-7")
		if err := conn.Invoke(ctx, "/cellbot.test.Echo/Run", in, out, grpc.Header(&header)); err != nil {
			t.Fatalf("Invoke() error = %v", err)
		}
		if got := out.GetFields()["run_id"].GetStringValue(); got != "run-7" {
			t.Errorf("Expected handler run ID run-7, got %q", got)
		}
		if got := header.Get(RunIDHeader); len(got) != 1 || got[0] != "run-7" {
			t.Errorf("Expected echoed run ID run-7, got %v", got)
		}
	})

	t.Run("Generated", func(t *testing.T) {
		out := new(structpb.Struct)
		var header metadata.MD
		if err := conn.Invoke(context.Background(), "/cellbot.test.Echo/Run", in, out, grpc.Header(&header)); err != nil {
			t.Fatalf("Invoke() error = %v", err)
		}
		got := out.GetFields()["run_id"].GetStringValue()
		if got == "" {
			t.Fatal("Expected a generated run ID")
		}
		if echoed := header.Get(RunIDHeader); len(echoed) != 1 || echoed[0] != got {
			t.Errorf("Expected echoed run ID %q, got %v", got, echoed)
		}
	})

	t.Run("Error code", func(t *testing.T) {
		failing, _ := structpb.NewStruct(map[string]interface{}{"fail": true})
		err := conn.Invoke(context.Background(), "/cellbot.test.Echo/Run", failing, new(structpb.Struct))
		if status.Code(err) != codes.FailedPrecondition {
			t.Errorf("Expected FailedPrecondition, got %v", status.Code(err))
		}
		if code := ErrorCode(err); code != mdwerror.CodeWallCollision {
			t.Errorf("Expected %s, got %q", mdwerror.CodeWallCollision, code)
		}
	})
}

func TestRecoveryInterceptor(t *testing.T) {
	info := &grpc.UnaryServerInfo{FullMethod: "/cellbot.v1.Runner/Run"}
	_, err := RecoveryInterceptor()(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		panic("boom")
	})

	if status.Code(err) != codes.Internal {
		t.Errorf("Expected Internal, got %v", status.Code(err))
	}
	if code := ErrorCode(err); code != mdwerror.CodeInternal {
		t.Errorf("Expected %s, got %q", mdwerror.CodeInternal, code)
	}
}

func TestRunIDInterceptor_IncomingMetadata(t *testing.T) {
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(RunIDHeader, "run-9"))

	var seen string
	_, err := RunIDInterceptor()(ctx, nil, &grpc.UnaryServerInfo{}, func(ctx context.Context, req interface{}) (interface{}, error) {
		seen = RunID(ctx)
		return nil, nil
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if seen != "run-9" {
		t.Errorf("Expected run-9, got %q", seen)
	}
	if got := RunID(context.Background()); got != "" {
		t.Errorf("Expected empty run ID, got %q", got)
	}
}

func TestRequestFields(t *testing.T) {
	full, _ := structpb.NewStruct(map[string]interface{}{
		"source":     "MOVE",
		"program":    "walk.rcl",
		"entry_task": "FINDEXIT",
		"maze_name":  "corridor",
	})
	sourceOnly, _ := structpb.NewStruct(map[string]interface{}{"source": "MOVE"})

	tests := []struct {
		name     string
		req      interface{}
		expected map[string]interface{}
	}{
		{"Full request", full, map[string]interface{}{
			"program":      "walk.rcl",
			"program_hash": "",
			"entry_task":   "FINDEXIT",
			"maze":         "corridor",
		}},
		{"Source only", sourceOnly, map[string]interface{}{"program_hash": ""}},
		{"Not a struct", "MOVE", map[string]interface{}{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := RequestFields(tt.req)
			if len(fields) != 2*len(tt.expected) {
				t.Fatalf("Expected %d fields, got %v", len(tt.expected), fields)
			}
			for i := 0; i < len(fields); i += 2 {
				key := fields[i].(string)
				want, ok := tt.expected[key]
				if !ok {
					t.Errorf("Unexpected field %s", key)
					continue
				}
				if key == "program_hash" {
					if hash := fields[i+1].(string); len(hash) != hashPrefix {
						t.Errorf("Expected %d character hash, got %q", hashPrefix, hash)
					}
					continue
				}
				if fields[i+1] != want {
					t.Errorf("Expected %s=%v, got %v", key, want, fields[i+1])
				}
			}
		})
	}
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected mdwerror.Code
	}{
		{"Nil", nil, ""},
		{"mDW error", mdwerror.New("bad").WithCode(mdwerror.CodeSemantic), mdwerror.CodeSemantic},
		{"Translated", ToStatus(mdwerror.New("bad").WithCode(mdwerror.CodeSyntax)), mdwerror.CodeSyntax},
		{"Plain status", status.Error(codes.Unavailable, "down"), ""},
		{"Plain error", errors.New("boom"), mdwerror.CodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorCode(tt.err); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}
