// Package grpc implements the gRPC transport for babelbot.
//
// The service babelbot.v1.Translator exposes unary Translate and Detect
// methods. Messages are encoded as JSON with a registered "json" codec, so
// clients need no generated stubs: message.Message in, message.Result out.
package grpc

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/nadzzz/babelbot/internal/langdetect"
	"github.com/nadzzz/babelbot/internal/message"
	"github.com/nadzzz/babelbot/internal/transport"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "babelbot.v1.Translator"

const (
	translateMethod = "/" + ServiceName + "/Translate"
	detectMethod    = "/" + ServiceName + "/Detect"
)

// DetectRequest is the input of the Detect method.
type DetectRequest struct {
	Text string `json:"text"`
	Hint string `json:"hint,omitempty"`
}

// translatorServer is the handler type of the service descriptor.
type translatorServer interface {
	Translate(ctx context.Context, in *message.Message) (*message.Result, error)
	Detect(ctx context.Context, in *DetectRequest) (*langdetect.Decision, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*translatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Translate", Handler: translateHandler},
		{MethodName: "Detect", Handler: detectHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "babelbot/v1/translator",
}

func translateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(message.Message)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(translatorServer).Translate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: translateMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(translatorServer).Translate(ctx, req.(*message.Message))
	}
	return interceptor(ctx, in, info, handler)
}

func detectHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(DetectRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(translatorServer).Detect(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: detectMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(translatorServer).Detect(ctx, req.(*DetectRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// server adapts a transport.Service to the service descriptor.
type server struct {
	svc transport.Service
}

func (s *server) Translate(ctx context.Context, in *message.Message) (*message.Result, error) {
	if in.Source == "" {
		in.Source = "grpc"
	}
	res, err := s.svc.Handle(ctx, in)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "translate: %v", err)
	}
	return res, nil
}

func (s *server) Detect(ctx context.Context, in *DetectRequest) (*langdetect.Decision, error) {
	d := s.svc.Detect(ctx, in.Text, in.Hint)
	return &d, nil
}

// logUnary logs every call with its status code and duration.
func logUnary(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	slog.Debug("grpc call",
		"method", info.FullMethod,
		"code", status.Code(err).String(),
		"duration", time.Since(start))
	return resp, err
}

// Transport implements transport.Transport over gRPC.
type Transport struct {
	port   int
	server *grpc.Server
}

// New creates a new gRPC transport on the given port.
func New(port int) *Transport {
	return &Transport{port: port}
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "grpc" }

// Listen starts the gRPC server and routes incoming requests to svc.
func (t *Transport) Listen(ctx context.Context, svc transport.Service) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", t.port))
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}
	slog.Info("grpc transport listening", "port", t.port)
	return t.Serve(ctx, lis, svc)
}

// Serve runs the server on lis until ctx is cancelled.
func (t *Transport) Serve(ctx context.Context, lis net.Listener, svc transport.Service) error {
	t.server = grpc.NewServer(
		grpc.ForceServerCodec(codec{}),
		grpc.UnaryInterceptor(logUnary),
	)
	t.server.RegisterService(&serviceDesc, &server{svc: svc})

	go func() {
		<-ctx.Done()
		slog.Info("grpc transport shutting down")
		t.server.GracefulStop()
	}()

	if err := t.server.Serve(lis); err != nil && err != grpc.ErrServerStopped {
		return fmt.Errorf("grpc serve: %w", err)
	}
	return nil
}

// Close gracefully stops the gRPC server.
func (t *Transport) Close() error {
	if t.server != nil {
		t.server.GracefulStop()
	}
	return nil
}
