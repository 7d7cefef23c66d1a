// Copyright 2025 Patrick J. Scruggs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sloghookgrpc

import (
	"context"
	"reflect"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"

	"github.com/pjscruggs/sloghook/intercept"
)

const (
	// StreamServerParamType is the parameter type recorded for server
	// streaming RPCs.
	StreamServerParamType = "grpc.ServerStream"
	// StreamClientParamType is the parameter type recorded for client
	// streaming RPCs.
	StreamClientParamType = "grpc.ClientStream"
)

// UnaryServerInterceptor returns an interceptor that runs every unary RPC
// through p. The handler's error is returned unchanged after the catch hooks
// have seen it.
func UnaryServerInterceptor(p *intercept.Proxy, opts ...Option) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		m := unaryMethod(p, info.FullMethod, req)
		var resp any
		err := p.Invoke(ctx, m, []any{req}, func(ctx context.Context) error {
			var err error
			resp, err = handler(ctx, req)
			return err
		})
		return resp, err
	}
}

// StreamServerInterceptor returns an interceptor that runs every streaming
// RPC through p. The hooks observe the lifetime of the whole stream; the
// stream handed to the handler reports the intercepted context.
func StreamServerInterceptor(p *intercept.Proxy, opts ...Option) grpc.StreamServerInterceptor {
	cfg := applyOptions(opts)
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		if !cfg.includeStreams {
			return handler(srv, ss)
		}
		m := streamMethod(p, info.FullMethod, StreamServerParamType)
		return p.Invoke(ss.Context(), m, nil, func(ctx context.Context) error {
			return handler(srv, &serverStream{ServerStream: ss, ctx: ctx})
		})
	}
}

// UnaryClientInterceptor returns an interceptor that runs every outgoing
// unary RPC through p.
func UnaryClientInterceptor(p *intercept.Proxy, opts ...Option) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, callOpts ...grpc.CallOption) error {
		m := unaryMethod(p, method, req)
		return p.Invoke(ctx, m, []any{req}, func(ctx context.Context) error {
			return invoker(ctx, method, req, reply, cc, callOpts...)
		})
	}
}

// StreamClientInterceptor returns an interceptor that runs stream creation
// through p. Only establishing the stream is timed; messages exchanged
// afterwards are not observed.
func StreamClientInterceptor(p *intercept.Proxy, opts ...Option) grpc.StreamClientInterceptor {
	cfg := applyOptions(opts)
	return func(ctx context.Context, desc *grpc.StreamDesc, cc *grpc.ClientConn, method string, streamer grpc.Streamer, callOpts ...grpc.CallOption) (grpc.ClientStream, error) {
		if !cfg.includeStreams {
			return streamer(ctx, desc, cc, method, callOpts...)
		}
		m := streamMethod(p, method, StreamClientParamType)
		var cs grpc.ClientStream
		err := p.Invoke(ctx, m, nil, func(ctx context.Context) error {
			var err error
			cs, err = streamer(ctx, desc, cc, method, callOpts...)
			return err
		})
		return cs, err
	}
}

// ServerOptions returns grpc.ServerOptions that install the interceptors
// and, unless disabled, an otelgrpc stats handler.
func ServerOptions(p *intercept.Proxy, opts ...Option) []grpc.ServerOption {
	cfg := applyOptions(opts)
	var serverOpts []grpc.ServerOption
	if cfg.enableOTel {
		serverOpts = append(serverOpts, grpc.StatsHandler(otelgrpc.NewServerHandler(statsHandlerOptions(cfg)...)))
	}
	serverOpts = append(serverOpts,
		grpc.ChainUnaryInterceptor(UnaryServerInterceptor(p, opts...)),
		grpc.ChainStreamInterceptor(StreamServerInterceptor(p, opts...)),
	)
	return serverOpts
}

// DialOptions returns grpc.DialOptions that install the client interceptors
// and, unless disabled, an otelgrpc stats handler.
func DialOptions(p *intercept.Proxy, opts ...Option) []grpc.DialOption {
	cfg := applyOptions(opts)
	var dialOpts []grpc.DialOption
	if cfg.enableOTel {
		dialOpts = append(dialOpts, grpc.WithStatsHandler(otelgrpc.NewClientHandler(statsHandlerOptions(cfg)...)))
	}
	dialOpts = append(dialOpts,
		grpc.WithChainUnaryInterceptor(UnaryClientInterceptor(p, opts...)),
		grpc.WithChainStreamInterceptor(StreamClientInterceptor(p, opts...)),
	)
	return dialOpts
}

// SplitMethod splits a full gRPC method name such as "/pkg.Service/Method"
// into its service and method parts. Names without a service separator are
// returned as the method with the service empty.
func SplitMethod(fullMethod string) (service, method string) {
	name := strings.TrimPrefix(fullMethod, "/")
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}

// unaryMethod builds the descriptor for a unary RPC carrying req. The
// parameter type is req's Go type as reflect prints it, e.g.
// "*pb.HelloRequest"; a nil req is typed "any".
func unaryMethod(p *intercept.Proxy, fullMethod string, req any) intercept.Method {
	m := describe(p, fullMethod)
	typ := "any"
	if t := reflect.TypeOf(req); t != nil {
		typ = t.String()
	}
	m.Params = []intercept.Param{{Type: typ, Name: "req"}}
	return m
}

// streamMethod builds the descriptor for a streaming RPC.
func streamMethod(p *intercept.Proxy, fullMethod, paramType string) intercept.Method {
	m := describe(p, fullMethod)
	m.Params = []intercept.Param{{Type: paramType, Name: "stream"}}
	return m
}

// describe names the RPC after its service, falling back to the proxy's own
// type name for malformed method strings.
func describe(p *intercept.Proxy, fullMethod string) intercept.Method {
	service, method := SplitMethod(fullMethod)
	if service == "" {
		service = p.TypeName()
	}
	return intercept.Method{Name: method, Type: service}
}

type serverStream struct {
	grpc.ServerStream
	ctx context.Context
}

// Context returns the context carrying the intercepted method.
func (s *serverStream) Context() context.Context {
	return s.ctx
}
