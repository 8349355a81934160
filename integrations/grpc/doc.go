// Package grpc provides gRPC server interceptors for request
// authentication and scope enforcement.
//
// Both unary and streaming interceptors are offered. Credentials are
// read from incoming metadata: bearer tokens from the "authorization"
// key, API keys from "x-api-key" (configurable). Failures map to gRPC
// status codes the way the HTTP handler maps them to HTTP statuses.
//
// # Basic Usage
//
//	interceptor, err := grpcware.New(
//	    grpcware.WithMiddleware(m),
//	    grpcware.WithDefaultPolicy(authware.Policy{
//	        RequiredScopes: []scope.Scope{"read:orders"},
//	    }),
//	    grpcware.WithMethodPolicy("/orders.Orders/Create", authware.Policy{
//	        RequiredScopes: []scope.Scope{"write:orders"},
//	    }),
//	    grpcware.WithExcludedMethods("/grpc.health.v1.Health/Check"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	server := grpc.NewServer(
//	    grpc.UnaryInterceptor(interceptor.UnaryServerInterceptor()),
//	    grpc.StreamInterceptor(interceptor.StreamServerInterceptor()),
//	)
//
// Handlers read the authenticated identity from their context:
//
//	func (s *server) Get(ctx context.Context, req *pb.GetRequest) (*pb.Order, error) {
//	    ac := authware.MustGetAuthContext(ctx)
//	    // ac.Identity.ID, ac.Scopes ...
//	}
package grpc
