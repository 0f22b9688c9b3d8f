// Command agentlang-server hosts a Resolver behind the gRPC wire protocol
// internal/resolverpb defines (spec.md §4.3, §5's RemoteResolver peer),
// letting a separate evaluator process treat this one as just another
// resolver entry in its resolver map.
package main

import (
	"net"
	"os"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/nucleus/agentlang/internal/config"
	"github.com/nucleus/agentlang/internal/logging"
	"github.com/nucleus/agentlang/internal/resolver"
	"github.com/nucleus/agentlang/internal/resolverpb"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logging.New("agentlang-server", cfg.Logging.Level, cfg.Logging.Format)

	backend, err := newBackend(cfg)
	if err != nil {
		log.WithError(err).Fatal("build resolver backend")
	}

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		log.WithError(err).Fatalf("listen on %s", cfg.Server.GRPCAddr)
	}

	grpcServer := grpc.NewServer()
	resolverpb.RegisterResolverServiceServer(grpcServer, resolver.NewRemoteServer(backend))

	healthSrv := health.NewServer()
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthSrv)

	log.WithField("addr", cfg.Server.GRPCAddr).Info("resolver gRPC server listening")
	if err := grpcServer.Serve(lis); err != nil {
		log.WithError(err).Fatal("serve gRPC")
	}
}

// newBackend builds the Resolver this server fronts: Postgres if a DSN is
// configured, otherwise an in-memory store, each wrapped in the
// timeout/retry/circuit-breaker envelope (spec.md §5).
func newBackend(cfg *config.Config) (resolver.Resolver, error) {
	var inner resolver.Resolver
	if cfg.Database.DSN != "" {
		pg, err := resolver.NewPostgres(cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		inner = pg
	} else {
		inner = resolver.NewMemory()
	}
	return resolver.NewPolicy(inner, cfg.Policy()), nil
}
