// Command resourcegraphd serves the resolver over gRPC, exposes
// Prometheus metrics, and streams every match decision to connected
// websocket clients, grounded on the teacher's cmd/engine-module-server
// (flag-based listen address, grpc.NewServer) plus controllers/metrics.go
// for the instrumentation surface.
package main

import (
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"

	"google.golang.org/grpc"

	"github.com/mrjk/resourcegraph/metrics"
	"github.com/mrjk/resourcegraph/observability/wsobserver"
	"github.com/mrjk/resourcegraph/telemetry"
	"github.com/mrjk/resourcegraph/transport/graphrpc"
)

func main() {
	var grpcAddr string
	var metricsAddr string
	var wsAddr string
	var development bool

	flag.StringVar(&grpcAddr, "grpc-listen", ":50061", "address the GraphService gRPC endpoint binds to")
	flag.StringVar(&metricsAddr, "metrics-listen", ":9090", "address the Prometheus /metrics endpoint binds to")
	flag.StringVar(&wsAddr, "ws-listen", ":9091", "address the debug-stream /debug/ws websocket endpoint binds to")
	flag.BoolVar(&development, "dev", false, "use a human-readable development logger instead of JSON")
	flag.Parse()

	log := telemetry.NewLogger(development)
	hub := wsobserver.NewHub()

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		log.Info("starting metrics server", "addr", metricsAddr)
		if err := http.ListenAndServe(metricsAddr, mux); err != nil {
			log.Error(err, "metrics server stopped")
		}
	}()

	go func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/debug/ws", hub.HandleWS)
		log.Info("starting debug stream server", "addr", wsAddr)
		if err := http.ListenAndServe(wsAddr, mux); err != nil {
			log.Error(err, "debug stream server stopped")
		}
	}()

	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		log.Error(err, "unable to listen", "addr", grpcAddr)
		os.Exit(1)
	}

	grpcServer := grpc.NewServer()
	graphrpc.RegisterServer(grpcServer, &graphrpc.ResolverService{Log: log, Debug: hub})

	log.Info("starting grpc server", "addr", grpcAddr)
	if err := grpcServer.Serve(lis); err != nil {
		log.Error(err, "grpc serve failed")
		os.Exit(1)
	}
	fmt.Println("resourcegraphd stopped")
}
