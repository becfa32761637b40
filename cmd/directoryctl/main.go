// Command directoryctl is a command-line client for the employee directory.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gartstein/directory/internal/directory/rpc"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

var (
	addr    string
	token   string
	timeout time.Duration
)

// dial connects to the directory service. Tests replace it.
var dial = func() (rpc.EmployeeServiceClient, func() error, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, fmt.Errorf("connect to %s: %w", addr, err)
	}
	return rpc.NewEmployeeServiceClient(conn), conn.Close, nil
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "directoryctl",
	Short: "Manage the employee directory",
	Long: `directoryctl talks to the directory service over gRPC.

Mutating commands need a bearer token, passed with --token or the
DIRECTORY_TOKEN environment variable.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&addr, "addr", "localhost:50051", "gRPC address of the directory service")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("DIRECTORY_TOKEN"), "bearer token for mutating commands")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "request timeout")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(deleteAllCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(watchCmd)
}

// withClient runs fn with a connected client and a request context that
// carries the token.
func withClient(cmd *cobra.Command, fn func(ctx context.Context, client rpc.EmployeeServiceClient) error) error {
	client, closeConn, err := dial()
	if err != nil {
		return err
	}
	defer func() { _ = closeConn() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()
	if token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
	}
	return fn(ctx, client)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
