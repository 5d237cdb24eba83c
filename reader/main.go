package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MinhaulMahmud/PersonalBlog/bindings"
	"github.com/MinhaulMahmud/PersonalBlog/platform/config"
	"github.com/MinhaulMahmud/PersonalBlog/platform/logging"
	"github.com/MinhaulMahmud/PersonalBlog/platform/telemetry"
	"github.com/MinhaulMahmud/PersonalBlog/post_service/registry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// readerConfig supplies flag defaults from .env and the environment.
type readerConfig struct {
	Addr     string        `env:"READER_ADDR"`
	Token    string        `env:"READER_TOKEN"`
	LogLevel string        `env:"READER_LOG_LEVEL"`
	Timeout  time.Duration `env:"READER_TIMEOUT"`
	Etcd     []string      `env:"READER_ETCD_ENDPOINTS" envSeparator:","`
}

var (
	// Global flags
	addr          string
	token         string
	logLevel      string
	timeout       time.Duration
	etcdEndpoints []string

	logger *zap.Logger
	client bindings.PostStoreClient
	conn   *grpc.ClientConn
)

var rootCmd = &cobra.Command{
	Use:   "reader",
	Short: "Read and manage posts of the personal blog",
	Long: `reader talks to post_service over gRPC.

Reading a post records one view when it opens and one read when you page
to the end. Counters update live while the post is open.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if logger == nil {
			l, err := logging.New(logLevel, "reader")
			if err != nil {
				return err
			}
			logger = l
		}
		// already set when running against an in-process server
		if client != nil {
			return nil
		}
		target := addr
		if len(etcdEndpoints) > 0 {
			picked, err := pickInstance(cmd.Context())
			if err != nil {
				return err
			}
			target = picked
		}
		cc, err := grpc.NewClient(target, telemetry.ClientDialOptions()...)
		if err != nil {
			return fmt.Errorf("connect to %s: %w", target, err)
		}
		conn = cc
		client = bindings.NewPostStoreClient(cc)
		return nil
	},
}

func init() {
	cfg := readerConfig{
		Addr:     "localhost:50051",
		LogLevel: "warn",
		Timeout:  5 * time.Second,
	}
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	if err := config.ParseEnv(&cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	rootCmd.PersistentFlags().StringVar(&addr, "addr", cfg.Addr, "post_service gRPC address")
	rootCmd.PersistentFlags().StringVar(&token, "token", cfg.Token, "admin bearer token")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", cfg.LogLevel, "log level")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", cfg.Timeout, "timeout for each request")
	rootCmd.PersistentFlags().StringSliceVar(&etcdEndpoints, "etcd", cfg.Etcd, "discover post_service through these etcd endpoints instead of --addr")

	rootCmd.AddCommand(readCmd, postsCmd, statsCmd, summarizeCmd, seoCmd, createCmd, updateCmd, deleteCmd, aboutCmd)
}

// pickInstance asks the registry for one live post_service instance.
func pickInstance(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	resolver, err := registry.NewResolver(ctx, etcdEndpoints, logger)
	if err != nil {
		return "", err
	}
	defer resolver.Close()
	return resolver.Pick()
}

// closeClient runs after every command, including failed ones.
func closeClient() {
	if conn != nil {
		if err := conn.Close(); err != nil && logger != nil {
			logger.Debug("close connection", zap.Error(err))
		}
		conn, client = nil, nil
	}
	if logger != nil {
		_ = logger.Sync()
	}
}

// withToken attaches the admin token to outgoing calls.
func withToken(ctx context.Context) (context.Context, error) {
	if token == "" {
		return nil, fmt.Errorf("this command needs an admin token (--token or READER_TOKEN)")
	}
	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token), nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, "reader")
	if err != nil {
		fmt.Fprintln(os.Stderr, "tracing disabled:", err)
	}
	err = rootCmd.ExecuteContext(ctx)
	closeClient()
	if shutdownTracing != nil {
		shutdownTracing(context.Background())
	}
	if err != nil {
		os.Exit(1)
	}
}
