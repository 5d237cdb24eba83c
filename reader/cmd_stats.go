package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/MinhaulMahmud/PersonalBlog/bindings"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

var watchStats bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show total posts, views and reads",
	Long: `Show dashboard totals. With --watch the totals are printed again
whenever a post is created, edited, deleted, viewed or read.`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&watchStats, "watch", false, "refresh on every post event")
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx, err := withToken(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if err := printStats(ctx, out); err != nil {
		return err
	}
	if !watchStats {
		return nil
	}

	stream, err := client.SubscribeDashboard(ctx, &emptypb.Empty{})
	if err != nil {
		return fmt.Errorf("watch dashboard: %w", err)
	}
	for {
		msg, err := stream.Recv()
		if errors.Is(err, io.EOF) || status.Code(err) == codes.Canceled {
			return nil
		}
		if err != nil {
			return fmt.Errorf("watch dashboard: %w", err)
		}
		ev := bindings.EventFromStruct(msg)
		logger.Debug("post event", zap.String("type", string(ev.Type)), zap.String("post_id", ev.PostId))
		if err := printStats(ctx, out); err != nil {
			return err
		}
	}
}

func printStats(ctx context.Context, out io.Writer) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	res, err := client.GetDashboardStats(ctx, &emptypb.Empty{})
	if err != nil {
		return fmt.Errorf("load stats: %w", err)
	}
	stats := bindings.StatsFromStruct(res)
	fmt.Fprintf(out, "posts: %d  views: %d  reads: %d\n", stats.TotalPosts, stats.TotalViews, stats.TotalReads)
	return nil
}
