package main

import (
	"context"
	"fmt"

	"github.com/MinhaulMahmud/PersonalBlog/bindings"
	"github.com/spf13/cobra"
	"google.golang.org/protobuf/types/known/emptypb"
)

const snippetLength = 150

var postsCmd = &cobra.Command{
	Use:   "posts",
	Short: "List posts, newest first",
	Args:  cobra.NoArgs,
	RunE:  runPosts,
}

func runPosts(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	res, err := client.ListPosts(ctx, &emptypb.Empty{})
	if err != nil {
		return fmt.Errorf("list posts: %w", err)
	}
	posts, err := bindings.PostsFromStruct(res)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(posts) == 0 {
		fmt.Fprintln(out, "No posts yet")
		return nil
	}
	featured := posts[0]
	fmt.Fprintln(out, "FEATURED")
	fmt.Fprintf(out, "%s  [%s]\n", featured.Title, featured.Id)
	fmt.Fprintln(out, postMeta(featured))
	fmt.Fprintln(out, snippet(featured.Content, snippetLength))

	if len(posts) > 1 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "LATEST")
	}
	for _, post := range posts[1:] {
		fmt.Fprintf(out, "\n%s  [%s]\n", post.Title, post.Id)
		fmt.Fprintln(out, postMeta(post))
		fmt.Fprintln(out, snippet(post.Content, snippetLength))
	}
	return nil
}
