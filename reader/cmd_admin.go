package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MinhaulMahmud/PersonalBlog/bindings"
	"github.com/spf13/cobra"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const summaryNotice = "AI-generated summaries should not replace reading the full article. " +
	"They give a quick overview but may miss important nuances and context."

var summarizeCmd = &cobra.Command{
	Use:   "summarize <post-id>",
	Short: "Summarize a post with the AI assistant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		post, err := fetchPost(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()
		res, err := client.Summarize(ctx, wrapperspb.String(plainText(post.Content)))
		if err != nil {
			return fmt.Errorf("summarize: %w", err)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Note: "+summaryNotice)
		fmt.Fprintln(out)
		fmt.Fprintln(out, strings.TrimSpace(res.GetValue()))
		return nil
	},
}

var seoCmd = &cobra.Command{
	Use:   "seo <post-id>",
	Short: "Suggest SEO title, description and keywords for a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := withToken(cmd.Context())
		if err != nil {
			return err
		}
		post, err := fetchPost(ctx, args[0])
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		res, err := client.SuggestSEO(ctx, wrapperspb.String(plainText(post.Content)))
		if err != nil {
			return fmt.Errorf("suggest seo: %w", err)
		}
		seo := bindings.SEOFromStruct(res)
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "title:       "+seo.SuggestedTitle)
		fmt.Fprintln(out, "description: "+seo.MetaDescription)
		fmt.Fprintln(out, "keywords:    "+strings.Join(seo.Keywords, ", "))
		return nil
	},
}

// post fields shared by create and update
var postFlags struct {
	title, content, category, imageURL string
	readTime                           int64
	seoTitle, seoDescription           string
	seoKeywords                        []string
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a post",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := withToken(cmd.Context())
		if err != nil {
			return err
		}
		post := bindings.Post{}
		applyPostFlags(cmd, &post)
		req, err := bindings.PostToStruct(post)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		id, err := client.CreatePost(ctx, req)
		if err != nil {
			return fmt.Errorf("create post: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), id.GetValue())
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <post-id>",
	Short: "Edit a post; only the given flags change",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := withToken(cmd.Context())
		if err != nil {
			return err
		}
		post, err := fetchPost(ctx, args[0])
		if err != nil {
			return err
		}
		applyPostFlags(cmd, &post)
		req, err := bindings.PostToStruct(post)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if _, err := client.UpdatePost(ctx, req); err != nil {
			return fmt.Errorf("update post: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Post updated")
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <post-id>",
	Short: "Delete a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := withToken(cmd.Context())
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if _, err := client.DeletePost(ctx, wrapperspb.String(args[0])); err != nil {
			return fmt.Errorf("delete post: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Post deleted")
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{createCmd, updateCmd} {
		f := cmd.Flags()
		f.StringVar(&postFlags.title, "title", "", "post title")
		f.StringVar(&postFlags.content, "content", "", "post content (HTML)")
		f.StringVar(&postFlags.category, "category", "", "category")
		f.StringVar(&postFlags.imageURL, "image-url", "", "cover image URL")
		f.Int64Var(&postFlags.readTime, "read-time", 0, "estimated minutes to read")
		f.StringVar(&postFlags.seoTitle, "seo-title", "", "SEO title")
		f.StringVar(&postFlags.seoDescription, "seo-description", "", "SEO meta description")
		f.StringSliceVar(&postFlags.seoKeywords, "seo-keywords", nil, "comma separated SEO keywords")
	}
	createCmd.MarkFlagRequired("title")
	createCmd.MarkFlagRequired("content")
}

// applyPostFlags copies the flags the user actually set onto post.
func applyPostFlags(cmd *cobra.Command, post *bindings.Post) {
	f := cmd.Flags()
	if f.Changed("title") {
		post.Title = postFlags.title
	}
	if f.Changed("content") {
		post.Content = postFlags.content
	}
	if f.Changed("category") {
		post.Category = postFlags.category
	}
	if f.Changed("image-url") {
		post.ImageURL = postFlags.imageURL
	}
	if f.Changed("read-time") {
		post.ReadTime = postFlags.readTime
	}
	if f.Changed("seo-title") {
		post.SEOTitle = postFlags.seoTitle
	}
	if f.Changed("seo-description") {
		post.SEODescription = postFlags.seoDescription
	}
	if f.Changed("seo-keywords") {
		post.SEOKeywords = postFlags.seoKeywords
	}
}

func fetchPost(ctx context.Context, id string) (bindings.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	post, err := newPostClient(client, logger).FetchPost(ctx, id)
	if errors.Is(err, errPostNotFound) {
		return bindings.Post{}, fmt.Errorf("post %s not found", id)
	}
	return post, err
}
