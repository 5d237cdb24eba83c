package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/MinhaulMahmud/PersonalBlog/bindings"
	"github.com/MinhaulMahmud/PersonalBlog/reader/tracker"
	"github.com/spf13/cobra"
)

var (
	pageSize  int
	lineWidth int
)

var readCmd = &cobra.Command{
	Use:   "read <post-id>",
	Short: "Read a post",
	Long: `Open a post and page through it.

Press Enter for the next page and q to quit. Opening the post records a
view; reaching the last page records a read. View and read counts refresh
live while the post is open.`,
	Args: cobra.ExactArgs(1),
	RunE: runRead,
}

func init() {
	readCmd.Flags().IntVar(&pageSize, "page-size", 20, "lines per page")
	readCmd.Flags().IntVar(&lineWidth, "width", 80, "wrap width")
}

func runRead(cmd *cobra.Command, args []string) error {
	if pageSize <= 0 || lineWidth <= 0 {
		return fmt.Errorf("--page-size and --width must be positive")
	}
	p := &pager{out: cmd.OutOrStdout(), pageSize: pageSize, width: lineWidth}
	t := tracker.New(newPostClient(client, logger), logger,
		tracker.WithRequestTimeout(timeout),
		tracker.WithOnChange(p.onChange))
	defer t.Close()

	if err := t.Open(cmd.Context(), args[0]); err != nil {
		if errors.Is(err, errPostNotFound) {
			fmt.Fprintln(cmd.OutOrStdout(), "Post not found")
			return nil
		}
		return err
	}
	p.start(t.State())

	input := bufio.NewScanner(cmd.InOrStdin())
	for input.Scan() {
		if strings.TrimSpace(input.Text()) == "q" {
			break
		}
		position, viewport, document := p.next()
		t.OnScrollProgress(position, viewport, document)
	}
	return nil
}

// pager renders a post as pages of wrapped lines. The top line index is the
// scroll position, so the last page reaches the bottom of the document.
type pager struct {
	mu       sync.Mutex
	out      io.Writer
	pageSize int
	width    int

	lines   []string
	top     int
	started bool
	views   int64
	reads   int64
}

func (p *pager) start(s tracker.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lines = wrap(plainText(s.Post.Content), p.width)
	p.views, p.reads = s.ViewCount, s.ReadCount
	p.started = true

	writeHeader(p.out, *s.Post, s.ViewCount, s.ReadCount)
	p.printPage()
}

// next shows the following page and returns the resulting scroll geometry.
func (p *pager) next() (position, viewport, document float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	last := max(len(p.lines)-p.pageSize, 0)
	p.top = min(p.top+p.pageSize, last)
	p.printPage()
	return float64(p.top), float64(p.pageSize), float64(len(p.lines))
}

func (p *pager) printPage() {
	end := min(p.top+p.pageSize, len(p.lines))
	for _, line := range p.lines[p.top:end] {
		fmt.Fprintln(p.out, line)
	}
	if end >= len(p.lines) {
		fmt.Fprintln(p.out, "-- end --")
	} else {
		fmt.Fprintf(p.out, "-- %d%% -- Enter: next page, q: quit\n", end*100/len(p.lines))
	}
}

// onChange prints the counters whenever they move after the post is shown.
func (p *pager) onChange(s tracker.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started || s.Post == nil {
		return
	}
	if s.ViewCount == p.views && s.ReadCount == p.reads {
		return
	}
	p.views, p.reads = s.ViewCount, s.ReadCount
	fmt.Fprintf(p.out, "[live] %s\n", formatCounts(p.views, p.reads))
}

func writeHeader(w io.Writer, post bindings.Post, views, reads int64) {
	fmt.Fprintln(w, post.Title)
	fmt.Fprintln(w, strings.Repeat("=", min(len(post.Title), 80)))
	fmt.Fprintln(w, postMeta(post))
	fmt.Fprintln(w, formatCounts(views, reads))
	fmt.Fprintln(w)
}

func postMeta(post bindings.Post) string {
	var parts []string
	if post.Category != "" {
		parts = append(parts, post.Category)
	}
	if !post.CreatedAt.IsZero() {
		parts = append(parts, post.CreatedAt.Local().Format("Jan 2, 2006"))
	}
	if post.ReadTime > 0 {
		parts = append(parts, fmt.Sprintf("%d min read", post.ReadTime))
	}
	return strings.Join(parts, " · ")
}

func formatCounts(views, reads int64) string {
	return fmt.Sprintf("%d views · %d reads", views, reads)
}
