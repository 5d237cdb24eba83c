package bindings

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

// Post is the wire shape of a blog post row.
type Post struct {
	Id             string    `json:"id"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	Category       string    `json:"category"`
	ImageURL       string    `json:"image_url"`
	ReadTime       int64     `json:"read_time"`
	SEOTitle       string    `json:"seo_title"`
	SEODescription string    `json:"seo_description"`
	SEOKeywords    []string  `json:"seo_keywords"`
	ViewCount      int64     `json:"view_count"`
	ReadCount      int64     `json:"read_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// PostCounts is the payload of every change notification for a post.
type PostCounts struct {
	PostId    string `json:"post_id"`
	ViewCount int64  `json:"view_count"`
	ReadCount int64  `json:"read_count"`
}

type PostEventType string

const (
	PostCreated       PostEventType = "created"
	PostUpdated       PostEventType = "updated"
	PostDeleted       PostEventType = "deleted"
	PostCountsChanged PostEventType = "counts"
)

// PostEvent is one entry of the post event log consumed by dashboards.
type PostEvent struct {
	Type       PostEventType `json:"type"`
	PostId     string        `json:"post_id"`
	ViewCount  int64         `json:"view_count,omitempty"`
	ReadCount  int64         `json:"read_count,omitempty"`
	OccurredAt int64         `json:"occurred_at"`
}

type DashboardStats struct {
	TotalPosts int64 `json:"total_posts"`
	TotalViews int64 `json:"total_views"`
	TotalReads int64 `json:"total_reads"`
}

type SEOSuggestion struct {
	SuggestedTitle  string   `json:"suggestedTitle"`
	MetaDescription string   `json:"metaDescription"`
	Keywords        []string `json:"keywords"`
}

func PostToStruct(p Post) (*structpb.Struct, error) {
	keywords := make([]any, 0, len(p.SEOKeywords))
	for _, k := range p.SEOKeywords {
		keywords = append(keywords, k)
	}
	fields := map[string]any{
		"id":              p.Id,
		"title":           p.Title,
		"content":         p.Content,
		"category":        p.Category,
		"image_url":       p.ImageURL,
		"read_time":       p.ReadTime,
		"seo_title":       p.SEOTitle,
		"seo_description": p.SEODescription,
		"seo_keywords":    keywords,
		"view_count":      p.ViewCount,
		"read_count":      p.ReadCount,
	}
	if !p.CreatedAt.IsZero() {
		fields["created_at"] = p.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	if !p.UpdatedAt.IsZero() {
		fields["updated_at"] = p.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}
	return structpb.NewStruct(fields)
}

func PostFromStruct(s *structpb.Struct) (Post, error) {
	f := s.GetFields()
	p := Post{
		Id:             f["id"].GetStringValue(),
		Title:          f["title"].GetStringValue(),
		Content:        f["content"].GetStringValue(),
		Category:       f["category"].GetStringValue(),
		ImageURL:       f["image_url"].GetStringValue(),
		ReadTime:       int64(f["read_time"].GetNumberValue()),
		SEOTitle:       f["seo_title"].GetStringValue(),
		SEODescription: f["seo_description"].GetStringValue(),
		ViewCount:      int64(f["view_count"].GetNumberValue()),
		ReadCount:      int64(f["read_count"].GetNumberValue()),
	}
	for _, v := range f["seo_keywords"].GetListValue().GetValues() {
		p.SEOKeywords = append(p.SEOKeywords, v.GetStringValue())
	}
	var err error
	if v := f["created_at"].GetStringValue(); v != "" {
		if p.CreatedAt, err = time.Parse(time.RFC3339Nano, v); err != nil {
			return Post{}, fmt.Errorf("invalid created_at: %w", err)
		}
	}
	if v := f["updated_at"].GetStringValue(); v != "" {
		if p.UpdatedAt, err = time.Parse(time.RFC3339Nano, v); err != nil {
			return Post{}, fmt.Errorf("invalid updated_at: %w", err)
		}
	}
	return p, nil
}

func CountsToStruct(c PostCounts) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"post_id":    c.PostId,
		"view_count": c.ViewCount,
		"read_count": c.ReadCount,
	})
}

func CountsFromStruct(s *structpb.Struct) PostCounts {
	f := s.GetFields()
	return PostCounts{
		PostId:    f["post_id"].GetStringValue(),
		ViewCount: int64(f["view_count"].GetNumberValue()),
		ReadCount: int64(f["read_count"].GetNumberValue()),
	}
}

func EventToStruct(e PostEvent) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"type":        string(e.Type),
		"post_id":     e.PostId,
		"view_count":  e.ViewCount,
		"read_count":  e.ReadCount,
		"occurred_at": e.OccurredAt,
	})
}

func EventFromStruct(s *structpb.Struct) PostEvent {
	f := s.GetFields()
	return PostEvent{
		Type:       PostEventType(f["type"].GetStringValue()),
		PostId:     f["post_id"].GetStringValue(),
		ViewCount:  int64(f["view_count"].GetNumberValue()),
		ReadCount:  int64(f["read_count"].GetNumberValue()),
		OccurredAt: int64(f["occurred_at"].GetNumberValue()),
	}
}

func StatsToStruct(s DashboardStats) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"total_posts": s.TotalPosts,
		"total_views": s.TotalViews,
		"total_reads": s.TotalReads,
	})
}

func StatsFromStruct(s *structpb.Struct) DashboardStats {
	f := s.GetFields()
	return DashboardStats{
		TotalPosts: int64(f["total_posts"].GetNumberValue()),
		TotalViews: int64(f["total_views"].GetNumberValue()),
		TotalReads: int64(f["total_reads"].GetNumberValue()),
	}
}

func SEOToStruct(s SEOSuggestion) (*structpb.Struct, error) {
	keywords := make([]any, 0, len(s.Keywords))
	for _, k := range s.Keywords {
		keywords = append(keywords, k)
	}
	return structpb.NewStruct(map[string]any{
		"suggested_title":  s.SuggestedTitle,
		"meta_description": s.MetaDescription,
		"keywords":         keywords,
	})
}

func SEOFromStruct(s *structpb.Struct) SEOSuggestion {
	f := s.GetFields()
	res := SEOSuggestion{
		SuggestedTitle:  f["suggested_title"].GetStringValue(),
		MetaDescription: f["meta_description"].GetStringValue(),
	}
	for _, v := range f["keywords"].GetListValue().GetValues() {
		res.Keywords = append(res.Keywords, v.GetStringValue())
	}
	return res
}

// PostsToStruct wraps a post list as {"posts": [...]}.
func PostsToStruct(posts []Post) (*structpb.Struct, error) {
	list := make([]any, 0, len(posts))
	for _, p := range posts {
		s, err := PostToStruct(p)
		if err != nil {
			return nil, err
		}
		list = append(list, s.AsMap())
	}
	return structpb.NewStruct(map[string]any{"posts": list})
}

func PostsFromStruct(s *structpb.Struct) ([]Post, error) {
	values := s.GetFields()["posts"].GetListValue().GetValues()
	posts := make([]Post, 0, len(values))
	for _, v := range values {
		p, err := PostFromStruct(v.GetStructValue())
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, nil
}
