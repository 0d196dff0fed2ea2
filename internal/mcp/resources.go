// ABOUTME: MCP resource implementations for fitlog.
// ABOUTME: Provides fitlog://recent, fitlog://today, and fitlog://home resources.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/harperreed/fitlog/internal/models"
	"github.com/harperreed/fitlog/internal/storage"
	"github.com/harperreed/fitlog/internal/tracker"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const recentLimit = 10

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "fitlog://recent",
		Name:        "Recent Entries",
		Description: "Last 10 meals and last 10 workouts",
		MIMEType:    "application/json",
	}, s.handleRecentResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "fitlog://today",
		Name:        "Today's Log",
		Description: "Meals and workouts logged for today, with today's goals",
		MIMEType:    "application/json",
	}, s.handleTodayResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "fitlog://home",
		Name:        "Home",
		Description: "Today's workout goal and the current diet goal",
		MIMEType:    "application/json",
	}, s.handleHomeResource)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

func views(recs []*models.Record, limit int) []entryView {
	out := []entryView{}
	for _, rec := range recs {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, viewOf(rec))
	}
	return out
}

// Resource handlers

func (s *Server) handleRecentResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	newest := tracker.ListOptions{SortBy: storage.DefaultSortField, Order: string(storage.SortDesc)}
	meals := s.tracker.Entries(ctx, s.owner, models.KindDietEntry, newest)
	workouts := s.tracker.Entries(ctx, s.owner, models.KindWorkoutEntry, newest)

	return jsonResource("fitlog://recent", map[string]any{
		"meals":    views(meals, recentLimit),
		"workouts": views(workouts, recentLimit),
	})
}

func (s *Server) handleTodayResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	base := storage.DefaultOccurredAt(s.tracker.Now())
	start := time.Date(base.Year(), base.Month(), base.Day(), 0, 0, 0, 0, time.UTC)
	today := start.Format("2006-01-02")

	day := tracker.ListOptions{
		SortBy: "occurred_at",
		Order:  string(storage.SortAsc),
		From:   start,
		To:     start.AddDate(0, 0, 1),
	}
	meals := views(s.tracker.Entries(ctx, s.owner, models.KindDietEntry, day), 0)
	workouts := views(s.tracker.Entries(ctx, s.owner, models.KindWorkoutEntry, day), 0)

	return jsonResource("fitlog://today", map[string]any{
		"date":     today,
		"goals":    s.goals(ctx),
		"meals":    meals,
		"workouts": workouts,
	})
}

func (s *Server) handleHomeResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	return jsonResource("fitlog://home", s.tracker.Home(ctx, s.owner))
}
