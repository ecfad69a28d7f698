// internal/server/tools.go
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"

	"calorie-counter/internal/models"
)

var errInvalidParams = errors.New("invalid parameters")

type LookupFoodParams struct {
	Query string `json:"query" description:"Free-text food description, e.g. \"1 apple and 2 eggs\""`
}

type LogFoodParams struct {
	Query string `json:"query" description:"Free-text food description to look up and log under today's date"`
}

type GetLogParams struct {
	Date string `json:"date,omitempty" description:"Date key (M/D/YYYY) to return; all dates when empty"`
}

type RemoveFoodParams struct {
	Date  string `json:"date" description:"Date key (M/D/YYYY) the entry is logged under"`
	Index *int   `json:"index" description:"Zero-based position of the entry within the date"`
}

type toolHandler func(context.Context, *protocol.CallToolRequest) (*protocol.CallToolResult, error)

func (s *CalorieServer) tools() map[string]toolHandler {
	return map[string]toolHandler{
		"lookup_food": s.handleLookupFood,
		"log_food":    s.handleLogFood,
		"get_log":     s.handleGetLogTool,
		"remove_food": s.handleRemoveFood,
	}
}

func toolNames() []string {
	names := []string{"lookup_food", "log_food", "get_log", "remove_food"}
	sort.Strings(names)
	return names
}

// extractParams safely extracts parameters from the request arguments
func extractParams(req *protocol.CallToolRequest, target interface{}) error {
	jsonBytes, err := json.Marshal(req.Arguments)
	if err != nil {
		return fmt.Errorf("%w: %v", errInvalidParams, err)
	}

	if err := json.Unmarshal(jsonBytes, target); err != nil {
		return fmt.Errorf("%w: %v", errInvalidParams, err)
	}

	return nil
}

// handleLookupFood resolves a query without logging it
func (s *CalorieServer) handleLookupFood(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params LookupFoodParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	foods, err := s.widget.Lookup(ctx, params.Query)
	if err != nil {
		return nil, err
	}

	return s.createJSONResponse(map[string]interface{}{
		"foods":          foods,
		"total_calories": models.TotalCalories(entriesOf(foods)),
	})
}

// handleLogFood resolves a query and appends the results to today's log
func (s *CalorieServer) handleLogFood(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params LogFoodParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	if err := s.widget.Submit(ctx, params.Query); err != nil {
		return nil, err
	}

	st := s.widget.State()
	today := s.store.Entries(st.Today)
	return s.createJSONResponse(map[string]interface{}{
		"date":           st.Today,
		"logged":         entriesOf(st.Results),
		"entries":        today,
		"total_calories": models.TotalCalories(today),
	})
}

// handleGetLogTool returns one date or the whole log
func (s *CalorieServer) handleGetLogTool(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params GetLogParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	return s.createJSONResponse(s.summaries(params.Date))
}

// handleRemoveFood deletes one logged entry by position
func (s *CalorieServer) handleRemoveFood(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params RemoveFoodParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if params.Date == "" || params.Index == nil {
		return nil, fmt.Errorf("%w: date and index are required", errInvalidParams)
	}

	snap, err := s.store.DeleteAt(ctx, params.Date, *params.Index)
	if err != nil {
		return nil, err
	}

	return s.createJSONResponse(snap.Summaries())
}

func (s *CalorieServer) summaries(date string) []models.DaySummary {
	all := s.store.Snapshot().Summaries()
	if date == "" {
		return all
	}
	for _, d := range all {
		if d.Date == date {
			return []models.DaySummary{d}
		}
	}
	return []models.DaySummary{}
}

func entriesOf(records []models.FoodRecord) []models.FoodEntry {
	out := make([]models.FoodEntry, 0, len(records))
	for _, r := range records {
		out = append(out, r.Entry())
	}
	return out
}
