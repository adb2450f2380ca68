package ui

import (
	"time"

	"mlstudio/domain/dataset"
	"mlstudio/domain/training"
)

// columnStats is the optional stats block of a column on the wire
type columnStats struct {
	Mean   *float64       `json:"mean,omitempty"`
	Median *float64       `json:"median,omitempty"`
	Std    *float64       `json:"std,omitempty"`
	Min    *float64       `json:"min,omitempty"`
	Max    *float64       `json:"max,omitempty"`
	Mode   *dataset.Value `json:"mode,omitempty"`
}

// columnView is a column profile in the frontend's shape
type columnView struct {
	Name    string       `json:"name"`
	Dtype   string       `json:"dtype"`
	Missing int          `json:"missing"`
	Unique  int          `json:"unique"`
	Stats   *columnStats `json:"stats,omitempty"`
}

func toColumnViews(columns []dataset.ColumnProfile) []columnView {
	views := make([]columnView, 0, len(columns))
	for _, col := range columns {
		v := columnView{
			Name:    col.Name,
			Dtype:   string(col.Kind),
			Missing: col.MissingCount,
			Unique:  col.UniqueCount,
		}
		if col.HasStats() {
			v.Stats = &columnStats{Mode: col.Mode}
			if n := col.Numeric; n != nil {
				v.Stats.Mean = training.Float(n.Mean)
				v.Stats.Median = training.Float(n.Median)
				v.Stats.Std = training.Float(n.Std)
				v.Stats.Min = training.Float(n.Min)
				v.Stats.Max = training.Float(n.Max)
			}
		}
		views = append(views, v)
	}
	return views
}

// cleanResponse is the answer to every table mutation
type cleanResponse struct {
	Success     bool          `json:"success"`
	Message     string        `json:"message"`
	Rows        int           `json:"rows"`
	Columns     []columnView  `json:"columns"`
	DataPreview []dataset.Row `json:"data_preview"`
}

// uploadResponse is the answer to the load endpoints
type uploadResponse struct {
	Success  bool     `json:"success"`
	Message  string   `json:"message"`
	Filename string   `json:"filename"`
	Rows     int      `json:"rows"`
	Columns  []string `json:"columns"`
}

// trainResponse is the relayed service response plus run bookkeeping
type trainResponse struct {
	training.Response
	RunID      string `json:"run_id"`
	DurationMS int64  `json:"duration_ms"`
}

func toTrainResponse(run training.Run) trainResponse {
	return trainResponse{
		Response:   run.Response,
		RunID:      run.ID.String(),
		DurationMS: run.Duration.Milliseconds(),
	}
}

// leaderboardEntry is one ranked row of the leaderboard
type leaderboardEntry struct {
	Rank       int                  `json:"rank"`
	RunID      string               `json:"run_id"`
	ModelType  training.ModelFamily `json:"model_type"`
	ModelName  string               `json:"model_name"`
	TaskType   training.TaskType    `json:"task_type"`
	Target     string               `json:"target"`
	Features   int                  `json:"features"`
	Score      *float64             `json:"score,omitempty"`
	Success    bool                 `json:"success"`
	Message    string               `json:"message"`
	Metrics    *training.Metrics    `json:"metrics,omitempty"`
	StartedAt  string               `json:"started_at"`
	DurationMS int64                `json:"duration_ms"`
}

func toLeaderboard(runs []training.Run) []leaderboardEntry {
	entries := make([]leaderboardEntry, 0, len(runs))
	for i, run := range runs {
		e := leaderboardEntry{
			Rank:       i + 1,
			RunID:      run.ID.String(),
			ModelType:  run.Request.ModelFamily,
			ModelName:  run.Request.ModelFamily.DisplayName(),
			TaskType:   run.Request.TaskType,
			Target:     run.Request.Target,
			Features:   len(run.Request.Features),
			Success:    run.Response.Success,
			Message:    run.Response.Message,
			Metrics:    run.Response.Metrics,
			StartedAt:  run.StartedAt.UTC().Format(time.RFC3339),
			DurationMS: run.Duration.Milliseconds(),
		}
		if score, ok := run.Score(); ok {
			e.Score = training.Float(score)
		}
		entries = append(entries, e)
	}
	return entries
}
