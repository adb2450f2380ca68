package ui

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"mlstudio/app"
	"mlstudio/domain/core"
	"mlstudio/domain/dataset"
	apperrors "mlstudio/internal/errors"
	"mlstudio/internal/report"
)

func (s *Server) handleTrain(c *gin.Context) {
	var sel app.Selection
	if !s.bindJSON(c, &sel) {
		return
	}
	run, err := s.training.Train(c.Request.Context(), sel)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTrainResponse(run))
}

func (s *Server) handleCompare(c *gin.Context) {
	var body struct {
		app.Selection
		Families []string `json:"families"`
	}
	if !s.bindJSON(c, &body) {
		return
	}
	runs, err := s.training.Compare(c.Request.Context(), body.Selection, body.Families)
	if err != nil {
		s.respondError(c, err)
		return
	}

	results := make([]trainResponse, 0, len(runs))
	for _, run := range runs {
		results = append(results, toTrainResponse(run))
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "results": results})
}

func (s *Server) handleLeaderboard(c *gin.Context) {
	runs, err := s.training.Leaderboard(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": toLeaderboard(runs)})
}

func (s *Server) handleClearLeaderboard(c *gin.Context) {
	if err := s.training.ClearLeaderboard(c.Request.Context()); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Leaderboard cleared"})
}

func (s *Server) handleRun(c *gin.Context) {
	id, err := core.ParseRunID(c.Param("id"))
	if err != nil {
		s.respondError(c, apperrors.InvalidInput(err.Error()))
		return
	}
	run, err := s.training.Run(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

// handleReport renders the dataset and leaderboard report; format=md returns Markdown
func (s *Server) handleReport(c *gin.Context) {
	var (
		summary dataset.DatasetSummary
		columns []dataset.ColumnProfile
	)
	if state, err := s.studio.State(); err == nil {
		columns = state.Columns
		summary, _ = s.studio.Summary()
	}

	runs, err := s.training.Leaderboard(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}

	md := report.Build(summary, columns, runs)
	if strings.EqualFold(c.Query("format"), "md") {
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(md))
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", report.HTML(md))
}
