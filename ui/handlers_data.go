package ui

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"mlstudio/domain/dataset"
	"mlstudio/internal/analysis"
	apperrors "mlstudio/internal/errors"
	"mlstudio/internal/testkit"
	"mlstudio/internal/transform"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"message": "ML Studio API is running",
		"trainer": s.training.Health(c.Request.Context()),
	})
}

func (s *Server) uploaded(c *gin.Context, state dataset.TableState, name string) {
	c.JSON(http.StatusOK, uploadResponse{
		Success:  true,
		Message:  fmt.Sprintf("Loaded %s: %d rows, %d columns", name, len(state.Rows), len(state.Columns)),
		Filename: name,
		Rows:     len(state.Rows),
		Columns:  state.ColumnNames(),
	})
}

// handleUpload accepts a multipart "file" field
func (s *Server) handleUpload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		s.respondError(c, apperrors.InvalidInput("No file uploaded"))
		return
	}
	defer file.Close()

	if header.Size > s.config.MaxUploadBytes {
		s.respondError(c, apperrors.InvalidInput(fmt.Sprintf("File size (%.1f MB) exceeds the %.0f MB limit",
			float64(header.Size)/(1<<20), float64(s.config.MaxUploadBytes)/(1<<20))))
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.config.MaxUploadBytes))
	if err != nil {
		s.respondError(c, apperrors.Wrap(err, "failed to read upload"))
		return
	}

	state, err := s.studio.LoadBytes(c.Request.Context(), header.Filename, data)
	if err != nil {
		s.respondError(c, apperrors.WithCode(apperrors.CodeInvalidInput, err))
		return
	}
	s.uploaded(c, state, header.Filename)
}

// handleUploadURL downloads a dataset over http(s)
func (s *Server) handleUploadURL(c *gin.Context) {
	var body struct {
		URL string `json:"url"`
	}
	if !s.bindJSON(c, &body) {
		return
	}

	u, err := url.Parse(strings.TrimSpace(body.URL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		s.respondError(c, apperrors.InvalidInput(fmt.Sprintf("invalid dataset URL %q", body.URL)))
		return
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" {
		s.respondError(c, apperrors.InvalidInput("dataset URL must end in a file name"))
		return
	}
	if err := s.checkFetchHost(c.Request.Context(), u.Hostname()); err != nil {
		s.respondError(c, apperrors.InvalidInput(err.Error()))
		return
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, u.String(), nil)
	if err != nil {
		s.respondError(c, apperrors.InvalidInput(err.Error()))
		return
	}
	resp, err := s.fetcher.Do(req)
	if err != nil {
		if errors.Is(err, errPrivateAddress) {
			s.respondError(c, apperrors.InvalidInput(errPrivateAddress.Error()))
			return
		}
		s.respondError(c, apperrors.ExternalServiceError("dataset download", err))
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.respondError(c, apperrors.ExternalServiceError("dataset download", fmt.Errorf("http %d", resp.StatusCode)))
		return
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.config.MaxUploadBytes+1))
	if err != nil {
		s.respondError(c, apperrors.ExternalServiceError("dataset download", err))
		return
	}
	if int64(len(data)) > s.config.MaxUploadBytes {
		s.respondError(c, apperrors.InvalidInput("downloaded file exceeds the upload limit"))
		return
	}

	state, err := s.studio.LoadBytes(c.Request.Context(), name, data)
	if err != nil {
		s.respondError(c, apperrors.WithCode(apperrors.CodeInvalidInput, err))
		return
	}
	s.uploaded(c, state, name)
}

// handleLoad accepts rows as JSON, keeping each object's key order
func (s *Server) handleLoad(c *gin.Context) {
	var body struct {
		Source string        `json:"source"`
		Rows   []dataset.Row `json:"rows"`
	}
	if !s.bindJSON(c, &body) {
		return
	}
	state := s.studio.Load(body.Rows, body.Source)
	s.uploaded(c, state, body.Source)
}

func (s *Server) handleDemos(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"datasets": testkit.Demos()})
}

func (s *Server) handleDemo(c *gin.Context) {
	state, err := s.studio.LoadDemo(c.Request.Context(), c.Param("name"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.uploaded(c, state, s.studio.Source())
}

func (s *Server) handleColumns(c *gin.Context) {
	state, err := s.studio.State()
	if err != nil {
		s.respondError(c, err)
		return
	}
	preview := s.studio.PreviewOf(state)
	c.JSON(http.StatusOK, gin.H{
		"columns":      toColumnViews(state.Columns),
		"data_preview": preview,
		"total_rows":   len(state.Rows),
	})
}

func (s *Server) handleData(c *gin.Context) {
	state, err := s.studio.State()
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":       state.Rows,
		"total_rows": len(state.Rows),
	})
}

func (s *Server) handleSummary(c *gin.Context) {
	summary, err := s.studio.Summary()
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// handleDistribution answers bins for numeric columns, counts otherwise
func (s *Server) handleDistribution(c *gin.Context) {
	bins, err := queryInt(c, "bins", 0)
	if err != nil {
		s.respondError(c, err)
		return
	}
	precision, err := queryInt(c, "precision", -1)
	if err != nil {
		s.respondError(c, err)
		return
	}
	top, err := queryInt(c, "top", 0)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if bins > analysis.MaxHistogramBins || precision > analysis.MaxLabelPrecision {
		s.respondError(c, apperrors.InvalidInput(fmt.Sprintf("bins must be at most %d and precision at most %d",
			analysis.MaxHistogramBins, analysis.MaxLabelPrecision)))
		return
	}

	dist, err := s.studio.Distribution(c.Param("column"), bins, precision, top)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dist)
}

func (s *Server) handleCorrelation(c *gin.Context) {
	var columns []string
	if raw := strings.TrimSpace(c.Query("columns")); raw != "" {
		for _, name := range strings.Split(raw, ",") {
			if name = strings.TrimSpace(name); name != "" {
				columns = append(columns, name)
			}
		}
	}

	matrix, err := s.studio.Correlation(columns)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, matrix)
}

func (s *Server) mutated(c *gin.Context, state dataset.TableState, message string) {
	preview, _ := s.studio.Preview(0)
	c.JSON(http.StatusOK, cleanResponse{
		Success:     true,
		Message:     message,
		Rows:        len(state.Rows),
		Columns:     toColumnViews(state.Columns),
		DataPreview: preview,
	})
}

func (s *Server) handleClean(c *gin.Context) {
	var req transform.CleanRequest
	if !s.bindJSON(c, &req) {
		return
	}
	state, err := s.studio.Clean(req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	msg := fmt.Sprintf("Applied %s", req.Action)
	if req.Column != "" {
		msg += " to " + req.Column
	}
	s.mutated(c, state, msg)
}

func (s *Server) handleFeature(c *gin.Context) {
	var body struct {
		Name    string `json:"name"`
		Formula string `json:"formula"`
	}
	if !s.bindJSON(c, &body) {
		return
	}
	state, err := s.studio.CreateFeature(body.Name, body.Formula)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.mutated(c, state, fmt.Sprintf("Created feature %s", body.Name))
}

func (s *Server) handleUndo(c *gin.Context) {
	state, undone, err := s.studio.Undo()
	if err != nil {
		s.respondError(c, err)
		return
	}
	if !undone {
		s.respondError(c, apperrors.InvalidInput("Nothing to undo"))
		return
	}
	s.mutated(c, state, "Undid last operation")
}

func (s *Server) handleReset(c *gin.Context) {
	state, err := s.studio.Reset()
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.mutated(c, state, "Reset to original dataset")
}

// queryInt parses an optional integer query parameter
func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.InvalidInput(fmt.Sprintf("query parameter %s must be an integer, got %q", key, raw))
	}
	return n, nil
}
