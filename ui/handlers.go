package ui

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"goanalytics/app"
	"goanalytics/domain/analysis"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleMethods(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"methods": s.workbench.Methods()})
}

func (s *Server) handleDatasets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"datasets": s.workbench.Datasets()})
}

func (s *Server) handleRefreshCatalog(c *gin.Context) {
	if err := s.workbench.Refresh(c.Request.Context()); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"methods":  s.workbench.Methods(),
		"datasets": s.workbench.Datasets(),
	})
}

func (s *Server) handleSession(c *gin.Context) {
	c.JSON(http.StatusOK, s.workbench.Session().Snapshot())
}

type selectMethodRequest struct {
	MethodID string `json:"method_id"`
}

func (s *Server) handleSelectMethod(c *gin.Context) {
	var req selectMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, "invalid request body")
		return
	}
	if err := s.workbench.Session().SelectMethod(req.MethodID); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s.workbench.Session().Snapshot())
}

type selectDatasetRequest struct {
	DatasetName string `json:"dataset_name"`
}

func (s *Server) handleSelectDataset(c *gin.Context) {
	var req selectDatasetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, "invalid request body")
		return
	}
	if err := s.workbench.Session().SelectDataset(req.DatasetName); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s.workbench.Session().Snapshot())
}

type setParameterRequest struct {
	Value analysis.ParamValue `json:"value"`
}

func (s *Server) handleSetParameter(c *gin.Context) {
	var req setParameterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, "value must be an integer or a string")
		return
	}
	if req.Value.IsZero() {
		s.badRequest(c, "value is required")
		return
	}
	if err := s.workbench.Session().SetParameter(c.Param("name"), req.Value); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s.workbench.Session().Snapshot())
}

func (s *Server) handleRun(c *gin.Context) {
	running, err := s.workbench.Session().Run()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, running)
}

func (s *Server) handleCancel(c *gin.Context) {
	cancelled := s.workbench.Session().Cancel()
	c.JSON(http.StatusOK, gin.H{
		"cancelled": cancelled,
		"session":   s.workbench.Session().Snapshot(),
	})
}

func (s *Server) handleLastSettled(c *gin.Context) {
	last, ok := s.workbench.Session().LastSettled()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no analysis has settled yet"})
		return
	}
	c.JSON(http.StatusOK, last)
}

func (s *Server) handleReport(c *gin.Context) {
	format := app.ReportFormat(c.DefaultQuery("format", string(app.ReportMarkdown)))
	if format != app.ReportMarkdown && format != app.ReportHTML {
		s.badRequest(c, "format must be markdown or html")
		return
	}

	report, err := s.workbench.Report(format)
	if err != nil {
		s.fail(c, err)
		return
	}

	contentType := "text/markdown; charset=utf-8"
	if format == app.ReportHTML {
		contentType = "text/html; charset=utf-8"
	}
	c.Data(http.StatusOK, contentType, []byte(report))
}

func (s *Server) handleHistory(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"entries": s.workbench.Session().History()})
}

func (s *Server) handleClearHistory(c *gin.Context) {
	s.workbench.Session().ClearHistory()
	c.Status(http.StatusNoContent)
}

func (s *Server) handlePermission(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"state": s.permission.State()})
}

type permissionRequest struct {
	Granted *bool `json:"granted"`
}

func (s *Server) handleSetPermission(c *gin.Context) {
	var req permissionRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		s.badRequest(c, "invalid request body")
		return
	}
	if req.Granted == nil {
		s.permission.Reset()
	} else {
		s.permission.Set(*req.Granted)
	}
	c.JSON(http.StatusOK, gin.H{"state": s.permission.State()})
}
