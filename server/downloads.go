package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/openfetch/bankdl/direct"
	"github.com/openfetch/bankdl/institution"
	"github.com/openfetch/bankdl/session"
)

type downloadRequest struct {
	Institution string `json:"institution"`
	Days        int    `json:"days"`
}

type configRequest struct {
	Institutions []string `json:"institutions"`
	DownloadsDir string   `json:"downloads_dir"`
}

func (s *server) downloadStatement(c *gin.Context) {
	var req downloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !institution.ValidIdentity(req.Institution) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid institution identity"})
		return
	}
	// one download at a time: the OFX endpoints throttle overlapping sessions
	if !s.downloading.CAS(false, true) {
		c.JSON(http.StatusConflict, gin.H{"error": "A download is already running"})
		return
	}
	defer s.downloading.Store(false)

	result := s.download(direct.Options{
		Institution: req.Institution,
		Days:        req.Days,
		OutputDir:   s.opts.OutputDir,
		Creds:       s.opts.Creds,
	})
	s.lastResults.SetDefault(req.Institution, result)

	status := http.StatusOK
	if !result.Success {
		status = http.StatusBadGateway
	}
	c.JSON(status, result)
}

func (s *server) synthesizeConfig(c *gin.Context) {
	var req configRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	downloadsDir := req.DownloadsDir
	if downloadsDir == "" {
		downloadsDir = s.opts.DownloadsDir
	}

	result, err := s.synthesize(session.Options{
		Institutions: req.Institutions,
		DownloadsDir: downloadsDir,
		Creds:        s.opts.Creds,
		Logger:       s.logger,
	})
	status := http.StatusOK
	if err != nil {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, result)
}

func (s *server) lastDownload(c *gin.Context) {
	name := c.Param("institution")
	result, found := s.lastResults.Get(name)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "No download recorded for institution: " + name})
		return
	}
	c.JSON(http.StatusOK, result)
}
