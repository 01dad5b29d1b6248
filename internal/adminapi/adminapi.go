// Package adminapi is the read-only HTTP surface for results: marks as
// JSON or CSV for teachers and monitoring scripts. It carries no
// authentication and binds to loopback by default; access control is
// left to the network, matching the daemon's deployment model.
package adminapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/dovydenkovas/learned-cat/internal/report"
	"github.com/dovydenkovas/learned-cat/internal/store"
)

// API serves the results endpoints.
type API struct {
	store *store.Store
	log   zerolog.Logger
}

// NewRouter builds the Gin engine with all routes registered.
func NewRouter(st *store.Store, mode string, log zerolog.Logger) *gin.Engine {
	gin.SetMode(mode)

	api := &API{
		store: st,
		log:   log.With().Str("component", "adminapi").Logger(),
	}

	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "OPTIONS"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		v1.GET("/results", api.listResults)
		v1.GET("/results/export", api.exportResults)
		v1.GET("/users/:username/results", api.userResults)
	}

	return router
}

func (a *API) listResults(c *gin.Context) {
	records, err := a.store.AllResults(c.Request.Context())
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": records})
}

func (a *API) exportResults(c *gin.Context) {
	records, err := a.store.AllResults(c.Request.Context())
	if err != nil {
		a.fail(c, err)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="marks.csv"`)
	if err := report.WriteCSV(c.Writer, records); err != nil {
		a.log.Error().Err(err).Msg("CSV export failed")
	}
}

func (a *API) userResults(c *gin.Context) {
	user := c.Param("username")
	records, err := a.store.ResultsFor(c.Request.Context(), user)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": records})
}

func (a *API) fail(c *gin.Context, err error) {
	a.log.Error().Err(err).Str("path", c.FullPath()).Msg("Store query failed")
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": gin.H{"code": "internal_error", "message": "internal server error"},
	})
}
