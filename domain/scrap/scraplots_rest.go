package scrap

import (
	"assetflow/bizerror"
	"assetflow/session"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	PathScrapLots = "/v1/scrap-lots"
)

func RegisterScrapLotsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathScrapLots, middleWares...)
	g.POST("", handleRequestScrap)
	g.GET("", handleQueryScrapLots)
}

func handleRequestScrap(c *gin.Context) {
	request := ScrapRequest{}
	err := c.ShouldBindBodyWith(&request, binding.JSON)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	record, err := RequestScrapFunc(&request, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, record)
}

func handleQueryScrapLots(c *gin.Context) {
	query := ScrapLotQuery{}
	err := c.MustBindWith(&query, binding.Query)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	records, err := QueryScrapLotsFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}
