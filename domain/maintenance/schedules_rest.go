package maintenance

import (
	"assetflow/bizerror"
	"assetflow/session"
	"net/http"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	PathSchedules = "/v1/maintenance-schedules"
)

func RegisterSchedulesRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathSchedules, middleWares...)
	g.POST("", handleCreateSchedule)
	g.GET("", handleQuerySchedules)
	g.POST(":id/submission", handleSubmitSchedule)
}

func handleCreateSchedule(c *gin.Context) {
	creation := ScheduleCreation{}
	err := c.ShouldBindBodyWith(&creation, binding.JSON)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	record, err := CreateScheduleFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, record)
}

func handleQuerySchedules(c *gin.Context) {
	query := ScheduleQuery{}
	err := c.MustBindWith(&query, binding.Query)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	records, err := QuerySchedulesFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}

func handleSubmitSchedule(c *gin.Context) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	orgId, err := types.ParseID(c.Query("orgId"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	snapshot, err := SubmitScheduleFunc(id, orgId, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, snapshot)
}
