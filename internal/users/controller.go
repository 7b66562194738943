package users

import (
	"io"
	nethttp "net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ggeorgiev0/backend-base/internal/shared/validate"
	"github.com/ggeorgiev0/backend-base/modules/kit/errx"
)

// Controller 用户资源的 HTTP 入口。
// 错误一律 c.Error 上报给全局异常边界，handler 自己不写错误响应。
type Controller struct {
	service *Service
	pipe    *validate.Pipe
}

func NewController(service *Service, pipe *validate.Pipe) *Controller {
	return &Controller{service: service, pipe: pipe}
}

// RegisterRoutes 注册用户路由。guard（如 JWT 守卫）只罩创建之外的路由，
// 注册入口保持开放。
func (ctl *Controller) RegisterRoutes(group *gin.RouterGroup, guard ...gin.HandlerFunc) {
	userGroup := group.Group("/users")
	userGroup.POST("", ctl.Create)

	protected := userGroup.Group("", guard...)
	protected.GET("", ctl.List)
	protected.GET("/:id", ctl.Get)
	protected.PUT("/:id", ctl.Update)
	protected.DELETE("/:id", ctl.Delete)
}

func (ctl *Controller) Create(c *gin.Context) {
	var dto CreateUserDTO
	if !ctl.bind(c, &dto) {
		return
	}

	view, err := ctl.service.Create(c.Request.Context(), dto)
	if err != nil {
		ctl.fail(c, err)
		return
	}
	c.JSON(nethttp.StatusCreated, view)
}

func (ctl *Controller) Get(c *gin.Context) {
	id, ok := ctl.userID(c)
	if !ok {
		return
	}

	view, err := ctl.service.Get(c.Request.Context(), id)
	if err != nil {
		ctl.fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, view)
}

func (ctl *Controller) List(c *gin.Context) {
	query := ListQuery{
		Page:     queryInt(c, "page"),
		PageSize: queryInt(c, "pageSize"),
	}

	result, err := ctl.service.List(c.Request.Context(), query)
	if err != nil {
		ctl.fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, result)
}

func (ctl *Controller) Update(c *gin.Context) {
	id, ok := ctl.userID(c)
	if !ok {
		return
	}

	var dto UpdateUserDTO
	if !ctl.bind(c, &dto) {
		return
	}

	view, err := ctl.service.Update(c.Request.Context(), id, dto)
	if err != nil {
		ctl.fail(c, err)
		return
	}
	c.JSON(nethttp.StatusOK, view)
}

func (ctl *Controller) Delete(c *gin.Context) {
	id, ok := ctl.userID(c)
	if !ok {
		return
	}

	if err := ctl.service.Delete(c.Request.Context(), id); err != nil {
		ctl.fail(c, err)
		return
	}
	c.Status(nethttp.StatusNoContent)
}

// bind 读请求体并走校验管道，失败时上报边界并终止。
func (ctl *Controller) bind(c *gin.Context, target any) bool {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		ctl.fail(c, err)
		return false
	}
	if err := ctl.pipe.Bind(raw, target); err != nil {
		ctl.fail(c, err)
		return false
	}
	return true
}

func (ctl *Controller) userID(c *gin.Context) (uint, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		ctl.fail(c, errx.NewValidation("Validation failed", map[string][]string{
			"id": {"id must be a positive integer"},
		}))
		return 0, false
	}
	return uint(id), true
}

func (ctl *Controller) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

func queryInt(c *gin.Context, key string) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return v
}
