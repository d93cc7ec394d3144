package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"resumedesk/internal/api/middleware"
	"resumedesk/internal/errcode"
	"resumedesk/internal/session"
)

// pages 封装 POST/Redirect/GET 流程：提示写入会话，再跳转或渲染。
type pages struct {
	sessions *session.Manager
}

// redirect 追加一条提示后跳转。
func (p pages) redirect(c *gin.Context, location, kind string, messages ...string) {
	if len(messages) > 0 {
		middleware.Current(c).AddFlash(kind, messages...)
	}
	middleware.SaveSession(c, p.sessions)
	c.Redirect(http.StatusFound, location)
}

// redirectErr 把服务层错误转换为错误提示。
func (p pages) redirectErr(c *gin.Context, location string, err error, fallback string) {
	p.redirect(c, location, session.FlashError, errcode.MessagesOf(err, fallback)...)
}

// render 取出待展示的提示并渲染页面。
func (p pages) render(c *gin.Context, name, title string, content any) {
	s := middleware.Current(c)
	data := pageData{
		Title:   title,
		User:    s.Identity(),
		Flash:   s.PopFlash(),
		Content: content,
	}
	middleware.SaveSession(c, p.sessions)
	c.HTML(http.StatusOK, name, data)
}

// queryID 解析 ?resume_id=；缺失或非法时返回 0。
func queryID(c *gin.Context, key string) uint {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}

func internalError(c *gin.Context) {
	c.String(http.StatusInternalServerError, "An internal error occurred while generating the PDF.")
}
