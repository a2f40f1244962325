package member

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// CreateMemberRequestBody 定义了管理员创建成员时请求体的JSON结构
type CreateMemberRequestBody struct {
	Code    string `json:"code" binding:"required"`
	Name    string `json:"name" binding:"required"`
	IsAdmin bool   `json:"isAdmin"`
}

// MemberResponse 是成员信息的API响应模型
type MemberResponse struct {
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
}

func formatMember(m Member) MemberResponse {
	return MemberResponse{
		Code:      m.Code,
		Name:      m.Name,
		IsAdmin:   m.IsAdmin,
		CreatedAt: m.CreatedAt,
	}
}

// ListMembers 返回全部成员列表（含管理员标记，由前端自行过滤）
func ListMembersHandler(c *gin.Context) {
	members, err := ListMembers(true)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取成员列表失败"})
		return
	}

	responses := make([]MemberResponse, 0, len(members))
	for _, m := range members {
		responses = append(responses, formatMember(m))
	}
	c.JSON(http.StatusOK, responses)
}

// GetMemberHandler 按Code查询单个成员的展示信息
func GetMemberHandler(c *gin.Context) {
	code := c.Param("code")
	m, err := GetMemberByCode(code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "数据库查询失败"})
		return
	}
	if m == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "找不到该成员"})
		return
	}
	c.JSON(http.StatusOK, formatMember(*m))
}

// CreateMemberHandler 处理管理员提交的新成员
func CreateMemberHandler(c *gin.Context) {
	var body CreateMemberRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	newMember, err := CreateMember(body.Code, body.Name, body.IsAdmin)
	if err != nil {
		if errors.Is(err, ErrCodeExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "已存在相同代码的成员"})
			return
		}
		if errors.Is(err, ErrInvalidMember) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "创建成员失败"})
		return
	}

	c.JSON(http.StatusCreated, formatMember(*newMember))
}

// DeleteMemberHandler 删除成员并级联清除其全部记录。
// 级联中的部分失败不会回滚已完成的步骤，而是在响应中逐项上报。
func DeleteMemberHandler(c *gin.Context) {
	code := c.Param("code")
	report, err := DeleteMember(code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "删除成员失败: " + err.Error()})
		return
	}
	if report == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "找不到该成员"})
		return
	}
	c.JSON(http.StatusOK, report)
}
