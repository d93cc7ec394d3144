package auth

// Identity 是已登录用户的身份，由会话中间件解析后显式传给各个服务。
type Identity struct {
	UserID uint   `json:"user_id"`
	Name   string `json:"user_name"`
}

// IsZero 表示匿名请求。
func (i Identity) IsZero() bool {
	return i.UserID == 0
}
