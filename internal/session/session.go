package session

import (
	"time"

	"github.com/google/uuid"

	"resumedesk/internal/auth"
)

// Flash 类型。
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

// Session 是一次请求内的会话视图；修改后需经 Manager.Save 持久化。
type Session struct {
	id       string
	data     Data
	dirty    bool
	fresh    bool
	cleared  bool
	issuedAt time.Time
}

// New 返回一个尚未持久化的匿名会话。
func New() *Session {
	return &Session{id: uuid.NewString(), fresh: true}
}

func (s *Session) ID() string { return s.id }

// Identity 返回已登录用户；匿名会话返回零值。
func (s *Session) Identity() auth.Identity {
	return auth.Identity{UserID: s.data.UserID, Name: s.data.UserName}
}

func (s *Session) SignedIn() bool { return s.data.UserID != 0 }

func (s *Session) SetIdentity(id auth.Identity) {
	s.data.UserID = id.UserID
	s.data.UserName = id.Name
	s.dirty = true
}

// AddFlash 追加提示；同类型的消息合并，不同类型则覆盖。
func (s *Session) AddFlash(kind string, messages ...string) {
	if len(messages) == 0 {
		return
	}
	if s.data.Flash != nil && s.data.Flash.Type == kind {
		s.data.Flash.Messages = append(s.data.Flash.Messages, messages...)
	} else {
		s.data.Flash = &Flash{Type: kind, Messages: append([]string(nil), messages...)}
	}
	s.dirty = true
}

// PopFlash 取出并清除待展示的提示。
func (s *Session) PopFlash() *Flash {
	f := s.data.Flash
	if f == nil {
		return nil
	}
	s.data.Flash = nil
	s.dirty = true
	return f
}

func (s *Session) empty() bool {
	return s.data.UserID == 0 && s.data.Flash == nil
}
