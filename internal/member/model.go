package member

import (
	"time"
)

// Member 定义了成员在SQLite数据库中的持久化模型。
// Code 是成员的登录/展示用短代码，在全体成员中唯一。
type Member struct {
	// Code 是成员的主键，由管理员在创建时指定，例如 "A001"。
	Code string `gorm:"primarykey;type:varchar(10)"`

	// Name 是成员的显示名。
	Name string `gorm:"not null;type:varchar(20)"`

	// IsAdmin 标记管理员账号。管理员不参与考勤计分和排行榜。
	IsAdmin bool `gorm:"not null;default:false"`

	// 由GORM自动管理。成员删除是硬删除并级联清除其全部记录，
	// 因此不使用DeletedAt软删除列。
	CreatedAt time.Time
	UpdatedAt time.Time
}
