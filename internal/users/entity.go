package users

import "time"

type User struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement;comment:用户ID" json:"id"`
	Email     string    `gorm:"column:email;type:varchar(255);uniqueIndex:uniq_email;not null;comment:邮箱" json:"email"`
	Name      string    `gorm:"column:name;type:varchar(100);not null;comment:显示名" json:"name"`
	Password  string    `gorm:"column:password;type:varchar(255);not null;comment:密码哈希" json:"-"`
	Salt      string    `gorm:"column:salt;type:varchar(32);comment:盐" json:"-"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;comment:创建时间" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime;comment:更新时间" json:"updatedAt"`
}

func (User) TableName() string {
	return "users" // 指定表名
}
