package models

import (
	"time"
)

const (
	CommentStatusApproved = "approved"
	CommentStatusWaiting  = "waiting"
	CommentStatusHidden   = "hidden"

	CommentTypeComment = "comment"
)

// A post or page which comments attach to. CommentsNum is a denormalized count of its comments.
type Content struct {
	ID          uint `gorm:"primarykey"`
	CreatedAt   time.Time
	Title       string
	CommentsNum int64 `gorm:"not null;default:0"`
}

type Comment struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	ContentID uint   `gorm:"index"`
	Author    string `gorm:"not null"`
	Mail      string
	URL       string
	IP        string `gorm:"index"`
	Agent     string
	Text      string `gorm:"not null"`
	Type      string `gorm:"not null;default:comment"`
	Status    string `gorm:"index;not null;default:approved"`
	Parent    uint
}

// Named moderation option. Values are flat strings; lists are newline-delimited.
type PluginOption struct {
	Name      string `gorm:"primarykey"`
	Value     string
	UpdatedAt time.Time
}

func (PluginOption) TableName() string {
	return "plugin_options"
}
