package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/commentguard/commentguard/models"

	"gorm.io/gorm"
)

type CommentStore struct {
	db *gorm.DB
}

func NewCommentStore(db *gorm.DB) *CommentStore {
	return &CommentStore{db: db}
}

// Inserts the comment and bumps the parent content's counter.
func (s *CommentStore) Insert(ctx context.Context, c *models.Comment) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(c).Error; err != nil {
			return err
		}
		if c.ContentID == 0 {
			return nil
		}
		return tx.Model(&models.Content{}).
			Where("id = ?", c.ContentID).
			UpdateColumn("comments_num", gorm.Expr("comments_num + 1")).Error
	})
}

// Returns nil (and no error) if the comment doesn't exist.
func (s *CommentStore) Get(ctx context.Context, id uint) (*models.Comment, error) {
	var c models.Comment
	err := s.db.WithContext(ctx).First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CommentStore) SetStatus(ctx context.Context, id uint, status string) error {
	res := s.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("comment not found: %d", id)
	}
	return nil
}

// Deletes the comment and decrements the parent content's counter, never below zero. Returns false if the comment no longer exists.
func (s *CommentStore) Delete(ctx context.Context, id uint) (bool, error) {
	deleted := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Comment
		err := tx.First(&c, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		res := tx.Delete(&models.Comment{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		deleted = true
		if c.ContentID == 0 {
			return nil
		}
		return tx.Model(&models.Content{}).
			Where("id = ? AND comments_num > 0", c.ContentID).
			UpdateColumn("comments_num", gorm.Expr("comments_num - 1")).Error
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

func (s *CommentStore) CreateContent(ctx context.Context, c *models.Content) error {
	return s.db.WithContext(ctx).Create(c).Error
}

func (s *CommentStore) GetContent(ctx context.Context, id uint) (*models.Content, error) {
	var c models.Content
	err := s.db.WithContext(ctx).First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
