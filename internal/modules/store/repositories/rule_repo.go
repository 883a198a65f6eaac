package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/modules/chat/models"
)

const ruleOrder = "position ASC, created_at ASC"

type RuleRepo interface {
	ListAutoReplies(ctx context.Context, businessID uuid.UUID) ([]models.AutoReplyRule, error)
	CreateAutoReply(ctx context.Context, rule *models.AutoReplyRule) error
	UpdateAutoReply(ctx context.Context, rule *models.AutoReplyRule) error
	DeleteAutoReply(ctx context.Context, id uuid.UUID) error
	ImportAutoReplies(ctx context.Context, businessID uuid.UUID, rules []models.AutoReplyRule) ([]models.AutoReplyRule, error)

	ListAdvancedReplies(ctx context.Context, businessID uuid.UUID) ([]models.AdvancedReplyRule, error)
	CreateAdvancedReply(ctx context.Context, rule *models.AdvancedReplyRule) error
	UpdateAdvancedReply(ctx context.Context, rule *models.AdvancedReplyRule) error
	DeleteAdvancedReply(ctx context.Context, id uuid.UUID) error
	ImportAdvancedReplies(ctx context.Context, businessID uuid.UUID, rules []models.AdvancedReplyRule) ([]models.AdvancedReplyRule, error)
}

type ruleRepo struct {
	db *gorm.DB
}

func NewRuleRepo(db *gorm.DB) RuleRepo {
	return &ruleRepo{db: db}
}

// nextPosition returns one past the highest position of a business's rules
func nextPosition(tx *gorm.DB, model interface{}, businessID uuid.UUID) (int, error) {
	var highest int
	err := tx.Model(model).
		Where("business_id = ?", businessID).
		Select("COALESCE(MAX(position), 0)").
		Scan(&highest).Error
	return highest + 1, err
}

// ---- auto replies ----

func (r *ruleRepo) ListAutoReplies(ctx context.Context, businessID uuid.UUID) ([]models.AutoReplyRule, error) {
	rules := make([]models.AutoReplyRule, 0)
	err := r.db.WithContext(ctx).Where("business_id = ?", businessID).Order(ruleOrder).Find(&rules).Error
	return rules, err
}

func (r *ruleRepo) CreateAutoReply(ctx context.Context, rule *models.AutoReplyRule) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if rule.Position <= 0 {
			pos, err := nextPosition(tx, &models.AutoReplyRule{}, rule.BusinessID)
			if err != nil {
				return err
			}
			rule.Position = pos
		}
		return tx.Create(rule).Error
	})
}

func (r *ruleRepo) UpdateAutoReply(ctx context.Context, rule *models.AutoReplyRule) error {
	fields := []string{"keywords", "matching_type", "response"}
	if rule.Position > 0 {
		fields = append(fields, "position")
	}
	result := r.db.WithContext(ctx).Model(&models.AutoReplyRule{}).
		Where("id = ?", rule.ID).
		Select(fields).
		Updates(rule)
	if err := affected(result); err != nil {
		return err
	}
	return translate(r.db.WithContext(ctx).First(rule, "id = ?", rule.ID).Error)
}

func (r *ruleRepo) DeleteAutoReply(ctx context.Context, id uuid.UUID) error {
	return affected(r.db.WithContext(ctx).Delete(&models.AutoReplyRule{}, "id = ?", id))
}

// ImportAutoReplies appends rows in the given order after the existing rules
func (r *ruleRepo) ImportAutoReplies(ctx context.Context, businessID uuid.UUID, rules []models.AutoReplyRule) ([]models.AutoReplyRule, error) {
	created := make([]models.AutoReplyRule, len(rules))
	copy(created, rules)
	if len(created) == 0 {
		return created, nil
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pos, err := nextPosition(tx, &models.AutoReplyRule{}, businessID)
		if err != nil {
			return err
		}
		for i := range created {
			created[i].ID = uuid.Nil
			created[i].BusinessID = businessID
			created[i].Position = pos + i
		}
		return tx.CreateInBatches(&created, 100).Error
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ---- advanced replies ----

func (r *ruleRepo) ListAdvancedReplies(ctx context.Context, businessID uuid.UUID) ([]models.AdvancedReplyRule, error) {
	rules := make([]models.AdvancedReplyRule, 0)
	err := r.db.WithContext(ctx).Where("business_id = ?", businessID).Order(ruleOrder).Find(&rules).Error
	return rules, err
}

func (r *ruleRepo) CreateAdvancedReply(ctx context.Context, rule *models.AdvancedReplyRule) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if rule.Position <= 0 {
			pos, err := nextPosition(tx, &models.AdvancedReplyRule{}, rule.BusinessID)
			if err != nil {
				return err
			}
			rule.Position = pos
		}
		return tx.Create(rule).Error
	})
}

func (r *ruleRepo) UpdateAdvancedReply(ctx context.Context, rule *models.AdvancedReplyRule) error {
	fields := []string{"keywords", "matching_type", "response_type", "response", "button_text"}
	if rule.Position > 0 {
		fields = append(fields, "position")
	}
	result := r.db.WithContext(ctx).Model(&models.AdvancedReplyRule{}).
		Where("id = ?", rule.ID).
		Select(fields).
		Updates(rule)
	if err := affected(result); err != nil {
		return err
	}
	return translate(r.db.WithContext(ctx).First(rule, "id = ?", rule.ID).Error)
}

func (r *ruleRepo) DeleteAdvancedReply(ctx context.Context, id uuid.UUID) error {
	return affected(r.db.WithContext(ctx).Delete(&models.AdvancedReplyRule{}, "id = ?", id))
}

func (r *ruleRepo) ImportAdvancedReplies(ctx context.Context, businessID uuid.UUID, rules []models.AdvancedReplyRule) ([]models.AdvancedReplyRule, error) {
	created := make([]models.AdvancedReplyRule, len(rules))
	copy(created, rules)
	if len(created) == 0 {
		return created, nil
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		pos, err := nextPosition(tx, &models.AdvancedReplyRule{}, businessID)
		if err != nil {
			return err
		}
		for i := range created {
			created[i].ID = uuid.Nil
			created[i].BusinessID = businessID
			created[i].Position = pos + i
		}
		return tx.CreateInBatches(&created, 100).Error
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
