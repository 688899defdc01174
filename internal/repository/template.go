package repository

import (
	"context"
	"fmt"

	"gitee.com/flycash/sms-unified/internal/domain"
	"gitee.com/flycash/sms-unified/internal/errs"
	"github.com/ecodeclub/ekit/syncx"
)

// TemplateRepository 提供模板元数据存储的仓库接口
//
//go:generate mockgen -source=./template.go -destination=./mocks/template.mock.go -package=repomocks -typed TemplateRepository
type TemplateRepository interface {
	// Create 创建模板，模板编码重复时报错
	Create(ctx context.Context, template domain.Template) (domain.Template, error)

	// GetByCode 根据模板编码获取模板
	GetByCode(ctx context.Context, templateCode string) (domain.Template, error)

	// Update 整体覆盖更新模板
	Update(ctx context.Context, template domain.Template) (domain.Template, error)

	// List 列出全部模板，含已删除的逻辑记录
	List(ctx context.Context) ([]domain.Template, error)
}

// memoryTemplateRepository 内存实现。模板为纯值类型，
// 存取天然得到独立副本，调用方修改返回值不影响存储内容。
type memoryTemplateRepository struct {
	templates *syncx.Map[string, domain.Template]
}

// NewMemoryTemplateRepository 创建内存模板仓库
func NewMemoryTemplateRepository() TemplateRepository {
	return &memoryTemplateRepository{
		templates: &syncx.Map[string, domain.Template]{},
	}
}

func (m *memoryTemplateRepository) Create(_ context.Context, template domain.Template) (domain.Template, error) {
	if _, loaded := m.templates.LoadOrStore(template.TemplateCode, template); loaded {
		return domain.Template{}, fmt.Errorf("%w: templateCode=%s", errs.ErrTemplateDuplicate, template.TemplateCode)
	}
	return template, nil
}

func (m *memoryTemplateRepository) GetByCode(_ context.Context, templateCode string) (domain.Template, error) {
	template, ok := m.templates.Load(templateCode)
	if !ok {
		return domain.Template{}, fmt.Errorf("%w: templateCode=%s", errs.ErrTemplateNotFound, templateCode)
	}
	return template, nil
}

func (m *memoryTemplateRepository) Update(_ context.Context, template domain.Template) (domain.Template, error) {
	if _, ok := m.templates.Load(template.TemplateCode); !ok {
		return domain.Template{}, fmt.Errorf("%w: templateCode=%s", errs.ErrTemplateNotFound, template.TemplateCode)
	}
	m.templates.Store(template.TemplateCode, template)
	return template, nil
}

func (m *memoryTemplateRepository) List(_ context.Context) ([]domain.Template, error) {
	templates := make([]domain.Template, 0)
	m.templates.Range(func(_ string, template domain.Template) bool {
		templates = append(templates, template)
		return true
	})
	return templates, nil
}
