package implementation

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"ai-chatbot-be/internal/entity"
	"ai-chatbot-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// entityMapper converts between a domain entity E and its table model M.
type entityMapper[E, M any] interface {
	ToEntity(m *M) *E
	ToModel(e *E) *M
	ToEntities(ms []*M) []*E
}

// crud holds the queries every table repository shares. Table repositories
// embed it and expose the subset their contract names.
type crud[E, M any] struct {
	db     *gorm.DB
	mapper entityMapper[E, M]
}

func (r crud[E, M]) query(ctx context.Context, specs []specification.Specification) *gorm.DB {
	q := r.db.WithContext(ctx).Model(new(M))
	for _, spec := range specs {
		q = spec.Apply(q)
	}
	return q
}

// Create inserts e and copies back generated columns (id, timestamps).
func (r crud[E, M]) Create(ctx context.Context, e *E) error {
	m := r.mapper.ToModel(e)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*e = *r.mapper.ToEntity(m)
	return nil
}

func (r crud[E, M]) Update(ctx context.Context, e *E) error {
	m := r.mapper.ToModel(e)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*e = *r.mapper.ToEntity(m)
	return nil
}

func (r crud[E, M]) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(new(M)).Error
}

// FindOne returns nil, nil when nothing matches.
func (r crud[E, M]) FindOne(ctx context.Context, specs ...specification.Specification) (*E, error) {
	m := new(M)
	if err := r.query(ctx, specs).First(m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(m), nil
}

func (r crud[E, M]) FindAll(ctx context.Context, specs ...specification.Specification) ([]*E, error) {
	var models []*M
	if err := r.query(ctx, specs).Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r crud[E, M]) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var n int64
	err := r.query(ctx, specs).Count(&n).Error
	return n, err
}

// countBy groups matching rows by column, largest group first. Only columns
// listed in allowed are accepted since the name is spliced into SQL.
func (r crud[E, M]) countBy(ctx context.Context, column string, allowed []string, specs []specification.Specification) ([]entity.GroupCount, error) {
	if !slices.Contains(allowed, column) {
		return nil, fmt.Errorf("cannot group by %q", column)
	}

	var rows []entity.GroupCount
	err := r.query(ctx, specs).
		Select(column + " AS key, COUNT(*) AS count").
		Group(column).
		Order("count DESC").
		Scan(&rows).Error
	return rows, err
}
