package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"quizverse/internal/domain"
	"quizverse/internal/validator"
)

// Record kinds kept in a RecordStore.
const (
	KindCategories    = "categories"
	KindSubcategories = "subcategories"
	KindQuizzes       = "quizzes"
)

// RecordStore is a key-value store of JSON documents grouped by kind.
// Get returns domain.ErrRecordNotFound for a missing id.
type RecordStore interface {
	Put(ctx context.Context, kind, id string, data []byte) error
	Get(ctx context.Context, kind, id string) ([]byte, error)
	Delete(ctx context.Context, kind, id string) error
	List(ctx context.Context, kind string) ([][]byte, error)
}

// Repository gives typed access to categories, subcategories and quizzes.
type Repository struct {
	store RecordStore
	newID func() string
}

func NewRepository(store RecordStore) *Repository {
	return &Repository{store: store, newID: uuid.NewString}
}

// Categories lists categories by display order, then name.
func (r *Repository) Categories(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	if err := listKind(ctx, r.store, KindCategories, &categories); err != nil {
		return nil, err
	}
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].Order != categories[j].Order {
			return categories[i].Order < categories[j].Order
		}
		return categories[i].Name < categories[j].Name
	})
	return categories, nil
}

// AddCategory validates and stores a category under a fresh id when none is set.
func (r *Repository) AddCategory(ctx context.Context, c domain.Category) (domain.Category, error) {
	if err := validator.Struct(c); err != nil {
		return domain.Category{}, err
	}
	if c.ID == "" {
		c.ID = r.newID()
	}
	if err := putJSON(ctx, r.store, KindCategories, c.ID, c); err != nil {
		return domain.Category{}, err
	}
	return c, nil
}

// RemoveCategory deletes a category; missing ids are not an error.
func (r *Repository) RemoveCategory(ctx context.Context, id string) error {
	return r.store.Delete(ctx, KindCategories, id)
}

// Subcategories lists subcategories, optionally only those of categoryID.
func (r *Repository) Subcategories(ctx context.Context, categoryID string) ([]domain.Subcategory, error) {
	var all []domain.Subcategory
	if err := listKind(ctx, r.store, KindSubcategories, &all); err != nil {
		return nil, err
	}
	subs := all[:0]
	for _, s := range all {
		if categoryID == "" || s.CategoryID == categoryID {
			subs = append(subs, s)
		}
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].Name < subs[j].Name })
	return subs, nil
}

// AddSubcategory stores a subcategory whose parent category must exist.
func (r *Repository) AddSubcategory(ctx context.Context, s domain.Subcategory) (domain.Subcategory, error) {
	if err := validator.Struct(s); err != nil {
		return domain.Subcategory{}, err
	}
	if _, err := r.store.Get(ctx, KindCategories, s.CategoryID); err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return domain.Subcategory{}, domain.ErrCategoryNotFound
		}
		return domain.Subcategory{}, err
	}
	if s.ID == "" {
		s.ID = r.newID()
	}
	if err := putJSON(ctx, r.store, KindSubcategories, s.ID, s); err != nil {
		return domain.Subcategory{}, err
	}
	return s, nil
}

func (r *Repository) RemoveSubcategory(ctx context.Context, id string) error {
	return r.store.Delete(ctx, KindSubcategories, id)
}

// Quizzes lists every quiz, published or not, ordered by title.
func (r *Repository) Quizzes(ctx context.Context) ([]domain.Quiz, error) {
	var quizzes []domain.Quiz
	if err := listKind(ctx, r.store, KindQuizzes, &quizzes); err != nil {
		return nil, err
	}
	sort.Slice(quizzes, func(i, j int) bool {
		if quizzes[i].Title != quizzes[j].Title {
			return quizzes[i].Title < quizzes[j].Title
		}
		return quizzes[i].ID < quizzes[j].ID
	})
	return quizzes, nil
}

// PublishedQuizzes lists quizzes visible in the catalog.
func (r *Repository) PublishedQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	all, err := r.Quizzes(ctx)
	if err != nil {
		return nil, err
	}
	published := all[:0]
	for _, q := range all {
		if q.Published {
			published = append(published, q)
		}
	}
	return published, nil
}

// LoadQuiz fetches one quiz by id.
func (r *Repository) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	data, err := r.store.Get(ctx, KindQuizzes, quizID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return domain.Quiz{}, domain.ErrQuizNotFound
		}
		return domain.Quiz{}, err
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(data, &quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("decode quiz %s: %w", quizID, err)
	}
	return quiz, nil
}

// SaveQuiz validates and adds or replaces a quiz.
func (r *Repository) SaveQuiz(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	if quiz.ID == "" {
		quiz.ID = r.newID()
	}
	if err := validator.Struct(quiz); err != nil {
		return domain.Quiz{}, err
	}
	if err := putJSON(ctx, r.store, KindQuizzes, quiz.ID, quiz); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

func (r *Repository) RemoveQuiz(ctx context.Context, id string) error {
	return r.store.Delete(ctx, KindQuizzes, id)
}

func putJSON(ctx context.Context, store RecordStore, kind, id string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s %s: %w", kind, id, err)
	}
	return store.Put(ctx, kind, id, data)
}

func listKind[T any](ctx context.Context, store RecordStore, kind string, out *[]T) error {
	rows, err := store.List(ctx, kind)
	if err != nil {
		return err
	}
	items := make([]T, 0, len(rows))
	for _, row := range rows {
		var item T
		if err := json.Unmarshal(row, &item); err != nil {
			return fmt.Errorf("decode %s: %w", kind, err)
		}
		items = append(items, item)
	}
	*out = items
	return nil
}
