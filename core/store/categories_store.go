package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// Category holds an ordered subcategory list. Reports reference a
// subcategory by positional index, not by id; reordering shifts the meaning
// of stored indexes, so updates replace the whole list as given.
type Category struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Subcategories []string  `json:"subcategories"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type CategoriesStore interface {
	CreateCategory(ctx context.Context, c *Category) (int64, error)
	GetCategory(ctx context.Context, id int64) (*Category, error)
	ListCategories(ctx context.Context) ([]Category, error)
	UpdateCategory(ctx context.Context, c *Category) error
	DeleteCategory(ctx context.Context, id int64) error
}

type categoriesStore struct {
	db *sql.DB
}

func NewCategoriesStore(db *sql.DB) CategoriesStore {
	return &categoriesStore{db: db}
}

func (s *categoriesStore) CreateCategory(ctx context.Context, c *Category) (int64, error) {
	if strings.TrimSpace(c.Name) == "" {
		return 0, errors.New("category name required")
	}
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO categories(name, subcategories, created_at, updated_at) VALUES(?,?,?,?)`,
		strings.TrimSpace(c.Name), stringsToJSON(c.Subcategories), now, now)
	if err != nil {
		return 0, err
	}
	id, _ := res.LastInsertId()
	c.ID = id
	c.CreatedAt = now
	c.UpdatedAt = now
	return id, nil
}

func (s *categoriesStore) GetCategory(ctx context.Context, id int64) (*Category, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, subcategories, created_at, updated_at FROM categories WHERE id=?`, id)
	var c Category
	var subsRaw string
	if err := row.Scan(&c.ID, &c.Name, &subsRaw, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	c.Subcategories = jsonToStrings(subsRaw)
	return &c, nil
}

func (s *categoriesStore) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, subcategories, created_at, updated_at FROM categories ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Category
	for rows.Next() {
		var c Category
		var subsRaw string
		if err := rows.Scan(&c.ID, &c.Name, &subsRaw, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		c.Subcategories = jsonToStrings(subsRaw)
		res = append(res, c)
	}
	return res, rows.Err()
}

func (s *categoriesStore) UpdateCategory(ctx context.Context, c *Category) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE categories SET name=?, subcategories=?, updated_at=? WHERE id=?`,
		strings.TrimSpace(c.Name), stringsToJSON(c.Subcategories), now, c.ID)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	c.UpdatedAt = now
	return nil
}

func (s *categoriesStore) DeleteCategory(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id=?`, id)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}
