package option

import "gorm.io/gorm"

// QueryOption composes additional constraints onto a repository query.
type QueryOption interface {
	Apply(db *gorm.DB) *gorm.DB
}

type optionFunc func(db *gorm.DB) *gorm.DB

func (f optionFunc) Apply(db *gorm.DB) *gorm.DB { return f(db) }

// Where adds a raw condition with arguments.
func Where(query string, args ...any) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Where(query, args...)
	})
}

// In constrains a column to a set of values.
func In(column string, values any) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Where(column+" IN (?)", values)
	})
}

// Not excludes rows matching the condition.
func Not(query string, args ...any) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Not(query, args...)
	})
}

// OrderBy sets the result ordering.
func OrderBy(expr string) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Order(expr)
	})
}

// Limit caps the number of returned rows.
func Limit(n int) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Limit(n)
	})
}

// Preload eagerly loads an association.
func Preload(association string, args ...any) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Preload(association, args...)
	})
}
