package dbconn

import "gorm.io/gorm"

type GormWrapper interface {
	Error() error
	AutoMigrate(...interface{}) error
	Create(interface{}) GormWrapper
	Where(interface{}, ...interface{}) GormWrapper
	Order(interface{}) GormWrapper
	Find(interface{}, ...interface{}) GormWrapper
	First(interface{}, ...interface{}) GormWrapper
}

type wrapper struct {
	db *gorm.DB
}

func Wrap(db *gorm.DB) GormWrapper {
	return &wrapper{
		db: db,
	}
}

func (w *wrapper) Error() error {
	return w.db.Error
}

func (w *wrapper) AutoMigrate(dst ...interface{}) error {
	return w.db.AutoMigrate(dst...)
}

// each call hands back a new wrapper, gorm chains are not safe to reuse
func (w *wrapper) Create(value interface{}) GormWrapper {
	return Wrap(w.db.Create(value))
}

func (w *wrapper) Where(query interface{}, args ...interface{}) GormWrapper {
	return Wrap(w.db.Where(query, args...))
}

func (w *wrapper) Order(value interface{}) GormWrapper {
	return Wrap(w.db.Order(value))
}

func (w *wrapper) Find(dest interface{}, conds ...interface{}) GormWrapper {
	return Wrap(w.db.Find(dest, conds...))
}

func (w *wrapper) First(dest interface{}, conds ...interface{}) GormWrapper {
	return Wrap(w.db.First(dest, conds...))
}
