package dbconn

import (
	"errors"
	"reflect"
)

type MockGormWrapper interface {
	GormWrapper
	Created() []interface{}
	Migrated() []interface{}
	Chain() *queryChain
	SetError(error) MockGormWrapper
	SetResult(interface{}) MockGormWrapper
}

type mockGormWrapper struct {
	error    error
	created  []interface{}
	migrated []interface{}
	chain    *queryChain
	result   interface{}
}

type queryChain struct {
	Where whereQuery
	Order interface{}
}

type whereQuery struct {
	Query interface{}
	Args  []interface{}
	Conds []interface{}
}

func Mock() MockGormWrapper {
	return &mockGormWrapper{}
}

func (w *mockGormWrapper) Created() []interface{} {
	return w.created
}

func (w *mockGormWrapper) Migrated() []interface{} {
	return w.migrated
}

func (w *mockGormWrapper) Chain() *queryChain {
	return w.chain
}

func (w *mockGormWrapper) SetError(e error) MockGormWrapper {
	w.error = e
	return w
}

func (w *mockGormWrapper) SetResult(r interface{}) MockGormWrapper {
	w.result = r
	return w
}

func (w *mockGormWrapper) Error() error {
	return w.error
}

func (w *mockGormWrapper) AutoMigrate(dst ...interface{}) error {
	if w.error != nil {
		return w.error
	}
	w.migrated = append(w.migrated, dst...)
	return nil
}

func (w *mockGormWrapper) Create(value interface{}) GormWrapper {
	if w.error == nil {
		w.created = append(w.created, value)
	}
	return w
}

func (w *mockGormWrapper) Where(query interface{}, args ...interface{}) GormWrapper {
	w.chain = &queryChain{
		Where: whereQuery{
			Query: query,
			Args:  args,
		},
	}
	return w
}

func (w *mockGormWrapper) Order(value interface{}) GormWrapper {
	if w.chain == nil {
		w.chain = &queryChain{}
	}
	w.chain.Order = value
	return w
}

func (w *mockGormWrapper) Find(dest interface{}, conds ...interface{}) GormWrapper {
	return w.selectInto(dest, conds)
}

func (w *mockGormWrapper) First(dest interface{}, conds ...interface{}) GormWrapper {
	return w.selectInto(dest, conds)
}

func (w *mockGormWrapper) selectInto(dest interface{}, conds []interface{}) GormWrapper {
	if w.chain == nil {
		w.error = errors.New("need to call query first")
		return w
	}

	w.chain.Where.Conds = conds
	if w.error != nil {
		return w
	}
	w.error = Replace(dest, w.result)
	return w
}

func Replace(i, v interface{}) error {
	val := reflect.ValueOf(i)
	if val.Kind() != reflect.Ptr {
		return errors.New("not a pointer")
	}

	val = val.Elem()

	newVal := reflect.Indirect(reflect.ValueOf(v))
	if !newVal.IsValid() {
		return errors.New("no result set")
	}

	if !newVal.Type().AssignableTo(val.Type()) {
		return errors.New("mismatched types")
	}

	val.Set(newVal)
	return nil
}
