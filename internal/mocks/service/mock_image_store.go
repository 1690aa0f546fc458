// Package service holds testify mocks of the domain service interfaces in
// mockery's expecter style.
package service

import (
	"context"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/service"

	"github.com/stretchr/testify/mock"
)

// MockImageStore is a mock type for the ImageStore type
type MockImageStore struct {
	mock.Mock
}

type MockImageStore_Expecter struct {
	mock *mock.Mock
}

func (_m *MockImageStore) EXPECT() *MockImageStore_Expecter {
	return &MockImageStore_Expecter{mock: &_m.Mock}
}

// Upload provides a mock function with given fields: ctx, upload
func (_m *MockImageStore) Upload(ctx context.Context, upload service.ImageUpload) (entity.ProductImage, error) {
	ret := _m.Called(ctx, upload)

	if len(ret) == 0 {
		panic("no return value specified for Upload")
	}

	if rf, ok := ret.Get(0).(func(context.Context, service.ImageUpload) (entity.ProductImage, error)); ok {
		return rf(ctx, upload)
	}

	r0, _ := ret.Get(0).(entity.ProductImage)

	return r0, ret.Error(1)
}

// MockImageStore_Upload_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'Upload'
type MockImageStore_Upload_Call struct {
	*mock.Call
}

// Upload is a helper method to define mock.On call
func (_e *MockImageStore_Expecter) Upload(ctx any, upload any) *MockImageStore_Upload_Call {
	return &MockImageStore_Upload_Call{Call: _e.mock.On("Upload", ctx, upload)}
}

func (_c *MockImageStore_Upload_Call) Run(run func(ctx context.Context, upload service.ImageUpload)) *MockImageStore_Upload_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(service.ImageUpload))
	})

	return _c
}

func (_c *MockImageStore_Upload_Call) Return(_a0 entity.ProductImage, _a1 error) *MockImageStore_Upload_Call {
	_c.Call.Return(_a0, _a1)

	return _c
}

func (_c *MockImageStore_Upload_Call) RunAndReturn(run func(context.Context, service.ImageUpload) (entity.ProductImage, error)) *MockImageStore_Upload_Call {
	_c.Call.Return(run)

	return _c
}

// Delete provides a mock function with given fields: ctx, storageID
func (_m *MockImageStore) Delete(ctx context.Context, storageID string) error {
	ret := _m.Called(ctx, storageID)

	if len(ret) == 0 {
		panic("no return value specified for Delete")
	}

	if rf, ok := ret.Get(0).(func(context.Context, string) error); ok {
		return rf(ctx, storageID)
	}

	return ret.Error(0)
}

// MockImageStore_Delete_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'Delete'
type MockImageStore_Delete_Call struct {
	*mock.Call
}

// Delete is a helper method to define mock.On call
func (_e *MockImageStore_Expecter) Delete(ctx any, storageID any) *MockImageStore_Delete_Call {
	return &MockImageStore_Delete_Call{Call: _e.mock.On("Delete", ctx, storageID)}
}

func (_c *MockImageStore_Delete_Call) Return(_a0 error) *MockImageStore_Delete_Call {
	_c.Call.Return(_a0)

	return _c
}

func (_c *MockImageStore_Delete_Call) RunAndReturn(run func(context.Context, string) error) *MockImageStore_Delete_Call {
	_c.Call.Return(run)

	return _c
}

// NewMockImageStore creates a new instance of MockImageStore. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockImageStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockImageStore {
	m := &MockImageStore{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
