package service

import (
	"context"

	"storefront/internal/domain/service"

	"github.com/stretchr/testify/mock"
)

// MockEventPublisher is a mock type for the EventPublisher type
type MockEventPublisher struct {
	mock.Mock
}

type MockEventPublisher_Expecter struct {
	mock *mock.Mock
}

func (_m *MockEventPublisher) EXPECT() *MockEventPublisher_Expecter {
	return &MockEventPublisher_Expecter{mock: &_m.Mock}
}

// PublishOrderPlaced provides a mock function with given fields: ctx, event
func (_m *MockEventPublisher) PublishOrderPlaced(ctx context.Context, event *service.OrderPlacedEvent) error {
	ret := _m.Called(ctx, event)

	if len(ret) == 0 {
		panic("no return value specified for PublishOrderPlaced")
	}

	if rf, ok := ret.Get(0).(func(context.Context, *service.OrderPlacedEvent) error); ok {
		return rf(ctx, event)
	}

	return ret.Error(0)
}

// MockEventPublisher_PublishOrderPlaced_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'PublishOrderPlaced'
type MockEventPublisher_PublishOrderPlaced_Call struct {
	*mock.Call
}

// PublishOrderPlaced is a helper method to define mock.On call
func (_e *MockEventPublisher_Expecter) PublishOrderPlaced(ctx any, event any) *MockEventPublisher_PublishOrderPlaced_Call {
	return &MockEventPublisher_PublishOrderPlaced_Call{Call: _e.mock.On("PublishOrderPlaced", ctx, event)}
}

func (_c *MockEventPublisher_PublishOrderPlaced_Call) Run(run func(ctx context.Context, event *service.OrderPlacedEvent)) *MockEventPublisher_PublishOrderPlaced_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(*service.OrderPlacedEvent))
	})

	return _c
}

func (_c *MockEventPublisher_PublishOrderPlaced_Call) Return(_a0 error) *MockEventPublisher_PublishOrderPlaced_Call {
	_c.Call.Return(_a0)

	return _c
}

// Close provides a mock function with no fields
func (_m *MockEventPublisher) Close() error {
	ret := _m.Called()

	if len(ret) == 0 {
		panic("no return value specified for Close")
	}

	return ret.Error(0)
}

// MockEventPublisher_Close_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'Close'
type MockEventPublisher_Close_Call struct {
	*mock.Call
}

// Close is a helper method to define mock.On call
func (_e *MockEventPublisher_Expecter) Close() *MockEventPublisher_Close_Call {
	return &MockEventPublisher_Close_Call{Call: _e.mock.On("Close")}
}

func (_c *MockEventPublisher_Close_Call) Return(_a0 error) *MockEventPublisher_Close_Call {
	_c.Call.Return(_a0)

	return _c
}

// NewMockEventPublisher creates a new instance of MockEventPublisher. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockEventPublisher(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockEventPublisher {
	m := &MockEventPublisher{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
