package mock

import (
	context "context"
	reflect "reflect"

	rewards "github.com/ellavondegurechaff/progression/internal/domain/rewards"
	snowflake "github.com/disgoorg/snowflake/v2"
	gomock "go.uber.org/mock/gomock"
)

// MockProfileSource is a mock of ProfileSource interface.
type MockProfileSource struct {
	ctrl     *gomock.Controller
	recorder *MockProfileSourceMockRecorder
	isgomock struct{}
}

// MockProfileSourceMockRecorder is the mock recorder for MockProfileSource.
type MockProfileSourceMockRecorder struct {
	mock *MockProfileSource
}

// NewMockProfileSource creates a new mock instance.
func NewMockProfileSource(ctrl *gomock.Controller) *MockProfileSource {
	mock := &MockProfileSource{ctrl: ctrl}
	mock.recorder = &MockProfileSourceMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockProfileSource) EXPECT() *MockProfileSourceMockRecorder {
	return m.recorder
}

// Profile mocks base method.
func (m *MockProfileSource) Profile(ctx context.Context, userID snowflake.ID) (rewards.Profile, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Profile", ctx, userID)
	ret0, _ := ret[0].(rewards.Profile)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Profile indicates an expected call of Profile.
func (mr *MockProfileSourceMockRecorder) Profile(ctx, userID any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Profile", reflect.TypeOf((*MockProfileSource)(nil).Profile), ctx, userID)
}

// MockListener is a mock of Listener interface.
type MockListener struct {
	ctrl     *gomock.Controller
	recorder *MockListenerMockRecorder
	isgomock struct{}
}

// MockListenerMockRecorder is the mock recorder for MockListener.
type MockListenerMockRecorder struct {
	mock *MockListener
}

// NewMockListener creates a new mock instance.
func NewMockListener(ctrl *gomock.Controller) *MockListener {
	mock := &MockListener{ctrl: ctrl}
	mock.recorder = &MockListenerMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockListener) EXPECT() *MockListenerMockRecorder {
	return m.recorder
}

// Granted mocks base method.
func (m *MockListener) Granted(ctx context.Context, g rewards.Grant) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Granted", ctx, g)
	ret0, _ := ret[0].(error)
	return ret0
}

// Granted indicates an expected call of Granted.
func (mr *MockListenerMockRecorder) Granted(ctx, g any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Granted", reflect.TypeOf((*MockListener)(nil).Granted), ctx, g)
}
