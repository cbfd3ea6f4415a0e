package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"savesignal/internal/storage"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Put(ctx context.Context, key string, body []byte, opt storage.PutOptions) (storage.ObjectInfo, error) {
	args := m.Called(ctx, key, body, opt)
	return args.Get(0).(storage.ObjectInfo), args.Error(1)
}

func (m *MockStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
