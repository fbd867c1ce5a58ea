// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

// Package mocks provides testify mocks for the auth interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/gatehouse/gatehouse/internal/auth"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

// MockCredentialRepository mocks auth.CredentialRepository.
type MockCredentialRepository struct {
	mock.Mock
}

// NewMockCredentialRepository creates a mock that asserts its
// expectations on test cleanup.
func NewMockCredentialRepository(t testingT) *MockCredentialRepository {
	m := &MockCredentialRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockCredentialRepository) Create(ctx context.Context, cred *auth.Credential) error {
	args := m.Called(ctx, cred)
	return args.Error(0)
}

func (m *MockCredentialRepository) GetByUsername(ctx context.Context, username string) (*auth.Credential, error) {
	args := m.Called(ctx, username)
	var cred *auth.Credential
	if v := args.Get(0); v != nil {
		cred = v.(*auth.Credential)
	}
	return cred, args.Error(1)
}

// MockTokenRepository mocks auth.TokenRepository.
type MockTokenRepository struct {
	mock.Mock
}

// NewMockTokenRepository creates a mock that asserts its expectations
// on test cleanup.
func NewMockTokenRepository(t testingT) *MockTokenRepository {
	m := &MockTokenRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockTokenRepository) Create(ctx context.Context, token *auth.Token) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockTokenRepository) Delete(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockTokenRepository) GetActive(ctx context.Context, token string, now time.Time) (*auth.Principal, error) {
	args := m.Called(ctx, token, now)
	var principal *auth.Principal
	if v := args.Get(0); v != nil {
		principal = v.(*auth.Principal)
	}
	return principal, args.Error(1)
}

func (m *MockTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

// MockPasswordHasher mocks auth.PasswordHasher.
type MockPasswordHasher struct {
	mock.Mock
}

// NewMockPasswordHasher creates a mock that asserts its expectations on
// test cleanup.
func NewMockPasswordHasher(t testingT) *MockPasswordHasher {
	m := &MockPasswordHasher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockPasswordHasher) Derive(password string) ([]byte, []byte, error) {
	args := m.Called(password)
	var key, salt []byte
	if v := args.Get(0); v != nil {
		key = v.([]byte)
	}
	if v := args.Get(1); v != nil {
		salt = v.([]byte)
	}
	return key, salt, args.Error(2)
}

func (m *MockPasswordHasher) Verify(password string, key, salt []byte) (bool, error) {
	args := m.Called(password, key, salt)
	return args.Bool(0), args.Error(1)
}

// Compile-time interface checks.
var (
	_ auth.CredentialRepository = (*MockCredentialRepository)(nil)
	_ auth.TokenRepository      = (*MockTokenRepository)(nil)
	_ auth.PasswordHasher       = (*MockPasswordHasher)(nil)
)
