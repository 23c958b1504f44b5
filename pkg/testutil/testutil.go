// Package testutil provides shared helpers for command and sync tests: an
// isolated environment rooted in a temp directory and a scriptable platform
// handler.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/slapcli/slap/pkg/commands"
	"github.com/slapcli/slap/pkg/config"
	"github.com/slapcli/slap/pkg/platform"
)

// TestEnvironment wraps a commands.Env rooted in a temp data dir with a
// MockHandler standing in for the OS.
type TestEnvironment struct {
	Env     *commands.Env
	Handler *MockHandler
	DataDir string
	// AppPath is an existing fake application bundle path usable as a
	// registration target.
	AppPath string
}

// NewTestEnvironment builds an isolated environment. Everything lives under
// t.TempDir() and is cleaned up automatically.
func NewTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()

	dataDir := t.TempDir()
	appPath := filepath.Join(t.TempDir(), "Editor.app")
	if err := os.MkdirAll(appPath, 0755); err != nil {
		t.Fatalf("failed to create fake app: %v", err)
	}

	cfg := &config.Config{
		DataDir:       dataDir,
		BackupEnabled: true,
		MaxBackups:    3,
	}
	handler := NewMockHandler()

	env, err := commands.NewEnv(cfg, handler)
	if err != nil {
		t.Fatalf("failed to build env: %v", err)
	}

	return &TestEnvironment{
		Env:     env,
		Handler: handler,
		DataDir: dataDir,
		AppPath: appPath,
	}
}

// ReadFile returns the raw bytes of a file under the data dir, or nil when
// it does not exist. Used to assert the dry-run byte-for-byte invariant.
func (e *TestEnvironment) ReadFile(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(e.DataDir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		t.Fatalf("failed to read %s: %v", name, err)
	}
	return data
}

// SetCall records one SetDefault invocation on the mock.
type SetCall struct {
	Extension string
	AppPath   string
	DryRun    bool
}

// MockHandler is a scriptable platform.Handler. Defaults succeed; individual
// extensions can be made to fail, and the OS-side current default can be
// seeded per extension.
type MockHandler struct {
	// Current maps extension -> the path the fake OS reports as default.
	Current map[string]string
	// FailSet maps extension -> error returned from SetDefault.
	FailSet map[string]error
	// SetCalls records every SetDefault invocation, including dry runs.
	SetCalls []SetCall
	// RemoveCalls records every RemoveDefault invocation.
	RemoveCalls []string
}

// NewMockHandler returns a mock with empty OS state.
func NewMockHandler() *MockHandler {
	return &MockHandler{
		Current: make(map[string]string),
		FailSet: make(map[string]error),
	}
}

func (m *MockHandler) Platform() platform.Platform { return "mock" }

func (m *MockHandler) SetDefault(extension, appPath string, dryRun bool) (*platform.SetResult, error) {
	m.SetCalls = append(m.SetCalls, SetCall{Extension: extension, AppPath: appPath, DryRun: dryRun})

	if err, ok := m.FailSet[extension]; ok {
		return nil, err
	}

	result := &platform.SetResult{
		Extension:       extension,
		ApplicationPath: appPath,
		PreviousDefault: m.Current[extension],
		DryRun:          dryRun,
	}
	if !dryRun {
		m.Current[extension] = appPath
	}
	return result, nil
}

func (m *MockHandler) RemoveDefault(extension string) error {
	m.RemoveCalls = append(m.RemoveCalls, extension)
	delete(m.Current, extension)
	return nil
}

func (m *MockHandler) CurrentDefault(extension string) (string, error) {
	return m.Current[extension], nil
}

func (m *MockHandler) VerifyApplication(path string) (*platform.AppInfo, error) {
	return &platform.AppInfo{Path: path, Name: filepath.Base(path)}, nil
}
