package service

import (
	"github.com/ajaykrishnavemula/Career-Hub-API/internal/port"
)

// BackendSelector は起動時の接続結果に基づいて応答するバックエンドを一度だけ決定します。
// 決定後は変更されないため、並行に参照しても安全です。
type BackendSelector struct {
	active port.SearchBackend
}

// NewBackendSelector は connected が true の場合 primary を、そうでなければ fallback を選びます。
func NewBackendSelector(connected bool, primary, fallback port.SearchBackend) *BackendSelector {
	if connected && primary != nil {
		return &BackendSelector{active: primary}
	}
	return &BackendSelector{active: fallback}
}

// Active returns the backend chosen at startup.
func (s *BackendSelector) Active() port.SearchBackend {
	return s.active
}

func (s *BackendSelector) Mode() port.SearchMode {
	return s.active.Mode()
}
