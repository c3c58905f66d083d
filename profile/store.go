// Package profile 维护每用户的口味画像：显式偏好 + 四张亲和度表。
package profile

import (
	"regexp"
	"sync"

	"github.com/fluffy1211/moviedna/core"
)

// 亲和度增量：陈述一次偏好加一档，饱和封顶在 1.0。
// 重复做测验只会强化既有信号，永远不会抹掉。
const (
	genreIncrement  = 0.2
	decadeIncrement = 0.15
)

var decadePattern = regexp.MustCompile(`^\d{4}s$`)

// Store 是进程内画像仓库：按用户 ID 懒创建，进程生命周期内常驻。
// 更新走 Clone + 整体替换，读方永远看到完整一致的画像（无撕裂读）。
type Store struct {
	mu       sync.RWMutex
	profiles map[string]*core.UserProfile
}

func NewStore() *Store {
	return &Store{profiles: make(map[string]*core.UserProfile)}
}

// GetOrCreate 取出用户画像，不存在时懒创建空画像。
func (s *Store) GetOrCreate(userID string) *core.UserProfile {
	s.mu.RLock()
	p, ok := s.profiles[userID]
	s.mu.RUnlock()
	if ok {
		return p
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.profiles[userID]; ok {
		return p
	}
	p = core.NewUserProfile(userID)
	s.profiles[userID] = p
	return p
}

// ApplyPreferences 把一次陈述偏好折算进亲和度表。
//
// 这是整条流水线里唯一把错误抛给调用方的地方：偏好格式不合法属于
// 调用方违约（输入契约），不是外部源可用性问题，必须显式报出来。
func (s *Store) ApplyPreferences(userID string, prefs core.Preferences) (*core.UserProfile, error) {
	if err := validate(prefs); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.profiles[userID]
	if !ok {
		old = core.NewUserProfile(userID)
	}

	// 副本上改完再整体换入
	p := old.Clone()
	p.Preferences = prefs
	for _, g := range prefs.FavoriteGenres {
		p.AddGenreAffinity(g, genreIncrement)
	}
	for _, d := range prefs.PreferredDecades {
		p.AddDecadeAffinity(d, decadeIncrement)
	}
	s.profiles[userID] = p
	return p, nil
}

// AddViewingHistory 追加观影历史（按整体替换写入）。
func (s *Store) AddViewingHistory(userID string, movieIDs ...int64) *core.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.profiles[userID]
	if !ok {
		old = core.NewUserProfile(userID)
	}
	p := old.Clone()
	p.AddViewingHistory(movieIDs...)
	s.profiles[userID] = p
	return p
}

func validate(prefs core.Preferences) error {
	if prefs.RatingThreshold < 0 || prefs.RatingThreshold > 10 {
		return core.NewDomainError(core.ModuleProfile, core.ErrorCodeInvalidInput, "rating threshold must be in [0,10]")
	}
	for _, g := range prefs.FavoriteGenres {
		if g <= 0 {
			return core.NewDomainError(core.ModuleProfile, core.ErrorCodeInvalidInput, "genre id must be positive")
		}
	}
	for _, d := range prefs.PreferredDecades {
		if !decadePattern.MatchString(d) {
			return core.NewDomainError(core.ModuleProfile, core.ErrorCodeInvalidInput, "decade must look like \"1990s\"")
		}
	}
	return nil
}
