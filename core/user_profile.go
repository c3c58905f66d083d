package core

import "time"

// Preferences 是用户显式声明的偏好（测验/问卷产物）。
type Preferences struct {
	FavoriteGenres   []int    `json:"favorite_genres" yaml:"favorite_genres"`
	PreferredDecades []string `json:"preferred_decades" yaml:"preferred_decades"` // "1990s" 形式
	FavoriteActors   []string `json:"favorite_actors" yaml:"favorite_actors"`
	MoodPreferences  []string `json:"mood_preferences" yaml:"mood_preferences"`
	RatingThreshold  float64  `json:"rating_threshold" yaml:"rating_threshold"` // 0-10
}

// UserProfile 是用户画像：声明偏好 + 观影历史 + 四张亲和度表。
//
// 亲和度权重均约束在 [0,1]，由饱和加法更新（min(1, 当前+增量)），
// 本链路内只增不减：重复答卷只会强化既有信号，不会抹掉它。
//
// 导演/主题亲和度表在模型中存在，但只由外部喂入的观影历史填充；
// 引擎必须容忍这些表为空。
type UserProfile struct {
	UserID      string
	Preferences Preferences

	// 观影历史（movie id 序列，只追加）
	ViewingHistory []int64

	// 亲和度表
	GenreAffinity    map[int]float64
	DecadeAffinity   map[string]float64
	DirectorAffinity map[string]float64
	ThemeAffinity    map[string]float64

	UpdateTime time.Time
}

// NewUserProfile 创建一个空画像。
func NewUserProfile(userID string) *UserProfile {
	return &UserProfile{
		UserID:           userID,
		GenreAffinity:    make(map[int]float64),
		DecadeAffinity:   make(map[string]float64),
		DirectorAffinity: make(map[string]float64),
		ThemeAffinity:    make(map[string]float64),
		UpdateTime:       time.Now(),
	}
}

func saturate(cur, delta float64) float64 {
	next := cur + delta
	if next > 1.0 {
		return 1.0
	}
	return next
}

// AddGenreAffinity 饱和累加类型亲和度。
func (p *UserProfile) AddGenreAffinity(genreID int, delta float64) {
	if p.GenreAffinity == nil {
		p.GenreAffinity = make(map[int]float64)
	}
	p.GenreAffinity[genreID] = saturate(p.GenreAffinity[genreID], delta)
	p.UpdateTime = time.Now()
}

// AddDecadeAffinity 饱和累加年代亲和度。
func (p *UserProfile) AddDecadeAffinity(decade string, delta float64) {
	if p.DecadeAffinity == nil {
		p.DecadeAffinity = make(map[string]float64)
	}
	p.DecadeAffinity[decade] = saturate(p.DecadeAffinity[decade], delta)
	p.UpdateTime = time.Now()
}

// AddDirectorAffinity 饱和累加导演亲和度。
func (p *UserProfile) AddDirectorAffinity(director string, delta float64) {
	if p.DirectorAffinity == nil {
		p.DirectorAffinity = make(map[string]float64)
	}
	p.DirectorAffinity[director] = saturate(p.DirectorAffinity[director], delta)
	p.UpdateTime = time.Now()
}

// AddThemeAffinity 饱和累加主题亲和度。
func (p *UserProfile) AddThemeAffinity(theme string, delta float64) {
	if p.ThemeAffinity == nil {
		p.ThemeAffinity = make(map[string]float64)
	}
	p.ThemeAffinity[theme] = saturate(p.ThemeAffinity[theme], delta)
	p.UpdateTime = time.Now()
}

// AddViewingHistory 追加观影记录（去重，只追加不回删）。
func (p *UserProfile) AddViewingHistory(movieIDs ...int64) {
	for _, id := range movieIDs {
		seen := false
		for _, h := range p.ViewingHistory {
			if h == id {
				seen = true
				break
			}
		}
		if !seen {
			p.ViewingHistory = append(p.ViewingHistory, id)
		}
	}
	p.UpdateTime = time.Now()
}

// Richness 返回画像丰富度：声明类型数 + 声明年代数 + 观影历史长度。
// 用于置信度估计。
func (p *UserProfile) Richness() int {
	return len(p.Preferences.FavoriteGenres) +
		len(p.Preferences.PreferredDecades) +
		len(p.ViewingHistory)
}

// Clone 返回画像的深拷贝，用于整记录原子替换（避免并发读到半更新状态）。
func (p *UserProfile) Clone() *UserProfile {
	cp := &UserProfile{
		UserID:           p.UserID,
		Preferences:      p.Preferences,
		ViewingHistory:   append([]int64(nil), p.ViewingHistory...),
		GenreAffinity:    make(map[int]float64, len(p.GenreAffinity)),
		DecadeAffinity:   make(map[string]float64, len(p.DecadeAffinity)),
		DirectorAffinity: make(map[string]float64, len(p.DirectorAffinity)),
		ThemeAffinity:    make(map[string]float64, len(p.ThemeAffinity)),
		UpdateTime:       p.UpdateTime,
	}
	cp.Preferences.FavoriteGenres = append([]int(nil), p.Preferences.FavoriteGenres...)
	cp.Preferences.PreferredDecades = append([]string(nil), p.Preferences.PreferredDecades...)
	cp.Preferences.FavoriteActors = append([]string(nil), p.Preferences.FavoriteActors...)
	cp.Preferences.MoodPreferences = append([]string(nil), p.Preferences.MoodPreferences...)
	for k, v := range p.GenreAffinity {
		cp.GenreAffinity[k] = v
	}
	for k, v := range p.DecadeAffinity {
		cp.DecadeAffinity[k] = v
	}
	for k, v := range p.DirectorAffinity {
		cp.DirectorAffinity[k] = v
	}
	for k, v := range p.ThemeAffinity {
		cp.ThemeAffinity[k] = v
	}
	return cp
}
