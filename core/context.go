package core

import "github.com/fluffy1211/moviedna/pkg/utils"

// WatchCompanion 是观影同伴类型。
type WatchCompanion string

const (
	WatchAlone   WatchCompanion = "alone"
	WatchFriends WatchCompanion = "friends"
	WatchFamily  WatchCompanion = "family"
	WatchDate    WatchCompanion = "date"
)

// Discovery 是探索/保守偏好，直接决定热门度子分的方向。
type Discovery string

const (
	DiscoverySafe        Discovery = "safe"
	DiscoveryAdventurous Discovery = "adventurous"
	DiscoveryMixed       Discovery = "mixed"
)

// RecommendContext 承载单次推荐请求的用户/场景信息，贯穿整个 Pipeline 透传。
// 除 Preferences 外所有字段可选。
type RecommendContext struct {
	UserID string

	// Preferences 是本次请求声明的偏好（必填），由引擎折入画像。
	Preferences Preferences

	// User 是强类型画像，由引擎在请求开始时填充。
	User *UserProfile

	// 可选的外部观影历史（追加进画像）
	ViewingHistory []int64

	// 场景信号
	CurrentMood       string         // happy / sad / excited / relaxed / scared / thoughtful
	AvailableTime     int            // 分钟，0 = 未指定
	StreamingServices []string       // 用户订阅的流媒体平台
	WatchWith         WatchCompanion // 空 = 未指定
	Country           string         // 流媒体可看性地区，默认 "US"

	// DiscoveryPreference 为空时由引擎按声明偏好推断。
	DiscoveryPreference Discovery

	// Labels 是用户级标签，可驱动整个 Pipeline 行为（新用户、兜底请求等）。
	Labels map[string]utils.Label

	// Params 请求级上下文参数，留给自定义 Node / 规则表达式使用。
	Params map[string]any
}

// PutLabel 写入用户级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取用户级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
