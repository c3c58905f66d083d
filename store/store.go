package store

// 注意：此包只包含实现，接口定义在 core 包。
// 典型用途是富化缓存：同一 (电影, 选项) 组合 30 分钟内只打一次外部源。
//
// 示例：
//   var cache core.Store = NewMemoryStore()
