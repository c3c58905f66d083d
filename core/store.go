package core

import "context"

// Store 是缓存存储的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（store）实现，避免循环依赖
//   - 作为显式注入对象使用，不做进程级单例：
//     测试可注入内存实现，多租户部署各自隔离
//   - 条目整记录原子写入，TTL 到期视同不存在
//
// 使用场景：
//   - Enrichment 缓存：(movie id, options hash) -> EnrichedMovie，TTL 30 分钟
//   - 候选列表缓存：查询计划摘要 -> 候选集
type Store interface {
	// Name 返回存储后端名称（用于观测）
	Name() string

	// Get 读取单个 key 的值；不存在或过期返回 ErrStoreNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Set 写入单个 key-value；ttl 单位秒，省略或 <=0 表示不过期
	Set(ctx context.Context, key string, value []byte, ttl ...int) error

	// Delete 删除单个 key
	Delete(ctx context.Context, key string) error

	// BatchGet 批量读取（批量 Enrichment 减少往返）
	BatchGet(ctx context.Context, keys []string) (map[string][]byte, error)

	// BatchSet 批量写入
	BatchSet(ctx context.Context, kvs map[string][]byte, ttl ...int) error

	// Close 关闭连接/释放资源
	Close() error
}
