package export

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Record 导出记录
// 只保存导出文件的元数据，表格内容本身存放在存储中
type Record struct {
	ID          string    `bson:"id" json:"id"`                     // 记录ID（UUID）
	FileName    string    `bson:"file_name" json:"file_name"`       // 下载时使用的文件名
	Prompt      string    `bson:"prompt" json:"prompt"`             // 需求描述
	Model       string    `bson:"model" json:"model"`               // 生成时使用的模型
	StorageKey  string    `bson:"storage_key" json:"storage_key"`   // 存储路径（key）
	StorageType string    `bson:"storage_type" json:"storage_type"` // 存储类型（local/oss）
	FileSize    int64     `bson:"file_size" json:"file_size"`       // 文件大小（字节）
	Columns     int       `bson:"columns" json:"columns"`           // 表头列数
	Rows        int       `bson:"rows" json:"rows"`                 // 数据行数
	Header      []string  `bson:"header" json:"header"`             // 表头
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

// Collection 返回集合名称
func (r *Record) Collection() string {
	return "exports"
}

// EnsureIndexes 创建和维护索引
func (r *Record) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	coll := db.Collection(r.Collection())
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{bson.E{Key: "id", Value: 1}},
			Options: options.Index().SetName("idx_id").SetUnique(true),
		},
		{
			Keys:    bson.D{bson.E{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_created"),
		},
	}

	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}
