package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"tablegen/internal/model/export"
)

// EnsureIndexes 在服务启动时创建所有模型的索引
func EnsureIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return EnsureAllIndexes(ctx, db, &export.Record{})
}
