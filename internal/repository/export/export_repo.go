package export

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	exportModel "tablegen/internal/model/export"
	"tablegen/internal/pkg/apperr"
)

// ExportRepo 导出记录仓库
type ExportRepo struct {
	collection *mongo.Collection
}

// NewExportRepo 创建导出记录仓库
func NewExportRepo(db *mongo.Database) *ExportRepo {
	var rec exportModel.Record
	return &ExportRepo{
		collection: db.Collection(rec.Collection()),
	}
}

// Create 创建导出记录
func (r *ExportRepo) Create(ctx context.Context, rec *exportModel.Record) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, rec)
	return err
}

// FindByID 根据ID查询
func (r *ExportRepo) FindByID(ctx context.Context, id string) (*exportModel.Record, error) {
	var rec exportModel.Record
	err := r.collection.FindOne(ctx, bson.M{"id": id}).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.New(apperr.KindNotFound, "export not found").WithDetail(id)
		}
		return nil, err
	}
	return &rec, nil
}

// List 按创建时间倒序分页查询
func (r *ExportRepo) List(ctx context.Context, limit, offset int) ([]*exportModel.Record, int64, error) {
	filter := bson.M{}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{bson.E{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	records := make([]*exportModel.Record, 0)
	if err := cursor.All(ctx, &records); err != nil {
		return nil, 0, err
	}

	return records, total, nil
}
