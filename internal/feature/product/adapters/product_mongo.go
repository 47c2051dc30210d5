package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shop_backend/internal/feature/product/domain/entity"
	"shop_backend/internal/feature/product/usecase"
)

// ProductsCollection は商品を保存するコレクション名です。
const ProductsCollection = "products"

type productDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Quantity    int                `bson:"quantity"`
	Price       float64            `bson:"price"`
	Image       string             `bson:"image,omitempty"`
	Description string             `bson:"description,omitempty"`
	UserID      primitive.ObjectID `bson:"userId"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d *productDocument) toEntity() *entity.Product {
	return &entity.Product{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Quantity:    d.Quantity,
		Price:       d.Price,
		Image:       d.Image,
		Description: d.Description,
		OwnerID:     d.UserID.Hex(),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// productMongo はProductRepositoryインターフェースのMongoDB実装です。
type productMongo struct {
	coll *mongo.Collection
	now  func() time.Time
}

// productMongoがProductRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.ProductRepository = (*productMongo)(nil)

// NewProductMongo は指定されたデータベースのproductsコレクションを使うproductMongoを生成します。
func NewProductMongo(db *mongo.Database) *productMongo {
	return &productMongo{coll: db.Collection(ProductsCollection), now: time.Now}
}

// EnsureIndexes は名前と説明のテキストインデックス、所有者のインデックスを作成します。
func (r *productMongo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: "text"}, {Key: "description", Value: "text"}}},
		{Keys: bson.D{{Key: "userId", Value: 1}}},
	})
	return err
}

// Create は商品を挿入し、生成したIDとタイムスタンプを p に反映します。
func (r *productMongo) Create(ctx context.Context, p *entity.Product) error {
	if p == nil {
		return errors.New("product is nil")
	}
	owner, err := primitive.ObjectIDFromHex(p.OwnerID)
	if err != nil {
		return fmt.Errorf("invalid owner id %q: %w", p.OwnerID, err)
	}
	now := r.now().UTC()
	doc := productDocument{
		ID:          primitive.NewObjectID(),
		Name:        p.Name,
		Quantity:    p.Quantity,
		Price:       p.Price,
		Image:       p.Image,
		Description: p.Description,
		UserID:      owner,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return err
	}
	p.ID = doc.ID.Hex()
	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}

// FindByID はIDで商品を取得します。不正なIDは存在しない商品として扱います。
func (r *productMongo) FindByID(ctx context.Context, id string) (*entity.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, usecase.ErrProductNotFound
	}
	var doc productDocument
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, usecase.ErrProductNotFound
		}
		return nil, err
	}
	return doc.toEntity(), nil
}

// List は全商品を取得します。
func (r *productMongo) List(ctx context.Context) ([]entity.Product, error) {
	cur, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []productDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]entity.Product, 0, len(docs))
	for i := range docs {
		out = append(out, *docs[i].toEntity())
	}
	return out, nil
}

// Update は patch で指定されたフィールドのみを $set し、更新後の商品を返します。
func (r *productMongo) Update(ctx context.Context, id string, patch entity.ProductPatch) (*entity.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, usecase.ErrProductNotFound
	}
	set := patchFields(patch)
	if len(set) == 0 {
		return nil, usecase.ErrValidation
	}
	set = append(set, bson.E{Key: "updatedAt", Value: r.now().UTC()})

	var doc productDocument
	err = r.coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, usecase.ErrProductNotFound
		}
		return nil, err
	}
	return doc.toEntity(), nil
}

// Delete は商品を削除します。
func (r *productMongo) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return usecase.ErrProductNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return usecase.ErrProductNotFound
	}
	return nil
}

func patchFields(patch entity.ProductPatch) bson.D {
	var set bson.D
	if patch.Name != nil {
		set = append(set, bson.E{Key: "name", Value: *patch.Name})
	}
	if patch.Price != nil {
		set = append(set, bson.E{Key: "price", Value: *patch.Price})
	}
	if patch.Quantity != nil {
		set = append(set, bson.E{Key: "quantity", Value: *patch.Quantity})
	}
	if patch.Image != nil {
		set = append(set, bson.E{Key: "image", Value: *patch.Image})
	}
	if patch.Description != nil {
		set = append(set, bson.E{Key: "description", Value: *patch.Description})
	}
	return set
}
