package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	carterrors "campus-marketplace/internal/cart/errors"
	"campus-marketplace/internal/shared/database/helper"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const maxUpsertAttempts = 5

type mongoLineItem struct {
	ID        string    `bson:"id"`
	ProductID string    `bson:"product_id"`
	Quantity  int32     `bson:"quantity"`
	AddedAt   time.Time `bson:"added_at"`
}

type mongoCart struct {
	CartID    string          `bson:"cart_id"`
	UserID    string          `bson:"user_id"`
	Items     []mongoLineItem `bson:"items"`
	CreatedAt time.Time       `bson:"created_at"`
	UpdatedAt time.Time       `bson:"updated_at"`
}

// mongoRepository keeps one document per user in the carts collection.
type mongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepository{
		collection: db.Collection("carts"),
	}
}

func (m *mongoRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	if _, err := m.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// EnsureIndexes creates the unique user index when repo is Mongo-backed.
func EnsureIndexes(ctx context.Context, repo Repository) error {
	if m, ok := repo.(*mongoRepository); ok {
		return m.CreateIndexes(ctx)
	}
	return nil
}

func (m *mongoRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (Cart, error) {
	var doc mongoCart
	err := m.collection.FindOne(ctx, bson.M{"user_id": userID.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Cart{}, carterrors.ErrCartNotFound
		}
		return Cart{}, fmt.Errorf("failed to get cart: %w", err)
	}
	return fromMongo(doc), nil
}

func (m *mongoRepository) GetOrCreate(ctx context.Context, userID uuid.UUID) (Cart, error) {
	now := time.Now().UTC()
	filter := bson.M{"user_id": userID.String()}
	update := bson.M{
		"$setOnInsert": bson.M{
			"cart_id":    uuid.NewString(),
			"items":      bson.A{},
			"created_at": now,
			"updated_at": now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc mongoCart
	err := m.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err != nil && mongo.IsDuplicateKeyError(err) {
		// lost the upsert race; the winner's document is there now
		return m.GetByUserID(ctx, userID)
	}
	if err != nil {
		return Cart{}, fmt.Errorf("failed to upsert cart: %w", err)
	}
	return fromMongo(doc), nil
}

func (m *mongoRepository) UpsertItem(ctx context.Context, userID, productID uuid.UUID, qty int32) (Cart, error) {
	if _, err := m.GetOrCreate(ctx, userID); err != nil {
		return Cart{}, err
	}

	uid := userID.String()
	pid := productID.String()

	for attempt := 0; attempt < maxUpsertAttempts; attempt++ {
		now := time.Now().UTC()

		// 1. increment in place when the line exists and stays under the cap
		res, err := m.collection.UpdateOne(ctx,
			bson.M{"user_id": uid, "items": bson.M{"$elemMatch": bson.M{
				"product_id": pid,
				"quantity":   bson.M{"$lte": MaxItemQuantity - qty},
			}}},
			bson.M{
				"$inc": bson.M{"items.$.quantity": qty},
				"$set": bson.M{"updated_at": now},
			},
		)
		if err != nil {
			return Cart{}, fmt.Errorf("failed to increment item: %w", err)
		}
		if res.MatchedCount > 0 {
			return m.GetByUserID(ctx, userID)
		}

		// 2. push only while the product is still absent
		res, err = m.collection.UpdateOne(ctx,
			bson.M{"user_id": uid, "items.product_id": bson.M{"$ne": pid}},
			bson.M{
				"$push": bson.M{"items": mongoLineItem{
					ID:        uuid.NewString(),
					ProductID: pid,
					Quantity:  qty,
					AddedAt:   now,
				}},
				"$set": bson.M{"updated_at": now},
			},
		)
		if err != nil {
			return Cart{}, fmt.Errorf("failed to add item: %w", err)
		}
		if res.MatchedCount > 0 {
			return m.GetByUserID(ctx, userID)
		}

		full, err := m.collection.CountDocuments(ctx, bson.M{"user_id": uid, "items": bson.M{"$elemMatch": bson.M{
			"product_id": pid,
			"quantity":   bson.M{"$gt": MaxItemQuantity - qty},
		}}})
		if err != nil {
			return Cart{}, fmt.Errorf("failed to check item quantity: %w", err)
		}
		if full > 0 {
			return Cart{}, carterrors.ErrQuantityLimit
		}
		// a concurrent push won; retry the increment
	}

	return Cart{}, fmt.Errorf("failed to upsert item after %d attempts", maxUpsertAttempts)
}

func (m *mongoRepository) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (Cart, error) {
	uid := userID.String()
	pid := productID.String()

	res, err := m.collection.UpdateOne(ctx,
		bson.M{"user_id": uid, "items.product_id": pid},
		bson.M{
			"$pull": bson.M{"items": bson.M{"product_id": pid}},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return Cart{}, fmt.Errorf("failed to remove item: %w", err)
	}

	if res.MatchedCount == 0 {
		n, err := m.collection.CountDocuments(ctx, bson.M{"user_id": uid})
		if err != nil {
			return Cart{}, fmt.Errorf("failed to check cart: %w", err)
		}
		if n == 0 {
			return Cart{}, carterrors.ErrCartNotFound
		}
		return Cart{}, carterrors.ErrCartItemNotFound
	}

	return m.GetByUserID(ctx, userID)
}

func (m *mongoRepository) ClearItems(ctx context.Context, userID uuid.UUID) (Cart, error) {
	now := time.Now().UTC()
	filter := bson.M{"user_id": userID.String()}
	update := bson.M{
		"$set": bson.M{
			"items":      bson.A{},
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"cart_id":    uuid.NewString(),
			"created_at": now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc mongoCart
	err := m.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err != nil && mongo.IsDuplicateKeyError(err) {
		err = m.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	}
	if err != nil {
		return Cart{}, fmt.Errorf("failed to clear cart: %w", err)
	}
	return fromMongo(doc), nil
}

func fromMongo(doc mongoCart) Cart {
	items := make([]LineItem, 0, len(doc.Items))
	for _, it := range doc.Items {
		items = append(items, LineItem{
			ID:        helper.StringToUUID(it.ID),
			ProductID: helper.StringToUUID(it.ProductID),
			Quantity:  it.Quantity,
			AddedAt:   it.AddedAt,
		})
	}
	return Cart{
		ID:        helper.StringToUUID(doc.CartID),
		UserID:    helper.StringToUUID(doc.UserID),
		Items:     items,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}
