package db

import (
	"context"
	"time"

	"github.com/parkrow/propertyops/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDeliveryCollection implements DeliveryCollection for MongoDB
type MongoDeliveryCollection struct {
	Collection *mongo.Collection
}

// InsertDelivery inserts a delivery record into the collection.
func (c *MongoDeliveryCollection) InsertDelivery(ctx context.Context, delivery models.Delivery) (primitive.ObjectID, error) {
	if delivery.ID.IsZero() {
		delivery.ID = primitive.NewObjectID()
	}
	delivery.CreatedAt = time.Now()
	delivery.UpdatedAt = time.Now()
	_, err := c.Collection.InsertOne(ctx, delivery)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return delivery.ID, nil
}

// FindDeliveryByID finds a delivery by its ID.
func (c *MongoDeliveryCollection) FindDeliveryByID(ctx context.Context, id string) (*models.Delivery, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var delivery models.Delivery
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&delivery)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &delivery, nil
}

// ListDeliveriesByProperty returns a property's deliveries, optionally by status.
func (c *MongoDeliveryCollection) ListDeliveriesByProperty(ctx context.Context, propertyID primitive.ObjectID, status *models.DeliveryStatus) ([]models.Delivery, error) {
	match := bson.M{"property_id": propertyID}
	if status != nil {
		match["status"] = *status
	}
	return c.findDeliveries(ctx, match)
}

// ListDeliveriesByRecipient returns a recipient's deliveries, newest first.
func (c *MongoDeliveryCollection) ListDeliveriesByRecipient(ctx context.Context, recipientID primitive.ObjectID) ([]models.Delivery, error) {
	return c.findDeliveries(ctx, bson.M{"recipient_id": recipientID})
}

func (c *MongoDeliveryCollection) findDeliveries(ctx context.Context, match bson.M) ([]models.Delivery, error) {
	mc, err := c.Collection.Find(ctx, match,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer mc.Close(ctx)

	var deliveries []models.Delivery
	if err := mc.All(ctx, &deliveries); err != nil {
		return nil, err
	}
	return deliveries, nil
}

// PatchDelivery applies a partial $set update to a delivery by its ID.
func (c *MongoDeliveryCollection) PatchDelivery(ctx context.Context, id string, set bson.M) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
