package db

import (
	"context"
	"time"

	"github.com/parkrow/propertyops/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoPropertyCollection implements PropertyCollection for MongoDB
type MongoPropertyCollection struct {
	Properties *mongo.Collection
	Units      *mongo.Collection
}

// InsertProperty inserts a property record into the collection.
func (c *MongoPropertyCollection) InsertProperty(ctx context.Context, property models.Property) (primitive.ObjectID, error) {
	if property.ID.IsZero() {
		property.ID = primitive.NewObjectID()
	}
	property.CreatedAt = time.Now()
	property.UpdatedAt = time.Now()
	_, err := c.Properties.InsertOne(ctx, property)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return property.ID, nil
}

// FindPropertyByID finds a property by its ID.
func (c *MongoPropertyCollection) FindPropertyByID(ctx context.Context, id string) (*models.Property, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var property models.Property
	err = c.Properties.FindOne(ctx, bson.M{"_id": objectID}).Decode(&property)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &property, nil
}

// InsertUnit inserts a unit record into the collection.
func (c *MongoPropertyCollection) InsertUnit(ctx context.Context, unit models.Unit) (primitive.ObjectID, error) {
	if unit.ID.IsZero() {
		unit.ID = primitive.NewObjectID()
	}
	unit.CreatedAt = time.Now()
	unit.UpdatedAt = time.Now()
	_, err := c.Units.InsertOne(ctx, unit)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return unit.ID, nil
}

// FindUnitByID finds a unit by its ID.
func (c *MongoPropertyCollection) FindUnitByID(ctx context.Context, id string) (*models.Unit, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var unit models.Unit
	err = c.Units.FindOne(ctx, bson.M{"_id": objectID}).Decode(&unit)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &unit, nil
}

// FindUnitsByIDs batch-fetches units for a deduplicated id set.
func (c *MongoPropertyCollection) FindUnitsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Unit, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	mc, err := c.Units.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer mc.Close(ctx)

	var units []models.Unit
	if err := mc.All(ctx, &units); err != nil {
		return nil, err
	}
	return units, nil
}
